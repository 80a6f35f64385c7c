package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// setupLogger configures the root logger shared by every component
func setupLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
