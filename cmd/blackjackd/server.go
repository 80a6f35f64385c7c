package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blackjackpsp/blackjackd/internal/leaderboard"
	"github.com/blackjackpsp/blackjackd/internal/randutil"
	"github.com/blackjackpsp/blackjackd/internal/server"
)

// ServerCmd runs the blackjack server
type ServerCmd struct {
	Config  string `kong:"default='blackjackd.hcl',help='Path to HCL config file'"`
	Addr    string `kong:"help='TCP listen address, overrides config (host:port)'"`
	WSAddr  string `kong:"name='ws-addr',help='WebSocket listen address, overrides config (host:port)'"`
	Records string `kong:"help='Leaderboard file path, overrides config'"`
	Seed    *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
}

func (c *ServerCmd) Run() error {
	logger := setupLogger(c.Debug)

	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		host, port, err := splitHostPort(c.Addr)
		if err != nil {
			return err
		}
		cfg.Server.Address = host
		cfg.Server.Port = port
	}
	if c.WSAddr != "" {
		_, port, err := splitHostPort(c.WSAddr)
		if err != nil {
			return err
		}
		cfg.Server.WSPort = port
	}
	if c.Records != "" {
		cfg.Server.RecordsFile = c.Records
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("Using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
	}
	rng := randutil.New(seed)

	records := leaderboard.NewStore(cfg.Server.RecordsFile, logger)
	srv := server.NewServer(cfg, records, rng, logger)

	logger.Info("Starting blackjack server",
		"addr", cfg.ListenAddr(),
		"ws_addr", cfg.WSListenAddr(),
		"records", cfg.Server.RecordsFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// splitHostPort parses host:port, allowing an empty host (":5000")
func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}
