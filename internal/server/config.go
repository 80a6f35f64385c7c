package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Table  TableSettings  `hcl:"table,block"`
}

// ServerSettings contains listener-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	WSPort      int    `hcl:"ws_port,optional"` // 0 disables the WebSocket bridge
	LogLevel    string `hcl:"log_level,optional"`
	RecordsFile string `hcl:"records_file,optional"`
}

// TableSettings contains per-table defaults applied when a join request
// omits them
type TableSettings struct {
	DefaultBuyIn int `hcl:"default_buy_in,optional"`
	DefaultDecks int `hcl:"default_decks,optional"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "0.0.0.0",
			Port:        5000,
			WSPort:      0,
			LogLevel:    "info",
			RecordsFile: "records.json",
		},
		Table: TableSettings{
			DefaultBuyIn: 1000,
			DefaultDecks: 4,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file is
// not an error; the defaults apply.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Fill in anything the file left unset
	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Server.RecordsFile == "" {
		config.Server.RecordsFile = defaults.Server.RecordsFile
	}
	if config.Table.DefaultBuyIn == 0 {
		config.Table.DefaultBuyIn = defaults.Table.DefaultBuyIn
	}
	if config.Table.DefaultDecks == 0 {
		config.Table.DefaultDecks = defaults.Table.DefaultDecks
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.WSPort < 0 || c.Server.WSPort > 65535 {
		return fmt.Errorf("invalid ws_port: %d", c.Server.WSPort)
	}
	if c.Server.WSPort != 0 && c.Server.WSPort == c.Server.Port {
		return fmt.Errorf("ws_port must differ from port")
	}
	if c.Table.DefaultBuyIn <= 0 {
		return fmt.Errorf("default_buy_in must be positive")
	}
	if c.Table.DefaultDecks < 1 || c.Table.DefaultDecks > 8 {
		return fmt.Errorf("default_decks must be between 1 and 8")
	}
	return nil
}

// ListenAddr returns the TCP listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// WSListenAddr returns the WebSocket listen address, or "" when the
// bridge is disabled
func (c *Config) WSListenAddr() string {
	if c.Server.WSPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.WSPort)
}
