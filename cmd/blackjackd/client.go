package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/blackjackpsp/blackjackd/internal/client"
	"github.com/blackjackpsp/blackjackd/internal/tui"
)

// ClientCmd plays blackjack in the terminal
type ClientCmd struct {
	Addr  string `kong:"default='127.0.0.1:5000',help='Server address'"`
	Name  string `kong:"help='Player name (skips the name prompt)'"`
	BuyIn int    `kong:"name='buy-in',default='1000',help='Starting chips'"`
	Decks int    `kong:"default='4',help='Decks in the shoe (1, 2 or 4 by convention)'"`
	Debug bool   `kong:"help='Enable debug logging'"`
}

func (c *ClientCmd) Run() error {
	logger := setupLogger(c.Debug)
	lipgloss.SetColorProfile(termenv.ColorProfile())

	conn, err := client.Dial(c.Addr, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.Addr, err)
	}
	defer conn.Close()

	model := tui.New(conn, c.Name, c.BuyIn, c.Decks, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
