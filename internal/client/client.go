// Package client implements the line-protocol client used by the
// terminal UI.
package client

import (
	"bufio"
	"net"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

// Client is a connection to the blackjack server. A reader goroutine
// decodes incoming lines onto Messages; sends are synchronous writes.
type Client struct {
	conn     net.Conn
	reader   *bufio.Reader
	messages chan *protocol.Message
	logger   *log.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial connects to the server and starts the reader
func Dial(addr string, logger *log.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		messages: make(chan *protocol.Message, 16),
		logger:   logger.WithPrefix("client"),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the stream of server messages. The channel closes
// when the connection ends.
func (c *Client) Messages() <-chan *protocol.Message {
	return c.messages
}

// Close tears down the connection
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			if len(line) == 0 {
				return
			}
		}
		msg, derr := protocol.DecodeLine(line)
		if derr != nil {
			c.logger.Warn("Dropping unparseable line from server", "error", derr)
			if err != nil {
				return
			}
			continue
		}
		c.messages <- msg
		if err != nil {
			return
		}
	}
}

func (c *Client) send(msgType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	line, err := protocol.EncodeLine(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.conn.Write(line)
	return err
}

// JoinTable requests a seat, or a fresh round when already seated
func (c *Client) JoinTable(playerName string, buyIn, numDecks int) error {
	return c.send(protocol.TypeJoinTable, protocol.JoinTableData{
		PlayerName: playerName,
		BuyIn:      buyIn,
		NumDecks:   numDecks,
	})
}

// PlaceBet wagers amount
func (c *Client) PlaceBet(amount int) error {
	return c.send(protocol.TypePlaceBet, protocol.PlaceBetData{Amount: amount})
}

// Hit draws a card
func (c *Client) Hit() error { return c.send(protocol.TypeHit, nil) }

// Stand ends the player's turn
func (c *Client) Stand() error { return c.send(protocol.TypeStand, nil) }

// Double doubles the bet and draws exactly one card
func (c *Client) Double() error { return c.send(protocol.TypeDouble, nil) }

// Surrender forfeits for half the bet
func (c *Client) Surrender() error { return c.send(protocol.TypeSurrender, nil) }

// GetRecords asks for the leaderboard
func (c *Client) GetRecords() error { return c.send(protocol.TypeGetRecords, nil) }
