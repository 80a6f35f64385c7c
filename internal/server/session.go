package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/blackjackpsp/blackjackd/internal/game"
	"github.com/blackjackpsp/blackjackd/internal/leaderboard"
	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

// ErrSessionClosed is returned when sending on a torn-down session
var ErrSessionClosed = errors.New("session closed")

// lineConn is one client connection carrying LF-delimited protocol
// lines. The raw TCP listener and the WebSocket bridge both implement
// it, so a Session never knows which transport it is on.
type lineConn interface {
	// ReadLine blocks for the next complete line, without the newline
	ReadLine() ([]byte, error)
	// WriteLine writes one encoded line, newline included
	WriteLine(line []byte) error
	Close() error
	RemoteAddr() string
}

// Session owns one client connection and its private Round. Sessions
// run concurrently and share nothing but the leaderboard store, which
// does its own locking.
type Session struct {
	id      string
	conn    lineConn
	send    chan *protocol.Message
	round   *game.Round
	records *leaderboard.Store
	logger  *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	clock     quartz.Clock
	startedAt time.Time
	onClose   func(*Session)
}

// NewSession wraps an accepted connection
func NewSession(conn lineConn, round *game.Round, records *leaderboard.Store, logger *log.Logger, clock quartz.Clock) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()

	return &Session{
		id:      id,
		conn:    conn,
		send:    make(chan *protocol.Message, 64),
		round:   round,
		records: records,
		logger:  logger.WithPrefix("session").With("session", id[:8], "remote", conn.RemoteAddr()),
		ctx:     ctx,
		cancel:  cancel,
		clock:   clock,
	}
}

// Start begins the read loop and write pump
func (s *Session) Start() {
	s.startedAt = s.clock.Now()
	s.logger.Info("Client connected")
	go s.writePump()
	go s.readLoop()
}

// Done is closed when the session has torn down
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close releases the session's resources. The in-progress round is
// discarded; there is no cross-connection survival.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.send)
		err = s.conn.Close()
		if s.onClose != nil {
			s.onClose(s)
		}
		s.logger.Info("Client disconnected", "duration", s.clock.Now().Sub(s.startedAt))
	})
	return err
}

// Send queues a message for the client
func (s *Session) Send(msg *protocol.Message) error {
	defer func() {
		// The send channel is closed during teardown; a racing Send is
		// expected and not an error worth surfacing.
		if r := recover(); r != nil {
			s.logger.Debug("Send on closed session", "recovered", r)
		}
	}()

	select {
	case s.send <- msg:
		return nil
	case <-s.ctx.Done():
		return ErrSessionClosed
	default:
		s.logger.Warn("Send buffer full, closing session")
		_ = s.Close()
		return ErrSessionClosed
	}
}

// readLoop reads lines until the connection ends. Game logic for each
// message runs to completion before the next line is read, so requests
// on one connection never interleave.
func (s *Session) readLoop() {
	defer func() { _ = s.Close() }()

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		line, err := s.conn.ReadLine()
		if err != nil {
			s.logger.Debug("Read ended", "error", err)
			return
		}

		msg, err := protocol.DecodeLine(line)
		if err != nil {
			if errors.Is(err, protocol.ErrEmptyLine) {
				continue
			}
			// Soft failure: log, drop the line, keep the connection
			s.logger.Warn("Dropping unparseable line", "error", err)
			continue
		}

		s.handleMessage(msg)
	}
}

// writePump drains the send channel onto the wire
func (s *Session) writePump() {
	defer func() { _ = s.conn.Close() }()

	for {
		select {
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			line, err := protocol.EncodeLine(msg)
			if err != nil {
				s.logger.Error("Failed to encode message", "type", msg.Type, "error", err)
				continue
			}
			if err := s.conn.WriteLine(line); err != nil {
				s.logger.Error("Failed to write message", "error", err)
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// handleMessage routes one decoded message. get_records reads the
// shared store; everything else drives this session's round.
func (s *Session) handleMessage(msg *protocol.Message) {
	s.logger.Debug("Received message", "type", msg.Type)

	if msg.Type == protocol.TypeGetRecords {
		reply, err := protocol.NewMessage(protocol.TypeRecordsList, protocol.RecordsListData{
			Records: s.records.Query(),
		})
		if err != nil {
			s.logger.Error("Failed to build records reply", "error", err)
			return
		}
		_ = s.Send(reply)
		return
	}

	for _, reply := range s.round.HandleMessage(msg) {
		if err := s.Send(reply); err != nil {
			return
		}
	}
}

// tcpLineConn adapts a net.Conn to lineConn
type tcpLineConn struct {
	conn   net.Conn
	reader *bufio.Reader
}

func newTCPLineConn(conn net.Conn) *tcpLineConn {
	return &tcpLineConn{conn: conn, reader: bufio.NewReader(conn)}
}

func (t *tcpLineConn) ReadLine() ([]byte, error) {
	line, err := t.reader.ReadBytes('\n')
	if err != nil {
		if len(line) > 0 {
			// Final unterminated line still gets processed
			return line, nil
		}
		return nil, err
	}
	return line, nil
}

func (t *tcpLineConn) WriteLine(line []byte) error {
	_, err := t.conn.Write(line)
	return err
}

func (t *tcpLineConn) Close() error       { return t.conn.Close() }
func (t *tcpLineConn) RemoteAddr() string { return t.conn.RemoteAddr().String() }
