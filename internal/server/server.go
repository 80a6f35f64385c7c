// Package server accepts client connections, runs one Session per
// connection and wires every session to the shared leaderboard store.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/blackjackpsp/blackjackd/internal/game"
	"github.com/blackjackpsp/blackjackd/internal/leaderboard"
	"github.com/blackjackpsp/blackjackd/internal/randutil"
)

// Server owns the listeners and the set of live sessions. Round state
// lives inside each session; the leaderboard store is the only state
// shared across them.
type Server struct {
	cfg     *Config
	logger  *log.Logger
	records *leaderboard.Store
	rng     *rand.Rand
	clock   quartz.Clock

	mu       sync.Mutex
	sessions map[*Session]bool

	listener net.Listener
	httpSrv  *http.Server
	cancel   context.CancelFunc
}

// Option configures a Server
type Option func(*Server)

// WithClock substitutes the wall clock, for tests
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server. rng seeds each session's shoe RNG;
// records is the process-wide leaderboard.
func NewServer(cfg *Config, records *leaderboard.Store, rng *rand.Rand, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger.WithPrefix("server"),
		records:  records,
		rng:      rng,
		clock:    quartz.NewReal(),
		sessions: make(map[*Session]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the TCP listener. Failure to bind is the one fatal
// startup error; everything after that degrades per session.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info("Listening", "addr", listener.Addr())
	return nil
}

// Start binds and serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve runs the accept loop and the WebSocket bridge (when
// configured) until ctx is cancelled. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.acceptLoop(ctx)
	})

	if wsAddr := s.cfg.WSListenAddr(); wsAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", s.handleWebSocket)
		mux.HandleFunc("/health", s.handleHealth)
		s.httpSrv = &http.Server{Addr: wsAddr, Handler: mux}

		s.logger.Info("WebSocket bridge listening", "addr", wsAddr)
		g.Go(func() error {
			if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		s.closeListeners()
		return nil
	})

	return g.Wait()
}

// Shutdown stops the listeners and tears down every live session
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	s.closeListeners()

	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}

	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) closeListeners() {
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.httpSrv != nil {
		_ = s.httpSrv.Close()
	}
}

// acceptLoop hands each accepted connection its own session
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}
		s.startSession(newTCPLineConn(conn))
	}
}

// startSession builds a Round and Session for one connection and runs
// it. Each session draws a derived RNG so concurrent shoes never share
// state.
func (s *Server) startSession(conn lineConn) {
	defaults := game.Defaults{
		BuyIn:    s.cfg.Table.DefaultBuyIn,
		NumDecks: s.cfg.Table.DefaultDecks,
	}
	round := game.NewRound(defaults, s.records, randutil.Derive(s.rng), s.logger)
	sess := NewSession(conn, round, s.records, s.logger, s.clock)
	sess.onClose = s.unregister

	s.mu.Lock()
	s.sessions[sess] = true
	total := len(s.sessions)
	s.mu.Unlock()

	s.logger.Debug("Session registered", "total", total)
	sess.Start()
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	total := len(s.sessions)
	s.mu.Unlock()
	s.logger.Debug("Session unregistered", "total", total)
}

// SessionCount returns the number of live sessions
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Addr returns the bound TCP address, for tests using port 0
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
