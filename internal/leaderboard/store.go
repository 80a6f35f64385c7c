// Package leaderboard tracks win counts per player name, shared by
// every connection and persisted write-through to a JSON file.
package leaderboard

import (
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/blackjackpsp/blackjackd/internal/fileutil"
	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

// Store is the process-wide leaderboard. One mutex serialises the full
// read-modify-persist sequence, so concurrent wins from different
// sessions never lose an increment and queries never see a torn table.
type Store struct {
	mu     sync.Mutex
	path   string
	wins   map[string]int
	order  []string // insertion order, breaks ties in Query
	logger *log.Logger
}

type entry struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// NewStore loads the leaderboard at path. A missing or corrupt file
// starts an empty table rather than failing; the server keeps running
// and overwrites it on the next win.
func NewStore(path string, logger *log.Logger) *Store {
	s := &Store{
		path:   path,
		wins:   make(map[string]int),
		logger: logger.WithPrefix("records"),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read records file, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("Corrupt records file, starting empty", "path", s.path, "error", err)
		return
	}
	for _, e := range entries {
		if _, seen := s.wins[e.Name]; !seen {
			s.order = append(s.order, e.Name)
		}
		s.wins[e.Name] = e.Wins
	}
	s.logger.Info("Loaded records", "path", s.path, "players", len(s.order))
}

// RecordWin increments the win counter for name, creating the entry at
// 1, and persists the whole table before releasing the lock. A failed
// persist keeps the in-memory update and logs; the store runs degraded
// rather than failing the request.
func (s *Store) RecordWin(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.wins[name]; !seen {
		s.order = append(s.order, name)
	}
	s.wins[name]++

	if err := s.persistLocked(); err != nil {
		s.logger.Error("Failed to persist records, continuing in memory", "error", err)
	}
}

// persistLocked writes the full table; callers hold s.mu
func (s *Store) persistLocked() error {
	entries := make([]entry, 0, len(s.order))
	for _, name := range s.order {
		entries = append(entries, entry{Name: name, Wins: s.wins[name]})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(s.path, data, 0o644)
}

// Query returns all entries ordered by descending wins, ties kept in
// first-seen order.
func (s *Store) Query() []protocol.PlayerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]protocol.PlayerRecord, 0, len(s.order))
	for _, name := range s.order {
		records = append(records, protocol.PlayerRecord{Name: name, Wins: s.wins[name]})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Wins > records[j].Wins
	})
	return records
}

// Wins returns the current count for one player
func (s *Store) Wins(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wins[name]
}
