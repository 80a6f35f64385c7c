package leaderboard

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.json")
	return NewStore(path, log.New(io.Discard)), path
}

func TestRecordWinAndQuery(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordWin("ana")
	store.RecordWin("bob")
	store.RecordWin("ana")

	records := store.Query()
	require.Len(t, records, 2)
	assert.Equal(t, "ana", records[0].Name)
	assert.Equal(t, 2, records[0].Wins)
	assert.Equal(t, "bob", records[1].Name)
	assert.Equal(t, 1, records[1].Wins)
}

func TestQueryTiesKeepFirstSeenOrder(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordWin("carol")
	store.RecordWin("ana")
	store.RecordWin("bob")

	records := store.Query()
	require.Len(t, records, 3)
	assert.Equal(t, "carol", records[0].Name)
	assert.Equal(t, "ana", records[1].Name)
	assert.Equal(t, "bob", records[2].Name)
}

func TestPersistenceAcrossRestart(t *testing.T) {
	store, path := newTestStore(t)
	store.RecordWin("ana")
	store.RecordWin("ana")
	store.RecordWin("bob")

	reloaded := NewStore(path, log.New(io.Discard))
	assert.Equal(t, 2, reloaded.Wins("ana"))
	assert.Equal(t, 1, reloaded.Wins("bob"))

	records := reloaded.Query()
	require.Len(t, records, 2)
	assert.Equal(t, "ana", records[0].Name)
}

func TestMissingFileStartsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope.json"), log.New(io.Discard))
	assert.Empty(t, store.Query())
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{ not json"), 0o644))

	store := NewStore(path, log.New(io.Discard))
	assert.Empty(t, store.Query())

	// The next win overwrites the corrupt file
	store.RecordWin("ana")
	reloaded := NewStore(path, log.New(io.Discard))
	assert.Equal(t, 1, reloaded.Wins("ana"))
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	// Point the store at a path whose directory does not exist; every
	// persist fails but counting continues.
	store := NewStore(filepath.Join(t.TempDir(), "missing", "records.json"), log.New(io.Discard))
	store.RecordWin("ana")
	store.RecordWin("ana")
	assert.Equal(t, 2, store.Wins("ana"))
}

func TestConcurrentWinsAreNotLost(t *testing.T) {
	store, _ := newTestStore(t)

	const (
		sessions       = 16
		winsPerSession = 25
	)
	var g errgroup.Group
	for i := 0; i < sessions; i++ {
		g.Go(func() error {
			for j := 0; j < winsPerSession; j++ {
				store.RecordWin("ana")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, sessions*winsPerSession, store.Wins("ana"))

	records := store.Query()
	require.Len(t, records, 1)
	assert.Equal(t, sessions*winsPerSession, records[0].Wins)
}
