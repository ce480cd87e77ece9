package service

import (
	"path/filepath"
	"testing"
	"time"

	"fintrack/database"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a store in a temp dir whose clock is fixed at now.
func newTestStore(t *testing.T, now time.Time) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "finance_tracker.db"),
		database.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// tickingClock returns a clock that advances one millisecond per call.
func tickingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Millisecond)
		return current
	}
}

func newTickingStore(t *testing.T, start time.Time) *database.Store {
	t.Helper()
	store, err := database.Open(filepath.Join(t.TempDir(), "finance_tracker.db"),
		database.WithClock(tickingClock(start)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
