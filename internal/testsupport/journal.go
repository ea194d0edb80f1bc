package testsupport

import (
	"testing"

	"isccd/internal/config"
	"isccd/internal/journal"
)

// MustOpenJournal opens a journal store for cfg and closes it when the test ends.
func MustOpenJournal(t testing.TB, cfg *config.Config) *journal.Store {
	t.Helper()

	store, err := journal.Open(cfg)
	if err != nil {
		t.Fatalf("open journal store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
