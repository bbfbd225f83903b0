package testsupport

import (
	"context"
	"testing"

	"storyloom/internal/config"
	"storyloom/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// MustSeed populates the reference catalog and fails the test on error.
func MustSeed(t testing.TB, st *store.Store) store.SeedResult {
	t.Helper()

	result, err := st.Seed(context.Background())
	if err != nil {
		t.Fatalf("store.Seed: %v", err)
	}
	return result
}

// SeededStore opens a store and seeds the reference catalog in one step.
func SeededStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st := MustOpenStore(t, cfg)
	MustSeed(t, st)
	return st
}
