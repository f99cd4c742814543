package testsupport

import (
	"testing"

	"ripfeed/internal/config"
	"ripfeed/internal/scanstore"
)

// MustOpenScanStore opens the scan database configured in cfg and registers cleanup.
func MustOpenScanStore(t testing.TB, cfg *config.Config) *scanstore.Store {
	t.Helper()

	store, err := scanstore.Open(cfg.ScanDBPath())
	if err != nil {
		t.Fatalf("scanstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
