package scanstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"ripfeed/internal/es"
	"ripfeed/internal/scanstore"
	"ripfeed/internal/testsupport"
)

func sampleScan(runID string, started time.Time) scanstore.Scan {
	return scanstore.Scan{
		RunID:        runID,
		JobID:        "job-" + runID,
		Locator:      "/media/disc",
		TitleIndex:   2,
		SourceKind:   "disc",
		ChapterStart: 1,
		ChapterEnd:   4,
		Exit:         "end_of_range",
		UnitsRead:    1200,
		StartedAt:    started,
		Duration:     1500 * time.Millisecond,
		Hits: []scanstore.Hit{
			{StreamID: es.Substream(0x20), Language: "eng", Hits: 3},
			{StreamID: es.Substream(0x21), Language: "fra", Hits: 0},
		},
	}
}

func TestSaveAndListScans(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenScanStore(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		if err := store.SaveScan(ctx, sampleScan(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("SaveScan: %v", err)
		}
	}

	scans, err := store.ListScans(ctx, 2)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(scans) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(scans))
	}
	if scans[0].RunID != "run-2" || scans[1].RunID != "run-1" {
		t.Fatalf("unexpected order: %s, %s", scans[0].RunID, scans[1].RunID)
	}
	got := scans[0]
	if got.Exit != "end_of_range" || got.UnitsRead != 1200 || got.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected scan: %#v", got)
	}
	if !got.StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("started_at = %v", got.StartedAt)
	}
	if len(got.Hits) != 2 || got.Hits[0].StreamID != es.Substream(0x20) || got.Hits[0].Hits != 3 {
		t.Fatalf("unexpected hits: %#v", got.Hits)
	}
	if got.TotalHits() != 3 {
		t.Fatalf("TotalHits = %d, want 3", got.TotalHits())
	}
}

func TestSaveScanReplacesRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenScanStore(t, cfg)
	ctx := context.Background()

	scan := sampleScan("run-a", time.Now())
	if err := store.SaveScan(ctx, scan); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}
	scan.Hits = []scanstore.Hit{{StreamID: es.Substream(0x20), Language: "eng", Hits: 9}}
	if err := store.SaveScan(ctx, scan); err != nil {
		t.Fatalf("SaveScan again: %v", err)
	}

	hits, err := store.SubtitleHits(ctx, "run-a")
	if err != nil {
		t.Fatalf("SubtitleHits: %v", err)
	}
	if len(hits) != 1 || hits[0].Hits != 9 {
		t.Fatalf("unexpected hits after replace: %#v", hits)
	}
}

func TestSubtitleHitsUnknownRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenScanStore(t, cfg)

	_, err := store.SubtitleHits(context.Background(), "missing")
	if !errors.Is(err, scanstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveScanRequiresRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenScanStore(t, cfg)

	if err := store.SaveScan(context.Background(), scanstore.Scan{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.db")
	store, err := scanstore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	db.Close()

	if _, err := scanstore.Open(path); !errors.Is(err, scanstore.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestOpenExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scans.db")
	store, err := scanstore.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SaveScan(context.Background(), sampleScan("keep", time.Now())); err != nil {
		t.Fatalf("SaveScan: %v", err)
	}
	store.Close()

	reopened, err := scanstore.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	scans, err := reopened.ListScans(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListScans: %v", err)
	}
	if len(scans) != 1 || scans[0].RunID != "keep" {
		t.Fatalf("unexpected scans after reopen: %#v", scans)
	}
}
