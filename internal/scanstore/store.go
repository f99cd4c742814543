package scanstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ripfeed/internal/es"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates a database written by a different schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrNotFound reports an unknown run id.
var ErrNotFound = errors.New("scan not found")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Hit is the packet count of one subtitle track.
type Hit struct {
	StreamID es.ID
	Language string
	Hits     int64
}

// Scan is one persisted scan pass.
type Scan struct {
	RunID        string
	JobID        string
	Locator      string
	TitleIndex   int
	SourceKind   string
	ChapterStart int
	ChapterEnd   int
	Exit         string
	UnitsRead    uint64
	StartedAt    time.Time
	Duration     time.Duration
	Hits         []Hit
}

// TotalHits sums the subtitle counts.
func (s Scan) TotalHits() int64 {
	var total int64
	for _, h := range s.Hits {
		total += h.Hits
	}
	return total
}

// Store manages scan persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the scan database at path. Every pooled connection
// runs in WAL mode with foreign keys enforced and a busy timeout.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	q := url.Values{}
	for _, p := range []string{"journal_mode(WAL)", "foreign_keys(1)", "busy_timeout(5000)"} {
		q.Add("_pragma", p)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// migrate creates the schema in a fresh database, recorded in
// PRAGMA user_version, and rejects databases written by another version.
func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch version {
	case schemaVersion:
		return nil
	case 0:
	default:
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := range busyRetryAttempts {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

// SaveScan stores scan and its subtitle hits in one transaction. Saving a
// run id again replaces the earlier record.
func (s *Store) SaveScan(ctx context.Context, scan Scan) error {
	if scan.RunID == "" {
		return errors.New("scan run id is required")
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM scans WHERE run_id = ?", scan.RunID); err != nil {
			return fmt.Errorf("replace scan: %w", err)
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO scans (
			run_id, job_id, locator, title_index, source_kind, chapter_start, chapter_end,
			exit_reason, units_read, started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			scan.RunID, scan.JobID, scan.Locator, scan.TitleIndex, scan.SourceKind,
			scan.ChapterStart, scan.ChapterEnd, scan.Exit, int64(scan.UnitsRead),
			scan.StartedAt.UTC().Format(time.RFC3339Nano), scan.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert scan: %w", err)
		}
		for i, h := range scan.Hits {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO subtitle_hits (run_id, position, stream_id, language, hits) VALUES (?, ?, ?, ?, ?)",
				scan.RunID, i, int64(h.StreamID), h.Language, h.Hits,
			); err != nil {
				return fmt.Errorf("insert subtitle hits: %w", err)
			}
		}
		return tx.Commit()
	})
}

// ListScans returns the most recent scans first, with their hits.
func (s *Store) ListScans(ctx context.Context, limit int) ([]Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		run_id, job_id, locator, title_index, source_kind, chapter_start, chapter_end,
		exit_reason, units_read, started_at, duration_ms
		FROM scans ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []Scan
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	for i := range scans {
		hits, err := s.SubtitleHits(ctx, scans[i].RunID)
		if err != nil {
			return nil, err
		}
		scans[i].Hits = hits
	}
	return scans, nil
}

// SubtitleHits returns the per-track counts of one run in track order.
func (s *Store) SubtitleHits(ctx context.Context, runID string) ([]Hit, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM scans WHERE run_id = ?", runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("lookup scan: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT stream_id, language, hits FROM subtitle_hits WHERE run_id = ? ORDER BY position", runID)
	if err != nil {
		return nil, fmt.Errorf("query subtitle hits: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var (
			h  Hit
			id int64
		)
		if err := rows.Scan(&id, &h.Language, &h.Hits); err != nil {
			return nil, fmt.Errorf("scan subtitle hit: %w", err)
		}
		h.StreamID = es.ID(id)
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (Scan, error) {
	var (
		scan      Scan
		units     int64
		started   string
		durationM int64
	)
	if err := row.Scan(&scan.RunID, &scan.JobID, &scan.Locator, &scan.TitleIndex, &scan.SourceKind,
		&scan.ChapterStart, &scan.ChapterEnd, &scan.Exit, &units, &started, &durationM); err != nil {
		return Scan{}, fmt.Errorf("scan row: %w", err)
	}
	scan.UnitsRead = uint64(units)
	scan.Duration = time.Duration(durationM) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		scan.StartedAt = t
	}
	return scan, nil
}
