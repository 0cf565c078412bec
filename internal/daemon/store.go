package daemon

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/extrarr/extrarr/pkg/extrasync"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on incompatible schema changes; mismatched
// databases must be deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// extrarr version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store persists job history and task runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore opens or creates the job database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}
	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
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
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
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
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// UpsertJob inserts or replaces the persisted row for one job.
func (s *Store) UpsertJob(ctx context.Context, item extrasync.QueueItem) error {
	return s.execWithRetry(ctx, `
		INSERT OR REPLACE INTO jobs
			(job_id, external_id, display_name, status, queued_at, started_at, ended_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.JobId, item.ExternalId, item.DisplayName, string(item.Status),
		timeToNanos(item.QueuedAt), timeToNanos(item.StartedAt), timeToNanos(item.EndedAt),
		durationMillis(item),
	)
}

// ListJobs returns all persisted jobs in queue order.
func (s *Store) ListJobs(ctx context.Context) ([]extrasync.QueueItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, external_id, display_name, status, queued_at, started_at, ended_at, duration_ms
		FROM jobs ORDER BY queued_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var items []extrasync.QueueItem
	for rows.Next() {
		var (
			item                         extrasync.QueueItem
			status                       string
			queuedNs, startedNs, endedNs int64
			durMs                        int64
		)
		if err := rows.Scan(&item.JobId, &item.ExternalId, &item.DisplayName, &status,
			&queuedNs, &startedNs, &endedNs, &durMs); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		item.Status = extrasync.ParseQueueStatus(status)
		item.QueuedAt = nanosToTime(queuedNs)
		item.StartedAt = nanosToTime(startedNs)
		item.EndedAt = nanosToTime(endedNs)
		if durMs > 0 {
			// Durations go over the wire as float seconds.
			secs := float64(durMs) / 1e3
			item.Duration = []byte(strconv.FormatFloat(secs, 'f', -1, 64))
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// PruneJobs deletes finished jobs that ended before cutoff. Returns the
// number of rows removed.
func (s *Store) PruneJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, execErr := s.db.ExecContext(ctx, `
			DELETE FROM jobs
			WHERE status IN ('success', 'failed') AND ended_at > 0 AND ended_at < ?`,
			timeToNanos(cutoff))
		if execErr != nil {
			return execErr
		}
		removed, execErr = res.RowsAffected()
		return execErr
	})
	return removed, err
}

// RecordTaskRun appends one task execution to the history.
func (s *Store) RecordTaskRun(ctx context.Context, taskId string, startedAt time.Time, durMs int64, status extrasync.TaskStatus) error {
	return s.execWithRetry(ctx, `
		INSERT INTO task_runs (task_id, started_at, duration_ms, status)
		VALUES (?, ?, ?, ?)`,
		taskId, timeToNanos(startedAt), durMs, string(status))
}

// LastTaskRun returns the most recent run for a task. The zero time means
// the task has never run.
func (s *Store) LastTaskRun(ctx context.Context, taskId string) (startedAt time.Time, durMs int64, err error) {
	var startedNs int64
	err = s.db.QueryRowContext(ctx, `
		SELECT started_at, duration_ms FROM task_runs
		WHERE task_id = ? ORDER BY started_at DESC LIMIT 1`, taskId).
		Scan(&startedNs, &durMs)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, 0, nil
	}
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("last task run: %w", err)
	}
	return nanosToTime(startedNs), durMs, nil
}

// Zero means absent; the zero time round-trips as 0 rather than a 1970
// timestamp.
func timeToNanos(t time.Time) int64 {
	if extrasync.IsAbsentTime(t) {
		return 0
	}
	return t.UnixNano()
}

func nanosToTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

func durationMillis(item extrasync.QueueItem) int64 {
	d, ok := extrasync.NormalizeDuration(item.Duration)
	if !ok {
		return 0
	}
	return d.Milliseconds()
}
