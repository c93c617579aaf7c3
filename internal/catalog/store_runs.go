package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = "id, disc_root, disc_fingerprint, scanned_at, title_count, failed_count"

// timestampLayout has fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const titleColumns = "playlist, duration_ns, clips, chapter_count, angle_count, streams, fingerprint"

// Save records a scan result and its titles in one transaction.
func (s *Store) Save(ctx context.Context, result *Result) error {
	if result == nil {
		return errors.New("scan result is nil")
	}
	if result.RunID == "" {
		return errors.New("scan result has no run id")
	}
	ctx = ensureContext(ctx)
	return s.withWriteLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			return s.save(ctx, result)
		})
	})
}

func (s *Store) save(ctx context.Context, result *Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	scannedAt := result.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		result.RunID,
		result.DiscRoot,
		nullableString(result.DiscFingerprint),
		scannedAt.UTC().Format(timestampLayout),
		len(result.Titles),
		len(result.Failed),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range result.Titles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO titles (run_id, `+titleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RunID,
			t.Playlist,
			int64(t.Duration),
			strings.Join(t.Clips, ","),
			t.ChapterCount,
			t.AngleCount,
			t.Streams,
			t.Fingerprint,
		); err != nil {
			return fmt.Errorf("insert title %05d: %w", t.Playlist, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Runs lists stored scans, newest first. A non-empty discFingerprint
// restricts the list to that disc.
func (s *Store) Runs(ctx context.Context, discFingerprint string) ([]*Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM scan_runs`
	var args []any
	if discFingerprint != "" {
		query += ` WHERE disc_fingerprint = ?`
		args = append(args, discFingerprint)
	}
	query += ` ORDER BY scanned_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Run fetches one stored scan by id. A missing run returns nil, nil.
func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM scan_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// LatestRun returns the newest scan of a disc, or nil when it was never
// scanned.
func (s *Store) LatestRun(ctx context.Context, discFingerprint string) (*Run, error) {
	if discFingerprint == "" {
		return nil, nil
	}
	runs, err := s.Runs(ctx, discFingerprint)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return runs[0], nil
}

// Titles returns the titles of a run ordered by playlist number.
func (s *Store) Titles(ctx context.Context, runID string) ([]Title, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+titleColumns+` FROM titles WHERE run_id = ? ORDER BY playlist`, runID)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	var titles []Title
	for rows.Next() {
		var (
			t        Title
			duration int64
			clips    string
		)
		if err := rows.Scan(&t.Playlist, &duration, &clips, &t.ChapterCount, &t.AngleCount, &t.Streams, &t.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		t.Duration = time.Duration(duration)
		if clips != "" {
			t.Clips = strings.Split(clips, ",")
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// DeleteRun removes a run and its titles. It reports whether a run existed.
func (s *Store) DeleteRun(ctx context.Context, id string) (bool, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := s.withWriteLock(ctx, func() error {
		return retryOnBusy(ctx, func() error {
			tx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				return err
			}
			defer func() { _ = tx.Rollback() }()
			if _, err := tx.ExecContext(ctx, `DELETE FROM titles WHERE run_id = ?`, id); err != nil {
				return err
			}
			res, err := tx.ExecContext(ctx, `DELETE FROM scan_runs WHERE id = ?`, id)
			if err != nil {
				return err
			}
			if removed, err = res.RowsAffected(); err != nil {
				return err
			}
			return tx.Commit()
		})
	})
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	return removed > 0, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		fingerprint sql.NullString
		scannedRaw  string
	)
	if err := scanner.Scan(&run.ID, &run.DiscRoot, &fingerprint, &scannedRaw, &run.TitleCount, &run.FailedCount); err != nil {
		return nil, err
	}
	run.DiscFingerprint = fingerprint.String
	if ts, err := time.Parse(timestampLayout, scannedRaw); err == nil {
		run.ScannedAt = ts
	}
	return &run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
