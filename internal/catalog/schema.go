package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stored in SQLite's user_version header field. Bump it
// whenever schema.sql changes; existing databases are then rejected and
// users delete them to rebuild.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// catalog schema.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) userVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// initSchema creates the tables on a fresh database and checks the version of
// an existing one. Creation runs under the write lock so two processes
// opening a new catalog at once do not both create it.
func (s *Store) initSchema(ctx context.Context) error {
	version, err := s.userVersion(ctx)
	if err != nil {
		return err
	}
	if version == schemaVersion {
		return nil
	}
	if version != 0 {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild the catalog)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	return s.withWriteLock(ctx, func() error {
		if version, err := s.userVersion(ctx); err != nil || version != 0 {
			return err
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	})
}
