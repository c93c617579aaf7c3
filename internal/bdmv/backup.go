package bdmv

import (
	"errors"
	"fmt"
	"log/slog"

	"bdnav/internal/logging"
)

// ErrBackupFailed tags the secondary error when the backup copy also failed.
var ErrBackupFailed = errors.New("backup copy failed")

// WithBackup runs decode on path and, if that fails, once more on the
// BACKUP mirror of path. When both fail the returned error wraps the primary
// failure first and carries the backup failure as joined context, so
// errors.Is matches either cause and the primary message prints first.
func WithBackup[T any](path string, logger *slog.Logger, decode func(string) (T, error)) (T, error) {
	value, err := decode(path)
	if err == nil {
		return value, nil
	}

	backup, ok := BackupPath(path)
	if !ok {
		return value, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logging.WarnWithContext(logger, "primary copy unreadable, trying backup", "backup_retry",
		logging.Path(path),
		logging.String("backup_path", backup),
		logging.Error(err),
		logging.String(logging.FieldImpact, "reading the BACKUP mirror instead"),
	)

	value, berr := decode(backup)
	if berr == nil {
		logger.Info("decoded backup copy", logging.Path(backup))
		return value, nil
	}
	var zero T
	return zero, errors.Join(err, fmt.Errorf("%w: %s: %w", ErrBackupFailed, backup, berr))
}
