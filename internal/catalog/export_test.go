package catalog

import "fmt"

// SetSchemaVersionForTest rewrites the stored schema version.
func SetSchemaVersionForTest(s *Store, version int) error {
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
