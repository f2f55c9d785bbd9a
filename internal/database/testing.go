package database

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"
)

// OpenTest opens a migrated SQLite database under t.TempDir and closes it
// when the test ends.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "mamacare-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
