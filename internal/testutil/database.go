package testutil

import (
	"testing"
	"time"

	"attend-go/internal/attend"
	"attend-go/internal/database"
)

// NewTestDatabase creates an in-memory SQLite event store with the schema
// applied and UTC as the calendar timezone. The store is closed when the
// test completes.
func NewTestDatabase(t *testing.T) attend.Database {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// Each pooled connection would see its own in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	db := database.NewSQLiteDatabaseFromDB(sqlDB, time.UTC)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
