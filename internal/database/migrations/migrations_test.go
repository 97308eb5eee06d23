package migrations

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	// All expected tables exist.
	for _, table := range []string{"students", "events", "schema_migrations"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after migration: %v", table, err)
		}
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first MigrateUp() error = %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)

		err := CheckDBMigrationStatus(db)
		if err == nil {
			t.Fatal("CheckDBMigrationStatus() = nil, want error for unmigrated database")
		}
		if !strings.Contains(err.Error(), "no schema version") {
			t.Errorf("error = %v, want no-schema-version message", err)
		}
	})

	t.Run("migrated database is current", func(t *testing.T) {
		db := openTestDB(t)

		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v, want nil", err)
		}
	})
}

func TestSchemaConstraints(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("exec %q: %v", query, err)
		}
	}

	mustExec("INSERT INTO students (id, name, enrollment_date) VALUES ('st-1', 'Alice', datetime('now'))")

	t.Run("student names are unique", func(t *testing.T) {
		_, err := db.Exec(
			"INSERT INTO students (id, name, enrollment_date) VALUES ('st-2', 'Alice', datetime('now'))")
		if err == nil {
			t.Error("duplicate student name accepted, want unique constraint violation")
		}
	})

	t.Run("one event per student, day and source", func(t *testing.T) {
		mustExec(`INSERT INTO events (id, student_id, timestamp, day, status, source)
			VALUES ('ev-1', 'st-1', datetime('now'), '2026-03-16', 'present', 'manual')`)

		_, err := db.Exec(`INSERT INTO events (id, student_id, timestamp, day, status, source)
			VALUES ('ev-2', 'st-1', datetime('now'), '2026-03-16', 'absent', 'manual')`)
		if err == nil {
			t.Error("duplicate (student, day, source) accepted, want unique constraint violation")
		}

		// A different source on the same day is fine.
		mustExec(`INSERT INTO events (id, student_id, timestamp, day, status, source)
			VALUES ('ev-3', 'st-1', datetime('now'), '2026-03-16', 'present', 'automatic')`)
	})

	t.Run("events require an existing student", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO events (id, student_id, timestamp, day, status, source)
			VALUES ('ev-4', 'missing', datetime('now'), '2026-03-16', 'present', 'manual')`)
		if err == nil {
			t.Error("event for unknown student accepted, want foreign key violation")
		}
	})
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
