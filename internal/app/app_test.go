package app

import (
	"path/filepath"
	"testing"

	"attend-go/internal/attend"
	"attend-go/internal/config"
	"attend-go/internal/model"
)

// newTestApp wires an App over an in-memory store with logs in a temp dir.
func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.NewConfig(t.TempDir())
	cfg.Database.Type = "memory"
	cfg.Timezone = "UTC"

	a, err := NewApp(cfg, "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNewApp(t *testing.T) {
	t.Run("wires a working service", func(t *testing.T) {
		a := newTestApp(t)

		outcome, err := a.Record("Alice", model.StatusPresent, model.SourceManual)
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if outcome != attend.RecordAccepted {
			t.Errorf("outcome = %v, want RecordAccepted", outcome)
		}

		stats, err := a.StudentStats("Alice")
		if err != nil {
			t.Fatalf("StudentStats() error = %v", err)
		}
		if stats.PresentDays != 1 {
			t.Errorf("PresentDays = %d, want 1", stats.PresentDays)
		}
	})

	t.Run("migrates the schema on startup", func(t *testing.T) {
		a := newTestApp(t)

		if err := a.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v, want current schema", err)
		}
	})

	t.Run("creates the log file", func(t *testing.T) {
		base := t.TempDir()
		cfg := config.NewConfig(base)
		cfg.Database.Type = "memory"
		cfg.Timezone = "UTC"

		a, err := NewApp(cfg, "Test")
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		defer a.Close()

		logPath := filepath.Join(base, "log", "attend.log")
		if a.logFile == nil || a.logFile.Name() != logPath {
			t.Errorf("log file = %v, want %s", a.logFile, logPath)
		}
	})

	t.Run("rejects a bad timezone", func(t *testing.T) {
		cfg := config.NewConfig(t.TempDir())
		cfg.Database.Type = "memory"
		cfg.Timezone = "Not/AZone"

		if _, err := NewApp(cfg, "Test"); err == nil {
			t.Error("NewApp() error = nil, want timezone error")
		}
	})
}

func TestSeedSampleData(t *testing.T) {
	t.Run("rejects non-positive days", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.SeedSampleData(0); err == nil {
			t.Error("SeedSampleData(0) error = nil, want error")
		}
	})

	t.Run("seeds the full roster", func(t *testing.T) {
		a := newTestApp(t)

		count, err := a.SeedSampleData(10)
		if err != nil {
			t.Fatalf("SeedSampleData() error = %v", err)
		}
		if want := len(seedStudents) * 10; count != want {
			t.Errorf("count = %d, want %d", count, want)
		}

		names, err := a.ListStudents()
		if err != nil {
			t.Fatalf("ListStudents() error = %v", err)
		}
		if len(names) != len(seedStudents) {
			t.Errorf("got %d students, want %d", len(names), len(seedStudents))
		}

		// Every student has a full recorded window and at least one late
		// arrival from the rotating schedule.
		all, err := a.AllStudentsStats()
		if err != nil {
			t.Fatalf("AllStudentsStats() error = %v", err)
		}
		for _, stats := range all {
			if stats.TotalDays != 10 {
				t.Errorf("%s TotalDays = %d, want 10", stats.StudentName, stats.TotalDays)
			}
			if stats.LateArrivals == 0 {
				t.Errorf("%s LateArrivals = 0, want some from the rotation", stats.StudentName)
			}
		}
	})

	t.Run("is idempotent per day", func(t *testing.T) {
		a := newTestApp(t)

		if _, err := a.SeedSampleData(5); err != nil {
			t.Fatalf("first SeedSampleData() error = %v", err)
		}
		count, err := a.SeedSampleData(5)
		if err != nil {
			t.Fatalf("second SeedSampleData() error = %v", err)
		}
		if count != 0 {
			t.Errorf("second run wrote %d events, want 0", count)
		}
	})
}
