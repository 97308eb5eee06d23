package app

import (
	"fmt"
	"os"
	"time"

	"attend-go/internal/attend"
	"attend-go/internal/config"
	"attend-go/internal/database"
	"attend-go/internal/model"
)

// App is the application layer between the CLI and the attendance service.
// It constructs all dependencies from config with deterministic init
// (migrations run on startup) and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	db      attend.Database
	service *attend.Service
	logger  attend.Logger
	clock   attend.Clock
	logFile *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Record", "Serve").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	if cfg.Database.Type == "sqlite" && cfg.Database.DataDir != "" {
		if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, loc)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	// Deterministic init: create or update the schema on every startup.
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	logger := &slogAdapter{l: slogger}
	clock := attend.RealClock{}
	svc := attend.NewService(db, logger, clock, attend.UUIDGenerator{})

	logger.Debug("app initialized", "operation", operation)

	return &App{
		cfg:     cfg,
		db:      db,
		service: svc,
		logger:  logger,
		clock:   clock,
		logFile: logFile,
	}, nil
}

// Service exposes the wired attendance service.
func (a *App) Service() *attend.Service { return a.service }

// Logger exposes the wired structured logger.
func (a *App) Logger() attend.Logger { return a.logger }

// Clock exposes the wired clock.
func (a *App) Clock() attend.Clock { return a.clock }

// Config exposes the loaded configuration.
func (a *App) Config() *config.Config { return a.cfg }

// Record logs one attendance event.
func (a *App) Record(studentName, status, source string) (attend.RecordOutcome, error) {
	return a.service.RecordAttendance(studentName, status, source)
}

// StudentStats returns derived statistics for one student.
func (a *App) StudentStats(studentName string) (*model.Stats, error) {
	return a.service.StudentStats(studentName)
}

// AllStudentsStats returns derived statistics for the whole roster.
func (a *App) AllStudentsStats() ([]*model.Stats, error) {
	return a.service.AllStudentsStats()
}

// ClassAverage returns the roster-wide mean attendance percentage.
func (a *App) ClassAverage() (float64, error) {
	return a.service.ClassAverage()
}

// History returns attendance events within the last windowDays days.
func (a *App) History(studentName string, windowDays int) ([]model.HistoryEntry, error) {
	return a.service.History(studentName, windowDays)
}

// DailySummary returns the class-wide rollup for today.
func (a *App) DailySummary() (*model.Summary, error) {
	return a.service.DailySummary(a.clock.Now())
}

// Trends returns chart-ready series for one student.
func (a *App) Trends(studentName string) (*model.Trends, error) {
	return a.service.Trends(studentName)
}

// ListStudents returns all registered student names sorted ascending.
func (a *App) ListStudents() ([]string, error) {
	return a.service.ListStudents()
}

// CorrectEventTimestamp rewrites a stored event's timestamp (admin override).
func (a *App) CorrectEventTimestamp(eventID string, ts time.Time) error {
	return a.service.CorrectEventTimestamp(eventID, ts)
}

// BackupTo snapshots the store to destPath.
func (a *App) BackupTo(destPath string) error {
	return a.db.BackupTo(destPath)
}

// CheckMigrations reports whether the store schema is current.
func (a *App) CheckMigrations() error {
	return a.db.CheckMigrations()
}

// Close closes the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.db.Close(); err != nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
