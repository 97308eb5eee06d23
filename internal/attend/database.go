package attend

import (
	"time"

	"attend-go/internal/model"
)

// Database provides an interface for event store operations: durable append
// of presence events with the daily-duplicate guard, and roster upsert.
// The store never computes derived statistics; it exposes ordered reads and
// plain counts, and the Service derives everything else per call.
type Database interface {
	// Student operations

	// FindStudentByName returns the student with an exact name match,
	// or nil when no such student exists.
	FindStudentByName(name string) (*model.Student, error)

	// FindOrCreateStudent resolves a name to a student, creating the roster
	// record on first reference. Idempotent: repeated calls with the same
	// name return the same student.
	FindOrCreateStudent(name string) (*model.Student, error)

	// ListStudents returns the full roster ordered by name.
	ListStudents() ([]*model.Student, error)

	// Event operations

	// HasEventOnDay reports whether an event already exists for the given
	// student, calendar day (YYYY-MM-DD in the store's timezone) and source,
	// regardless of status.
	HasEventOnDay(studentID, day, source string) (bool, error)

	// InsertEvent appends one event. A (student, day, source) collision
	// returns ErrDuplicateEvent.
	InsertEvent(event *model.Event) error

	// EventsForStudent returns a student's full history, newest first.
	EventsForStudent(studentID string) ([]*model.Event, error)

	// EventHistory returns events within [since, now] joined with student
	// names, newest first. An empty studentID spans the whole roster.
	EventHistory(studentID string, since time.Time) ([]model.HistoryEntry, error)

	// CountPresentEvents returns the all-time number of events with status
	// "present" for a student. Note this counts events, not days.
	CountPresentEvents(studentID string) (int, error)

	// CountDistinctDays returns the all-time number of distinct calendar
	// days on which any event exists for a student.
	CountDistinctDays(studentID string) (int, error)

	// UpdateEventTimestamp rewrites an event's timestamp (and its derived
	// day column). Administrative override for seeding and test tooling,
	// not part of normal operation.
	UpdateEventTimestamp(eventID string, ts time.Time) error

	// Location returns the store's configured timezone. All calendar-day
	// bucketing ("today", days, months, weeks) is evaluated in it.
	Location() *time.Location

	// MigrateUp brings the schema to the latest version, creating it when
	// absent. Called once at startup for deterministic init.
	MigrateUp() error

	// CheckMigrations verifies the schema is at the latest version.
	CheckMigrations() error

	// BackupTo creates a complete copy of the store at destPath.
	BackupTo(destPath string) error

	// Close closes the underlying connection.
	Close() error
}
