package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	sqlite3 "github.com/mattn/go-sqlite3"

	"attend-go/internal/attend"
	"attend-go/internal/database/migrations"
	"attend-go/internal/model"
)

// SQLiteDatabase implements the attend.Database event store using SQLite.
// All calendar-day values ("today", the events.day column) are evaluated in
// the configured location.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
	loc  *time.Location
}

// NewSQLiteDatabase opens a SQLite-backed event store.
// path can be a file path or ":memory:" for an in-memory database.
// A nil loc defaults to the local timezone.
func NewSQLiteDatabase(path string, loc *time.Location) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteDatabase{db: db, path: path, loc: loc}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection. The caller is
// responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB, loc *time.Location) *SQLiteDatabase {
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteDatabase{db: db, path: "", loc: loc}
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; the events table relies on
	// them for the no-orphaning invariant.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Serialize writers waiting on the file lock instead of failing fast.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return db, nil
}

// Student operations

func (s *SQLiteDatabase) FindStudentByName(name string) (*model.Student, error) {
	row := s.db.QueryRowContext(context.Background(),
		"SELECT id, name, enrollment_date FROM students WHERE name = ?", name)

	var st model.Student
	if err := row.Scan(&st.ID, &st.Name, &st.EnrollmentDate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding student by name: %w", err)
	}
	return &st, nil
}

func (s *SQLiteDatabase) FindOrCreateStudent(name string) (*model.Student, error) {
	existing, err := s.FindStudentByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	st := &model.Student{
		ID:             uuid.New().String(),
		Name:           name,
		EnrollmentDate: time.Now().In(s.loc),
	}
	_, err = s.db.ExecContext(context.Background(),
		"INSERT INTO students (id, name, enrollment_date) VALUES (?, ?, ?)",
		st.ID, st.Name, st.EnrollmentDate)
	if err != nil {
		// A concurrent caller may have created the same name between the
		// lookup and the insert; resolve to their row.
		if isUniqueViolation(err) {
			return s.FindStudentByName(name)
		}
		return nil, fmt.Errorf("creating student: %w", err)
	}
	return st, nil
}

func (s *SQLiteDatabase) ListStudents() ([]*model.Student, error) {
	rows, err := s.db.QueryContext(context.Background(),
		"SELECT id, name, enrollment_date FROM students ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		var st model.Student
		if err := rows.Scan(&st.ID, &st.Name, &st.EnrollmentDate); err != nil {
			return nil, fmt.Errorf("scanning student: %w", err)
		}
		students = append(students, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	return students, nil
}

// Event operations

func (s *SQLiteDatabase) HasEventOnDay(studentID, day, source string) (bool, error) {
	row := s.db.QueryRowContext(context.Background(),
		"SELECT 1 FROM events WHERE student_id = ? AND day = ? AND source = ?",
		studentID, day, source)

	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking for event on day: %w", err)
	}
	return true, nil
}

func (s *SQLiteDatabase) InsertEvent(event *model.Event) error {
	day := event.Day
	if day == "" {
		day = event.Timestamp.In(s.loc).Format("2006-01-02")
	}
	_, err := s.db.ExecContext(context.Background(),
		"INSERT INTO events (id, student_id, timestamp, day, status, source) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.StudentID, event.Timestamp, day, event.Status, event.Source)
	if err != nil {
		if isUniqueViolation(err) {
			return attend.ErrDuplicateEvent
		}
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) EventsForStudent(studentID string) ([]*model.Event, error) {
	rows, err := s.db.QueryContext(context.Background(),
		`SELECT id, student_id, timestamp, day, status, source
		 FROM events WHERE student_id = ? ORDER BY timestamp DESC`, studentID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Timestamp, &e.Day, &e.Status, &e.Source); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	return events, nil
}

func (s *SQLiteDatabase) EventHistory(studentID string, since time.Time) ([]model.HistoryEntry, error) {
	query := `SELECT s.name, e.timestamp, e.status, e.source
		FROM events e
		JOIN students s ON e.student_id = s.id
		WHERE e.timestamp >= ?`
	args := []any{since}
	if studentID != "" {
		query += " AND e.student_id = ?"
		args = append(args, studentID)
	}
	query += " ORDER BY e.timestamp DESC"

	rows, err := s.db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying event history: %w", err)
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		var h model.HistoryEntry
		if err := rows.Scan(&h.StudentName, &h.Timestamp, &h.Status, &h.Source); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying event history: %w", err)
	}
	return entries, nil
}

func (s *SQLiteDatabase) CountPresentEvents(studentID string) (int, error) {
	row := s.db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM events WHERE student_id = ? AND status = ?",
		studentID, model.StatusPresent)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting present events: %w", err)
	}
	return count, nil
}

func (s *SQLiteDatabase) CountDistinctDays(studentID string) (int, error) {
	row := s.db.QueryRowContext(context.Background(),
		"SELECT COUNT(DISTINCT day) FROM events WHERE student_id = ?", studentID)

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting distinct days: %w", err)
	}
	return count, nil
}

func (s *SQLiteDatabase) UpdateEventTimestamp(eventID string, ts time.Time) error {
	day := ts.In(s.loc).Format("2006-01-02")
	res, err := s.db.ExecContext(context.Background(),
		"UPDATE events SET timestamp = ?, day = ? WHERE id = ?", ts, day, eventID)
	if err != nil {
		if isUniqueViolation(err) {
			return attend.ErrDuplicateEvent
		}
		return fmt.Errorf("updating event timestamp: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating event timestamp: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no event with id %s", eventID)
	}
	return nil
}

// Location returns the store's configured timezone.
func (s *SQLiteDatabase) Location() *time.Location {
	return s.loc
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// MigrateUp brings the schema to the latest version, creating it if absent.
func (s *SQLiteDatabase) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	return errors.As(err, &sqlErr) && sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Compile-time check that SQLiteDatabase implements attend.Database.
var _ attend.Database = (*SQLiteDatabase)(nil)
