package attend

import (
	"fmt"
	"strings"
	"time"

	"attend-go/internal/model"
)

// RecordOutcome is the tagged result of a record call. Duplicates and store
// failures are distinct outcomes so callers can react differently; the
// accompanying error carries details only for RecordFailed.
type RecordOutcome int

const (
	// RecordAccepted means the event was written.
	RecordAccepted RecordOutcome = iota
	// RecordDuplicate means an equivalent (student, day, source) event
	// already exists and nothing was written.
	RecordDuplicate
	// RecordFailed means the store rejected the write for reasons other
	// than duplication.
	RecordFailed
)

func (o RecordOutcome) String() string {
	switch o {
	case RecordAccepted:
		return "accepted"
	case RecordDuplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Service is the orchestration layer over the event store: it exposes the
// idempotent record operation and the aggregation engine. Every call
// re-reads the store; there is no caching and no engine-level locking.
type Service struct {
	database Database
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(database Database, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		database: database,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// RecordAttendance logs one presence event for the named student, creating
// the roster record on first sight. At most one event is kept per
// (student, day, source); the day is evaluated in the store's timezone at
// the clock's current time.
func (s *Service) RecordAttendance(studentName, status, source string) (RecordOutcome, error) {
	studentName = strings.TrimSpace(studentName)
	if studentName == "" {
		return RecordFailed, fmt.Errorf("%w: student name is required", ErrInvalidInput)
	}
	if status == "" {
		return RecordFailed, fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	if source == "" {
		return RecordFailed, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}

	student, err := s.database.FindOrCreateStudent(studentName)
	if err != nil {
		return RecordFailed, fmt.Errorf("resolving student: %w", err)
	}

	now := s.clock.Now().In(s.database.Location())
	day := now.Format("2006-01-02")

	exists, err := s.database.HasEventOnDay(student.ID, day, source)
	if err != nil {
		return RecordFailed, fmt.Errorf("checking for existing event: %w", err)
	}
	if exists {
		s.logger.Debug("attendance already logged", "student", studentName, "day", day, "source", source)
		return RecordDuplicate, nil
	}

	event := &model.Event{
		ID:        s.idgen.New(),
		StudentID: student.ID,
		Timestamp: now,
		Day:       day,
		Status:    status,
		Source:    source,
	}
	if err := s.database.InsertEvent(event); err != nil {
		// The unique index may fire if a concurrent call won the race
		// between the check and the insert. That is still a duplicate.
		if isDuplicate(err) {
			s.logger.Debug("attendance already logged", "student", studentName, "day", day, "source", source)
			return RecordDuplicate, nil
		}
		return RecordFailed, fmt.Errorf("inserting event: %w", err)
	}

	s.logger.Info("attendance recorded", "student", studentName, "status", status, "source", source)
	return RecordAccepted, nil
}

// History returns attendance events within the last windowDays days, newest
// first. With an empty studentName the window spans the whole roster;
// otherwise an unknown name returns ErrStudentNotFound.
func (s *Service) History(studentName string, windowDays int) ([]model.HistoryEntry, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: window must be positive", ErrInvalidInput)
	}

	studentID := ""
	if studentName != "" {
		student, err := s.database.FindStudentByName(studentName)
		if err != nil {
			return nil, fmt.Errorf("finding student: %w", err)
		}
		if student == nil {
			return nil, ErrStudentNotFound
		}
		studentID = student.ID
	}

	since := s.clock.Now().AddDate(0, 0, -windowDays)
	entries, err := s.database.EventHistory(studentID, since)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return entries, nil
}

// ListStudents returns all registered student names sorted ascending.
func (s *Service) ListStudents() ([]string, error) {
	students, err := s.database.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}
	names := make([]string, len(students))
	for i, st := range students {
		names[i] = st.Name
	}
	return names, nil
}

// CorrectEventTimestamp rewrites a stored event's timestamp. Administrative
// override used by seeding tooling; normal operation never mutates events.
func (s *Service) CorrectEventTimestamp(eventID string, ts time.Time) error {
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if err := s.database.UpdateEventTimestamp(eventID, ts); err != nil {
		return fmt.Errorf("updating event timestamp: %w", err)
	}
	return nil
}
