package attend

import "errors"

// Sentinel errors for the core's taxonomy. Anything else crossing the
// Database boundary is a store failure wrapped with operation context.
var (
	// ErrStudentNotFound means the named student has no roster record.
	// Distinct from "registered but zero events", which yields zero-valued
	// stats instead.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidInput means a required field was missing or empty. Raised
	// before the store is touched.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateEvent means an event for the same (student, day, source)
	// already exists. Store implementations map their unique-constraint
	// violations to this so the losing side of a concurrent insert is
	// reported as a duplicate rather than a failure.
	ErrDuplicateEvent = errors.New("attendance already logged for that day and source")
)

func isDuplicate(err error) bool { return errors.Is(err, ErrDuplicateEvent) }
