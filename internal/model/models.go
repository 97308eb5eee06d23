package model

import "time"

// Statuses the core understands. Event status is an open string set; anything
// that is not StatusPresent counts as non-present for derivations.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Event sources.
const (
	SourceManual    = "manual"
	SourceAutomatic = "automatic"
)

// Student is a tracked roster member. Identity is resolved by Name, not by
// caller-supplied ID; students are created lazily on first reference and
// never deleted by the core.
type Student struct {
	ID             string // UUID
	Name           string // Unique display name
	EnrollmentDate time.Time
}

// Event is one presence record. At most one event may exist per
// (StudentID, Day, Source); Day is the calendar day of Timestamp in the
// store's configured timezone, written at insert time.
type Event struct {
	ID        string // UUID
	StudentID string // Foreign key to Student
	Timestamp time.Time
	Day       string // YYYY-MM-DD in the store's timezone
	Status    string
	Source    string
}

// HistoryEntry is an event joined with its student's name, as returned by
// windowed history queries.
type HistoryEntry struct {
	StudentName string    `json:"student_name"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Source      string    `json:"source"`
}

// RecentEntry is one (day, status) pair in a student's recent attendance.
type RecentEntry struct {
	Day    string `json:"day"`
	Status string `json:"status"`
}

// MonthlyBucket aggregates one calendar month of a student's history.
type MonthlyBucket struct {
	Month         string `json:"month"` // YYYY-MM
	TotalEvents   int    `json:"total_events"`
	PresentEvents int    `json:"present_events"`
}

// WeeklyBucket aggregates one calendar week. Week numbering is Monday-based,
// with days before the first Monday of the year falling in week 00.
type WeeklyBucket struct {
	Week          string `json:"week"` // YYYY-Www
	TotalEvents   int    `json:"total_events"`
	PresentEvents int    `json:"present_events"`
}

// Stats is the full set of derived attendance statistics for one student.
type Stats struct {
	StudentName          string          `json:"student_name"`
	PresentDays          int             `json:"present_days"`
	TotalDays            int             `json:"total_days"`
	AttendancePercentage float64         `json:"attendance_percentage"`
	RecentAttendance     []RecentEntry   `json:"recent_attendance"`
	MonthlyData          []MonthlyBucket `json:"monthly_data"`
	WeeklyData           []WeeklyBucket  `json:"weekly_data"`
	CurrentStreak        int             `json:"current_streak"`
	LateArrivals         int             `json:"late_arrivals"`
}

// TodayEntry reports whether a student was marked present on the summary's
// reference day, and when.
type TodayEntry struct {
	StudentName    string     `json:"student_name"`
	Present        bool       `json:"present"`
	LastMarkedTime *time.Time `json:"last_marked_time"`
}

// Summary is the class-wide rollup for dashboard display.
type Summary struct {
	TotalStudents     int          `json:"total_students"`
	TotalPresentDays  int          `json:"total_present_days"`
	TotalDays         int          `json:"total_days"`
	OverallPercentage float64      `json:"overall_percentage"`
	ClassAverage      float64      `json:"class_average"`
	TodayAttendance   []TodayEntry `json:"today_attendance"`
}

// TrendSeries is one label/value series shaped for charting.
type TrendSeries struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Trends holds the chart-ready reshaping of a student's monthly and weekly
// buckets. Values are present-event counts.
type Trends struct {
	Monthly TrendSeries `json:"monthly"`
	Weekly  TrendSeries `json:"weekly"`
}
