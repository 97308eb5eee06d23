package attend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"attend-go/internal/model"
)

// Lookback windows for the derived series.
const (
	recentWindowDays = 30
	weeklyWindowDays = 84
)

// lateHour is the hour-of-day threshold for late arrivals. The comparison is
// on the hour component only: 10:00 and later is late, 09:59 is not.
const lateHour = 9

// StudentStats computes the full set of derived statistics for one student.
// Returns ErrStudentNotFound when the name has no roster record; a student
// with zero events yields zero-valued stats instead.
func (s *Service) StudentStats(studentName string) (*model.Stats, error) {
	if studentName == "" {
		return nil, fmt.Errorf("%w: student name is required", ErrInvalidInput)
	}
	student, err := s.database.FindStudentByName(studentName)
	if err != nil {
		return nil, fmt.Errorf("finding student: %w", err)
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return s.statsFor(student)
}

// AllStudentsStats computes stats for every registered student in roster
// order. Students with zero events are included with zero-valued fields.
func (s *Service) AllStudentsStats() ([]*model.Stats, error) {
	students, err := s.database.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	all := make([]*model.Stats, 0, len(students))
	for _, student := range students {
		stats, err := s.statsFor(student)
		if err != nil {
			return nil, fmt.Errorf("computing stats for %s: %w", student.Name, err)
		}
		all = append(all, stats)
	}
	return all, nil
}

// ClassAverage returns the unweighted mean of all students' attendance
// percentages, rounded to 2 places. An empty roster averages to 0.
func (s *Service) ClassAverage() (float64, error) {
	all, err := s.AllStudentsStats()
	if err != nil {
		return 0, err
	}
	return classAverage(all), nil
}

// statsFor derives one student's stats from the store's current contents.
// PresentDays and TotalDays are two independent queries; interleaved writes
// can make them mutually inconsistent, and callers tolerate that.
func (s *Service) statsFor(student *model.Student) (*model.Stats, error) {
	presentDays, err := s.database.CountPresentEvents(student.ID)
	if err != nil {
		return nil, fmt.Errorf("counting present events: %w", err)
	}

	totalDays, err := s.database.CountDistinctDays(student.ID)
	if err != nil {
		return nil, fmt.Errorf("counting distinct days: %w", err)
	}

	percentage := 0.0
	if totalDays > 0 {
		percentage = round2(float64(presentDays) / float64(totalDays) * 100)
	}

	events, err := s.database.EventsForStudent(student.ID)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}

	loc := s.database.Location()
	now := s.clock.Now().In(loc)

	return &model.Stats{
		StudentName:          student.Name,
		PresentDays:          presentDays,
		TotalDays:            totalDays,
		AttendancePercentage: percentage,
		RecentAttendance:     recentAttendance(events, now, loc),
		MonthlyData:          monthlyBuckets(events, loc),
		WeeklyData:           weeklyBuckets(events, now, loc),
		CurrentStreak:        currentStreak(events),
		LateArrivals:         lateArrivals(events, loc),
	}, nil
}

// recentAttendance returns (day, status) pairs for events within the last
// 30 days, preserving the newest-first event order.
func recentAttendance(events []*model.Event, now time.Time, loc *time.Location) []model.RecentEntry {
	cutoff := now.AddDate(0, 0, -recentWindowDays)
	recent := []model.RecentEntry{}
	for _, e := range events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		recent = append(recent, model.RecentEntry{
			Day:    e.Timestamp.In(loc).Format("2006-01-02"),
			Status: e.Status,
		})
	}
	return recent
}

// monthlyBuckets groups the full history by calendar month, newest first.
func monthlyBuckets(events []*model.Event, loc *time.Location) []model.MonthlyBucket {
	byMonth := make(map[string]*model.MonthlyBucket)
	for _, e := range events {
		label := e.Timestamp.In(loc).Format("2006-01")
		b := byMonth[label]
		if b == nil {
			b = &model.MonthlyBucket{Month: label}
			byMonth[label] = b
		}
		b.TotalEvents++
		if e.Status == model.StatusPresent {
			b.PresentEvents++
		}
	}

	buckets := make([]model.MonthlyBucket, 0, len(byMonth))
	for _, b := range byMonth {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Month > buckets[j].Month })
	return buckets
}

// weeklyBuckets groups events from the last 84 days by calendar week,
// newest first.
func weeklyBuckets(events []*model.Event, now time.Time, loc *time.Location) []model.WeeklyBucket {
	cutoff := now.AddDate(0, 0, -weeklyWindowDays)
	byWeek := make(map[string]*model.WeeklyBucket)
	for _, e := range events {
		if e.Timestamp.Before(cutoff) {
			continue
		}
		label := weekLabel(e.Timestamp.In(loc))
		b := byWeek[label]
		if b == nil {
			b = &model.WeeklyBucket{Week: label}
			byWeek[label] = b
		}
		b.TotalEvents++
		if e.Status == model.StatusPresent {
			b.PresentEvents++
		}
	}

	buckets := make([]model.WeeklyBucket, 0, len(byWeek))
	for _, b := range byWeek {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Week > buckets[j].Week })
	return buckets
}

// currentStreak counts consecutive present events scanning newest-first and
// stops at the first non-present status. The scan is over stored events, not
// calendar days: a day with no event does not break the streak, only an
// explicit non-present status does.
func currentStreak(events []*model.Event) int {
	streak := 0
	for _, e := range events {
		if e.Status != model.StatusPresent {
			break
		}
		streak++
	}
	return streak
}

// lateArrivals counts present events arriving at hour 10 or later.
func lateArrivals(events []*model.Event, loc *time.Location) int {
	late := 0
	for _, e := range events {
		if e.Status == model.StatusPresent && e.Timestamp.In(loc).Hour() > lateHour {
			late++
		}
	}
	return late
}

// weekLabel formats a time as YYYY-Www using Monday-based week-of-year
// numbering: days before the first Monday of the year fall in week 00.
func weekLabel(t time.Time) string {
	yday := t.YearDay() - 1
	monday := (int(t.Weekday()) + 6) % 7 // Monday = 0 ... Sunday = 6
	week := (yday + 7 - monday) / 7
	return fmt.Sprintf("%04d-W%02d", t.Year(), week)
}

func classAverage(all []*model.Stats) float64 {
	if len(all) == 0 {
		return 0
	}
	total := 0.0
	for _, st := range all {
		total += st.AttendancePercentage
	}
	return round2(total / float64(len(all)))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
