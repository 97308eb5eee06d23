package attend

import (
	"fmt"
	"time"

	"attend-go/internal/model"
)

// DailySummary aggregates across the whole roster for dashboard display.
// The reference day determines which events count as "today"; it is
// interpreted in the store's timezone.
func (s *Service) DailySummary(referenceDay time.Time) (*model.Summary, error) {
	students, err := s.database.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("listing students: %w", err)
	}

	loc := s.database.Location()
	refDay := referenceDay.In(loc).Format("2006-01-02")
	since := referenceDay.AddDate(0, 0, -1)

	summary := &model.Summary{
		TotalStudents:   len(students),
		TodayAttendance: []model.TodayEntry{},
	}

	allStats := make([]*model.Stats, 0, len(students))
	for _, student := range students {
		stats, err := s.statsFor(student)
		if err != nil {
			return nil, fmt.Errorf("computing stats for %s: %w", student.Name, err)
		}
		allStats = append(allStats, stats)
		summary.TotalPresentDays += stats.PresentDays
		summary.TotalDays += stats.TotalDays

		entry := model.TodayEntry{StudentName: student.Name}

		// First match in the student's last-1-day history decides the flag.
		history, err := s.database.EventHistory(student.ID, since)
		if err != nil {
			return nil, fmt.Errorf("querying history for %s: %w", student.Name, err)
		}
		for _, h := range history {
			if h.Timestamp.In(loc).Format("2006-01-02") != refDay {
				continue
			}
			ts := h.Timestamp
			entry.Present = h.Status == model.StatusPresent
			entry.LastMarkedTime = &ts
			break
		}
		summary.TodayAttendance = append(summary.TodayAttendance, entry)
	}

	if summary.TotalDays > 0 {
		summary.OverallPercentage = round2(float64(summary.TotalPresentDays) / float64(summary.TotalDays) * 100)
	}
	summary.ClassAverage = classAverage(allStats)

	return summary, nil
}
