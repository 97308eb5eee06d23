package attend_test

import (
	"testing"
	"time"

	"attend-go/internal/model"
)

func TestDailySummary(t *testing.T) {
	t.Run("empty roster", func(t *testing.T) {
		svc, clock, _ := newTestService(t)

		summary, err := svc.DailySummary(clock.Now())
		if err != nil {
			t.Fatalf("DailySummary() error = %v", err)
		}
		if summary.TotalStudents != 0 {
			t.Errorf("TotalStudents = %d, want 0", summary.TotalStudents)
		}
		if summary.OverallPercentage != 0 || summary.ClassAverage != 0 {
			t.Errorf("percentages = %v/%v, want 0/0", summary.OverallPercentage, summary.ClassAverage)
		}
		if summary.TodayAttendance == nil || len(summary.TodayAttendance) != 0 {
			t.Errorf("TodayAttendance = %v, want empty slice", summary.TodayAttendance)
		}
	})

	t.Run("mixed roster", func(t *testing.T) {
		svc, clock, db := newTestService(t)
		today := clock.Now()

		recordAt(t, svc, clock, today, "Alice", model.StatusPresent)
		recordAt(t, svc, clock, today, "Bob", model.StatusAbsent)
		if _, err := db.FindOrCreateStudent("Charlie"); err != nil {
			t.Fatalf("FindOrCreateStudent() error = %v", err)
		}

		summary, err := svc.DailySummary(today)
		if err != nil {
			t.Fatalf("DailySummary() error = %v", err)
		}

		if summary.TotalStudents != 3 {
			t.Errorf("TotalStudents = %d, want 3", summary.TotalStudents)
		}
		if summary.TotalPresentDays != 1 {
			t.Errorf("TotalPresentDays = %d, want 1", summary.TotalPresentDays)
		}
		if summary.TotalDays != 2 {
			t.Errorf("TotalDays = %d, want 2", summary.TotalDays)
		}
		if summary.OverallPercentage != 50 {
			t.Errorf("OverallPercentage = %v, want 50", summary.OverallPercentage)
		}
		// (100 + 0 + 0) / 3, rounded.
		if summary.ClassAverage != 33.33 {
			t.Errorf("ClassAverage = %v, want 33.33", summary.ClassAverage)
		}

		if len(summary.TodayAttendance) != 3 {
			t.Fatalf("got %d today entries, want 3", len(summary.TodayAttendance))
		}

		alice := summary.TodayAttendance[0]
		if alice.StudentName != "Alice" || !alice.Present {
			t.Errorf("alice = %+v, want present", alice)
		}
		if alice.LastMarkedTime == nil {
			t.Error("alice.LastMarkedTime = nil, want timestamp")
		} else if !alice.LastMarkedTime.Equal(today) {
			t.Errorf("alice.LastMarkedTime = %v, want %v", alice.LastMarkedTime, today)
		}

		bob := summary.TodayAttendance[1]
		if bob.StudentName != "Bob" || bob.Present {
			t.Errorf("bob = %+v, want marked absent", bob)
		}
		if bob.LastMarkedTime == nil {
			t.Error("bob.LastMarkedTime = nil, want timestamp for an absent mark")
		}

		charlie := summary.TodayAttendance[2]
		if charlie.StudentName != "Charlie" || charlie.Present {
			t.Errorf("charlie = %+v, want unmarked", charlie)
		}
		if charlie.LastMarkedTime != nil {
			t.Errorf("charlie.LastMarkedTime = %v, want nil", charlie.LastMarkedTime)
		}
	})

	t.Run("yesterday's mark does not count as today", func(t *testing.T) {
		svc, clock, _ := newTestService(t)
		today := clock.Now()

		recordAt(t, svc, clock, today.AddDate(0, 0, -1), "Alice", model.StatusPresent)
		clock.Set(today)

		summary, err := svc.DailySummary(today)
		if err != nil {
			t.Fatalf("DailySummary() error = %v", err)
		}
		entry := summary.TodayAttendance[0]
		if entry.Present {
			t.Error("Present = true, want false for yesterday's event")
		}
		if entry.LastMarkedTime != nil {
			t.Errorf("LastMarkedTime = %v, want nil", entry.LastMarkedTime)
		}
		// The lifetime counters still see the old event.
		if summary.TotalPresentDays != 1 || summary.TotalDays != 1 {
			t.Errorf("lifetime counts = %d/%d, want 1/1", summary.TotalPresentDays, summary.TotalDays)
		}
	})

	t.Run("reference day selects the summarized day", func(t *testing.T) {
		svc, clock, _ := newTestService(t)
		today := clock.Now()

		recordAt(t, svc, clock, today, "Alice", model.StatusPresent)

		// Summarizing tomorrow: today's event is within the 1-day lookback
		// but its day string no longer matches.
		summary, err := svc.DailySummary(today.Add(24 * time.Hour))
		if err != nil {
			t.Fatalf("DailySummary() error = %v", err)
		}
		if summary.TodayAttendance[0].Present {
			t.Error("Present = true, want false when summarizing the next day")
		}
	})
}
