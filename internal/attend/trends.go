package attend

import "attend-go/internal/model"

// Trends reshapes a student's monthly and weekly buckets into label/value
// series for charting. Values are present-event counts per bucket.
// Returns ErrStudentNotFound for unknown names.
func (s *Service) Trends(studentName string) (*model.Trends, error) {
	stats, err := s.StudentStats(studentName)
	if err != nil {
		return nil, err
	}

	trends := &model.Trends{
		Monthly: model.TrendSeries{Labels: []string{}, Values: []int{}},
		Weekly:  model.TrendSeries{Labels: []string{}, Values: []int{}},
	}
	for _, b := range stats.MonthlyData {
		trends.Monthly.Labels = append(trends.Monthly.Labels, b.Month)
		trends.Monthly.Values = append(trends.Monthly.Values, b.PresentEvents)
	}
	for _, b := range stats.WeeklyData {
		trends.Weekly.Labels = append(trends.Weekly.Labels, b.Week)
		trends.Weekly.Values = append(trends.Weekly.Values, b.PresentEvents)
	}
	return trends, nil
}
