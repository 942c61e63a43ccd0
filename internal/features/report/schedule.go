package report

import "time"

// NextRunTime computes when a report is next due: one schedule period
// after its last generation (or its creation time if it never ran).
// Once-only and unrecognized schedule types have no next run.
func NextRunTime(r *CustomReport) *time.Time {
	base := r.CreatedAt
	if r.GeneratedAt != nil {
		base = *r.GeneratedAt
	}

	var next time.Time
	switch r.ScheduleType {
	case ScheduleDaily:
		next = base.AddDate(0, 0, 1)
	case ScheduleWeekly:
		next = base.AddDate(0, 0, 7)
	case ScheduleMonthly:
		next = base.AddDate(0, 1, 0)
	default:
		return nil
	}
	return &next
}

// ShouldExecuteNow reports whether a next run time exists and is in the past
func ShouldExecuteNow(r *CustomReport, now time.Time) bool {
	next := NextRunTime(r)
	return next != nil && next.Before(now)
}
