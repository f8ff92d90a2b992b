package ledger

import "time"

// ClassifyDue buckets a due date relative to today using date-only
// comparison. A nil or zero due date classifies as NONE.
func ClassifyDue(due *time.Time, today time.Time) DueStatus {
	if due == nil || due.IsZero() {
		return DueNone
	}
	d := dateOnly(*due)
	t := dateOnly(today)
	switch {
	case d.Before(t):
		return DueOverdue
	case d.Equal(t):
		return DueToday
	default:
		return DueUpcoming
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
