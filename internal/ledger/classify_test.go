package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassifyDue(t *testing.T) {
	today := time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  *time.Time
		want DueStatus
	}{
		{"nil", nil, DueNone},
		{"zero", &time.Time{}, DueNone},
		{"yesterday", ptr(day(14)), DueOverdue},
		{"same day different hour", ptr(time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)), DueToday},
		{"tomorrow", ptr(day(16)), DueUpcoming},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyDue(tc.due, today))
		})
	}
}

func ptr(t time.Time) *time.Time { return &t }
