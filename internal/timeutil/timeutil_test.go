package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeconds(t *testing.T) {
	cases := map[int]string{
		0:    "0s",
		45:   "45s",
		60:   "1m",
		719:  "11m",
		3600: "1h",
		3900: "1h 5m",
		7200: "2h",
		7259: "2h",
	}

	for in, want := range cases {
		assert.Equal(t, want, FormatSeconds(in), "FormatSeconds(%d)", in)
	}
}

func TestPeriodRange(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		period Period
		start  time.Time
		end    time.Time
	}{
		{
			PeriodToday,
			time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			PeriodYesterday,
			time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 14, 23, 59, 59, 999999999, time.UTC),
		},
		{
			PeriodWeek,
			time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			PeriodMonth,
			time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			Period7Days,
			time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 5, 15, 23, 59, 59, 999999999, time.UTC),
		},
		{
			PeriodAllTime,
			time.Time{},
			time.Date(2024, 5, 15, 23, 59, 59, 999999999, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			start, end := PeriodRange(tc.period, now)
			assert.True(t, tc.start.Equal(start), "start: want %v, got %v", tc.start, start)
			assert.True(t, tc.end.Equal(end), "end: want %v, got %v", tc.end, end)
		})
	}
}

func TestRoundToEndCoversLastSecond(t *testing.T) {
	late := time.Date(2024, 5, 15, 23, 59, 59, 500_000_000, time.UTC)

	end := RoundToEnd(late)

	assert.False(t, late.After(end))
	assert.True(t, end.Add(time.Nanosecond).Equal(RoundToStart(late).AddDate(0, 0, 1)))
}

func TestDayFormat(t *testing.T) {
	assert.Equal(t, 20240105, DayFormat(time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)))
}
