// Package testutil provides fixtures shared by package tests
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"github.com/ayoisaiah/diary/internal/category"
	"github.com/ayoisaiah/diary/internal/models"
)

// Record returns an activity record for domain logged at ts. The category is
// derived from the built-in table.
func Record(domain string, seconds int, ts time.Time) models.ActivityRecord {
	return models.ActivityRecord{
		ID:        fmt.Sprintf("%s-%d", domain, ts.UnixNano()),
		Domain:    domain,
		URL:       "https://" + domain + "/",
		Category:  category.Classify(domain),
		TimeSpent: seconds,
		Timestamp: ts,
	}
}

// ProductiveDays returns one record per day for n consecutive days ending on
// the local day of end. Each record meets the productive day threshold.
func ProductiveDays(n int, end time.Time, seconds int) []models.ActivityRecord {
	out := make([]models.ActivityRecord, 0, n)

	noon := time.Date(end.Year(), end.Month(), end.Day(), 12, 0, 0, 0, end.Location())

	for i := n - 1; i >= 0; i-- {
		out = append(out, Record("github.com", seconds, noon.AddDate(0, 0, -i)))
	}

	return out
}

// Diff fails the test if got and want differ, dumping both values.
func Diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()

	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf(
			"mismatch (-want +got):\n%s\nwant: %s\ngot: %s",
			diff,
			spew.Sdump(want),
			spew.Sdump(got),
		)
	}
}
