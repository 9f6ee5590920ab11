package app

import (
	"fmt"
	"io"
	"slices"

	"github.com/maruel/natural"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/config"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/timeutil"
	"github.com/ayoisaiah/diary/internal/ui"
	"github.com/ayoisaiah/diary/report"
	"github.com/ayoisaiah/diary/store"
)

const (
	noRecordsMsg = "No activity found for the specified time range"

	sortTime     = "time"
	sortDomain   = "domain"
	sortDuration = "duration"
)

var errInvalidSort = &apperr.Error{
	Message: "invalid sort order %q: must be time, domain, or duration",
}

// sortRecords orders records in place. Domain ties, and domains themselves,
// use natural order so that "site2" sorts before "site10".
func sortRecords(records []models.ActivityRecord, by string) error {
	byTime := func(a, b models.ActivityRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	}

	switch by {
	case "", sortTime:
		slices.SortStableFunc(records, byTime)
	case sortDomain:
		slices.SortStableFunc(records, func(a, b models.ActivityRecord) int {
			if a.Domain == b.Domain {
				return byTime(a, b)
			}

			if natural.Less(a.Domain, b.Domain) {
				return -1
			}

			return 1
		})
	case sortDuration:
		slices.SortStableFunc(records, func(a, b models.ActivityRecord) int {
			if a.TimeSpent != b.TimeSpent {
				return b.TimeSpent - a.TimeSpent
			}

			if natural.Less(a.Domain, b.Domain) {
				return -1
			}

			if natural.Less(b.Domain, a.Domain) {
				return 1
			}

			return byTime(a, b)
		})
	default:
		return errInvalidSort.Fmt(by)
	}

	return nil
}

// printRecordsTable prints a table of activity records.
func printRecordsTable(w io.Writer, records []models.ActivityRecord) {
	tableBody := make([][]string, 0, len(records)+1)

	tableBody = append(tableBody, []string{
		"#", "DATE", "DOMAIN", "CATEGORY", "TIME SPENT",
	})

	for i := range records {
		rec := &records[i]

		category := string(rec.Category)
		if rec.Category.IsProductive() {
			category = ui.Green(category)
		}

		tableBody = append(tableBody, []string{
			fmt.Sprintf("%d", i+1),
			rec.Timestamp.Local().Format("Jan 02, 2006 03:04 PM"),
			rec.Domain,
			category,
			timeutil.FormatSeconds(rec.TimeSpent),
		})
	}

	ui.PrintTable(tableBody, w)
}

// listAction prints a table of the records logged within a time period.
func listAction(ctx *cli.Context) error {
	return withStore(ctx, func(_ *config.Config, db store.DB) error {
		filter, err := config.Filter(ctx)
		if err != nil {
			return err
		}

		records, err := db.GetActivity(filter.StartTime, filter.EndTime)
		if err != nil {
			return err
		}

		if err := sortRecords(records, ctx.String("sort")); err != nil {
			return err
		}

		if ctx.Bool("json") {
			return printJSON(records)
		}

		if len(records) == 0 {
			report.Info(noRecordsMsg)
			return nil
		}

		printRecordsTable(config.Stdout, records)

		return nil
	})
}
