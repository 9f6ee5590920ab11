package config

import (
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/diary/internal/timeutil"
)

// FilterConfig selects the activity records that a report covers. A zero
// StartTime means the report starts at the first record.
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
	Period    timeutil.Period
}

// AllTime reports whether the filter has no lower bound.
func (f *FilterConfig) AllTime() bool {
	return f.StartTime.IsZero()
}

// setFilterConfig builds a filter from the period, start, and end flags.
// The period takes precedence over start and end.
func setFilterConfig(ctx *cli.Context, now time.Time) (*FilterConfig, error) {
	filterCfg := &FilterConfig{}

	period := timeutil.Period(strings.TrimSpace(ctx.String("period")))

	if period != "" {
		if !slices.Contains(timeutil.PeriodCollection, period) {
			return nil, errInvalidPeriod.Fmt(period, periodList())
		}

		filterCfg.Period = period
		filterCfg.StartTime, filterCfg.EndTime = timeutil.PeriodRange(period, now)

		return filterCfg, nil
	}

	filterCfg.Period = timeutil.PeriodAllTime
	filterCfg.EndTime = now

	if start := strings.TrimSpace(ctx.String("start")); start != "" {
		dateTime, err := timeutil.FromStr(start)
		if err != nil {
			return nil, errInvalidTime.Fmt("start", start).Wrap(err)
		}

		filterCfg.StartTime = dateTime
		filterCfg.Period = ""

		if dateTime.After(now) {
			filterCfg.EndTime = timeutil.RoundToEnd(dateTime)
		}
	}

	if end := strings.TrimSpace(ctx.String("end")); end != "" {
		dateTime, err := timeutil.FromStr(end)
		if err != nil {
			return nil, errInvalidTime.Fmt("end", end).Wrap(err)
		}

		filterCfg.EndTime = dateTime
		filterCfg.Period = ""
	}

	if filterCfg.EndTime.Before(filterCfg.StartTime) {
		return nil, errStartAfterEnd.Fmt(
			filterCfg.StartTime.Format(time.DateTime),
			filterCfg.EndTime.Format(time.DateTime),
		)
	}

	return filterCfg, nil
}

func periodList() string {
	names := make([]string, len(timeutil.PeriodCollection))
	for i, p := range timeutil.PeriodCollection {
		names[i] = string(p)
	}

	return strings.Join(names, ", ")
}

// Filter returns a configuration that selects records by the period, start
// and end command-line flags.
func Filter(ctx *cli.Context) (*FilterConfig, error) {
	return setFilterConfig(ctx, time.Now())
}
