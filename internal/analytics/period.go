// Package analytics turns a raw workout log and exercise catalog into
// derived metrics: volume totals, per-day and per-muscle breakdowns,
// streaks, personal records, and period-over-period trends. Everything in
// this package is a pure function of its inputs; persistence and transport
// live elsewhere.
package analytics

import (
	"errors"
	"fmt"
	"time"
)

// Period identifies a named date-range specification. The set is closed:
// identifiers round-trip through persistence, so unknown values must never
// silently pass through.
type Period string

const (
	PeriodLast7Days  Period = "last7Days"
	PeriodLast30Days Period = "last30Days"
	PeriodLast90Days Period = "last90Days"
	PeriodThisMonth  Period = "thisMonth"
	PeriodLastMonth  Period = "lastMonth"
	PeriodThisYear   Period = "thisYear"
	PeriodLastYear   Period = "lastYear"
	PeriodAllTime    Period = "allTime"
)

// DefaultPeriod is substituted whenever an unknown identifier is supplied.
const DefaultPeriod = PeriodLast30Days

// ErrInvalidPeriod reports an identifier outside the known enumeration.
// Callers recover locally by using the default period; the error exists so
// the substitution can be logged, not to fail the request.
var ErrInvalidPeriod = errors.New("invalid period identifier")

// Periods returns the full enumeration in display order.
func Periods() []Period {
	return []Period{
		PeriodLast7Days, PeriodLast30Days, PeriodLast90Days,
		PeriodThisMonth, PeriodLastMonth,
		PeriodThisYear, PeriodLastYear,
		PeriodAllTime,
	}
}

// ParsePeriod validates an identifier against the enumeration. Unknown
// identifiers return DefaultPeriod along with ErrInvalidPeriod.
func ParsePeriod(id string) (Period, error) {
	p := Period(id)
	switch p {
	case PeriodLast7Days, PeriodLast30Days, PeriodLast90Days,
		PeriodThisMonth, PeriodLastMonth,
		PeriodThisYear, PeriodLastYear,
		PeriodAllTime:
		return p, nil
	}
	return DefaultPeriod, fmt.Errorf("%w: %q", ErrInvalidPeriod, id)
}

// Range is a concrete date range, inclusive on both ends.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days returns the number of calendar days the range spans.
func (r Range) Days() int {
	start := startOfDay(r.Start)
	end := startOfDay(r.End)
	return int(end.Sub(start).Hours()/24) + 1
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// provisionalAllTimeSpan anchors allTime when no completed session exists
// yet. The engine recomputes on every snapshot change, so the range
// self-corrects once data arrives.
const provisionalAllTimeYears = 1

// Resolve maps a period to its concrete range and, where one is defined,
// the comparison range used for period-over-period trends. Rolling windows
// compare against the immediately preceding window of equal length;
// calendar periods compare against the previous calendar unit. allTime has
// no comparison range. earliest is the completion time of the oldest
// completed session, used to anchor allTime; pass nil when the log is
// empty or not yet loaded.
func Resolve(p Period, now time.Time, earliest *time.Time) (Range, *Range) {
	today := startOfDay(now)
	eod := endOfDay(now)

	rolling := func(days int) (Range, *Range) {
		start := today.AddDate(0, 0, -(days - 1))
		cur := Range{Start: start, End: eod}
		prevEnd := endOfDay(start.AddDate(0, 0, -1))
		prevStart := startOfDay(start.AddDate(0, 0, -days))
		return cur, &Range{Start: prevStart, End: prevEnd}
	}

	switch p {
	case PeriodLast7Days:
		return rolling(7)
	case PeriodLast30Days:
		return rolling(30)
	case PeriodLast90Days:
		return rolling(90)
	case PeriodThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevStart := start.AddDate(0, -1, 0)
		prev := Range{Start: prevStart, End: endOfDay(start.AddDate(0, 0, -1))}
		return Range{Start: start, End: eod}, &prev
	case PeriodLastMonth:
		thisStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start := thisStart.AddDate(0, -1, 0)
		cur := Range{Start: start, End: endOfDay(thisStart.AddDate(0, 0, -1))}
		prevStart := start.AddDate(0, -1, 0)
		prev := Range{Start: prevStart, End: endOfDay(start.AddDate(0, 0, -1))}
		return cur, &prev
	case PeriodThisYear:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		prev := Range{
			Start: start.AddDate(-1, 0, 0),
			End:   endOfDay(start.AddDate(0, 0, -1)),
		}
		return Range{Start: start, End: eod}, &prev
	case PeriodLastYear:
		thisStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		start := thisStart.AddDate(-1, 0, 0)
		cur := Range{Start: start, End: endOfDay(thisStart.AddDate(0, 0, -1))}
		prev := Range{
			Start: start.AddDate(-1, 0, 0),
			End:   endOfDay(start.AddDate(0, 0, -1)),
		}
		return cur, &prev
	case PeriodAllTime:
		start := today.AddDate(-provisionalAllTimeYears, 0, 0)
		if earliest != nil {
			start = startOfDay(earliest.In(now.Location()))
		}
		return Range{Start: start, End: eod}, nil
	default:
		// Unknown identifiers are caught by ParsePeriod before resolution;
		// resolving one anyway yields the default period's range.
		return Resolve(DefaultPeriod, now, earliest)
	}
}
