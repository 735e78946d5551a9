package daterange

import (
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// Period is a named collection window preset.
type Period string

const (
	Today      Period = "today"
	Yesterday  Period = "yesterday"
	Last7Days  Period = "last_7_days"
	Last30Days Period = "last_30_days"
	ThisWeek   Period = "this_week"
	ThisMonth  Period = "this_month"
)

// Layouts accepted for explicit bounds, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Resolve converts a named preset into a normalized [start, end) range.
// Unknown presets fall back to Today. It never fails.
func Resolve(p Period) datamodel.TimeRange {
	return ResolveAt(p, time.Now())
}

// ResolveAt is Resolve with an injectable clock.
func ResolveAt(p Period, now time.Time) datamodel.TimeRange {
	switch p {
	case Today:
		return datamodel.TimeRange{Start: midnight(now), End: now}
	case Yesterday:
		y := now.AddDate(0, 0, -1)
		return datamodel.TimeRange{
			Start: midnight(y),
			End:   time.Date(y.Year(), y.Month(), y.Day(), 23, 59, 59, 0, y.Location()),
		}
	case Last7Days:
		return datamodel.TimeRange{Start: now.AddDate(0, 0, -7), End: now}
	case Last30Days:
		return datamodel.TimeRange{Start: now.AddDate(0, 0, -30), End: now}
	case ThisWeek:
		// The week starts Monday 00:00.
		wd := int(now.Weekday())
		if wd == 0 {
			wd = 7
		}
		return datamodel.TimeRange{Start: midnight(now).AddDate(0, 0, -(wd - 1)), End: now}
	case ThisMonth:
		return datamodel.TimeRange{
			Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
			End:   now,
		}
	default:
		zap.S().Warnf("Unknown period %q, falling back to today", p)
		return datamodel.TimeRange{Start: midnight(now), End: now}
	}
}

// ResolveExplicit converts an explicit start/end pair into a normalized
// range. A bound that fails to parse falls back to its documented default
// (start: today 00:00 local, end: now). Inverted bounds are swapped.
// It never fails.
func ResolveExplicit(start, end string) datamodel.TimeRange {
	return ResolveExplicitAt(start, end, time.Now())
}

// ResolveExplicitAt is ResolveExplicit with an injectable clock.
func ResolveExplicitAt(start, end string, now time.Time) datamodel.TimeRange {
	s, ok := parseBound(start, now)
	if !ok {
		zap.S().Warnf("Invalid start bound %q, falling back to start of today", start)
		s = midnight(now)
	}
	e, ok := parseBound(end, now)
	if !ok {
		zap.S().Warnf("Invalid end bound %q, falling back to now", end)
		e = now
	}
	if e.Before(s) {
		zap.S().Warnf("Inverted range %s..%s, swapping bounds", start, end)
		s, e = e, s
	}
	return datamodel.TimeRange{Start: s, End: e}
}

func parseBound(v string, now time.Time) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, v, now.Location()); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
