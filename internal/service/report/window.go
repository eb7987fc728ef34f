package report

import (
	"time"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

const day = 24 * time.Hour

// StartOfDay returns 00:00:00.000 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// addDays moves by calendar days so DST transitions do not shift the clock.
func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// CountDays is the number of calendar days in [start, end], at least 1.
func CountDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	n := int(e.Sub(s)/day) + 1
	if n < 1 {
		return 1
	}
	return n
}

// ResolveWindow turns a range and "now" into the current window and the
// equal-length window immediately before it. Sessions are only consulted for
// ALL, whose window starts at the earliest session.
func ResolveWindow(rng domain.ReportRange, sessions []domain.Session, now time.Time) domain.RangeWindow {
	end := EndOfDay(now)

	var start time.Time
	switch rng {
	case domain.RangeAll:
		earliest := now
		for _, s := range sessions {
			if s.StartedAt.Before(earliest) {
				earliest = s.StartedAt
			}
		}
		return domain.RangeWindow{
			Start: StartOfDay(earliest.In(now.Location())),
			End:   end,
		}
	case domain.RangeYTD:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		days := rng.Days()
		if days < 1 {
			days = 1
		}
		start = StartOfDay(addDays(now, -(days - 1)))
	}

	days := CountDays(start, end)
	previousEnd := EndOfDay(addDays(start, -1))
	previousStart := StartOfDay(addDays(previousEnd, -(days - 1)))

	return domain.RangeWindow{
		Start:         start,
		End:           end,
		PreviousStart: &previousStart,
		PreviousEnd:   &previousEnd,
	}
}

// inWindow reports whether t lies in [start, end].
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// DaysInMonth returns the number of days in t's calendar month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
