// Package stats resolves reporting windows and reduces session sets into
// the counters the operator console shows.
package stats

import (
	"time"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/models"
)

// DateLayout is the wire format for business-day parameters.
const DateLayout = "2006-01-02"

// Window is the double range that makes up one business day's report: the
// target day itself plus the previous day, so overnight carry-over sessions
// (entered yesterday, exited today) can be attributed to today.
type Window struct {
	Start     time.Time
	End       time.Time
	PrevStart time.Time
	PrevEnd   time.Time
}

// DayWindow computes the window for the calendar day containing date, in loc.
func DayWindow(date time.Time, loc *time.Location) Window {
	y, m, d := date.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Window{
		Start:     start,
		End:       start.AddDate(0, 0, 1).Add(-time.Nanosecond),
		PrevStart: start.AddDate(0, 0, -1),
		PrevEnd:   start.Add(-time.Nanosecond),
	}
}

// ParseDate parses a YYYY-MM-DD business-day string in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, loc)
}

// Contains reports whether the session belongs to the window: entered within
// the day, or entered the previous day and exited within the day. A session
// entered yesterday and still inside is yesterday's business, not today's.
func (w Window) Contains(s *models.Session) bool {
	if within(s.EntryTime, w.Start, w.End) {
		return true
	}
	if !within(s.EntryTime, w.PrevStart, w.PrevEnd) {
		return false
	}
	return s.ExitTime != nil && within(*s.ExitTime, w.Start, w.End)
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Resolve filters sessions down to the window's set, preserving order.
func Resolve(sessions []models.Session, w Window) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for i := range sessions {
		if w.Contains(&sessions[i]) {
			out = append(out, sessions[i])
		}
	}
	return out
}

// Summary holds the headline counters for one business day.
type Summary struct {
	TotalEntries  int `json:"total_entries"`
	TotalExits    int `json:"total_exits"`
	TotalInside   int `json:"total_inside"`
	UnpaidEntries int `json:"unpaid_entries"`
}

// Aggregate reduces a window's session set into a Summary.
func Aggregate(sessions []models.Session) Summary {
	var sum Summary
	sum.TotalEntries = len(sessions)
	for i := range sessions {
		s := &sessions[i]
		if s.ExitTime == nil {
			sum.TotalInside++
			continue
		}
		sum.TotalExits++
		if !s.Paid {
			sum.UnpaidEntries++
		}
	}
	return sum
}

// Detailed extends Summary with revenue figures for the printed day report.
type Detailed struct {
	PaidCount     int   `json:"paid_count"`
	PaidSum       int64 `json:"paid_sum"`
	PaidZeroCount int   `json:"paid_zero_count"`
	Inside        int   `json:"inside_count"`
	Exited        int   `json:"exited_count"`
}

// AggregateDetailed reduces a window's session set into revenue counters.
// PaidSum only counts settled sessions with a positive amount; settled
// zero-amount sessions (grace-period exits) are tallied separately.
func AggregateDetailed(sessions []models.Session) Detailed {
	var det Detailed
	for i := range sessions {
		s := &sessions[i]
		if s.ExitTime == nil {
			det.Inside++
			continue
		}
		det.Exited++
		if !s.Paid {
			continue
		}
		if s.Amount > 0 {
			det.PaidCount++
			det.PaidSum += s.Amount
		} else {
			det.PaidZeroCount++
		}
	}
	return det
}

// LatestUnpaid returns the most recently exited unpaid session in the set,
// skipping error-flagged records. Returns nil when nothing qualifies.
func LatestUnpaid(sessions []models.Session) *models.Session {
	var latest *models.Session
	for i := range sessions {
		s := &sessions[i]
		if s.ExitTime == nil || s.Paid || s.FlaggedError {
			continue
		}
		if latest == nil || s.ExitTime.After(*latest.ExitTime) {
			latest = s
		}
	}
	return latest
}
