// Package tariff computes parking fees from an entry/exit timestamp pair.
//
// Billing is per calendar day: the stay is split at local midnights and each
// day's tranche is priced on its own. Within a tranche the first FreeMinutes
// are free, any longer stay is billed in whole started hours, and the tranche
// total never exceeds the daily cap of five hour prices. A vehicle that waits
// out the night therefore pays for the evening hours of one day and the
// morning hours of the next, each capped independently.
package tariff

import (
	"fmt"
	"math"
	"time"
)

// QuarterPrice is the legacy 15-minute block price. The executed billing path
// rounds to whole hours, so it only participates in display helpers.
const QuarterPrice = 1000

// Policy holds the externally supplied pricing constants.
type Policy struct {
	// FreeMinutes is the grace period at the start of each calendar-day
	// tranche. A tranche of exactly FreeMinutes costs nothing.
	FreeMinutes int
	// HourPrice is the price of one started hour, in whole currency units.
	HourPrice int64
	// Location is the reference zone all timestamps are normalized to
	// before any arithmetic. Defaults to time.Local when nil.
	Location *time.Location
}

// DailyCap is the maximum charge for a single calendar-day tranche.
func (p Policy) DailyCap() int64 {
	return 5 * p.HourPrice
}

func (p Policy) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

// Calculator is a pure fee calculator. Safe for concurrent use.
type Calculator struct {
	policy Policy
}

// NewCalculator returns a calculator for the given policy.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the pricing constants the calculator was built with.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Fee returns the parking fee for the [entry, exit) interval. The result is
// never negative; a zero or negative duration costs nothing. Repeated calls
// with the same inputs always return the same value.
func (c *Calculator) Fee(entry, exit time.Time) int64 {
	loc := c.policy.location()
	entry = entry.In(loc)
	exit = exit.In(loc)

	if !exit.After(entry) {
		return 0
	}

	var total int64
	cursor := entry
	for cursor.Before(exit) {
		trancheEnd := startOfNextDay(cursor, loc)
		if trancheEnd.After(exit) {
			trancheEnd = exit
		}
		total += c.trancheFee(trancheEnd.Sub(cursor))
		cursor = trancheEnd
	}
	return total
}

// trancheFee prices a single within-day tranche.
func (c *Calculator) trancheFee(d time.Duration) int64 {
	minutes := d.Minutes()
	if minutes <= float64(c.policy.FreeMinutes) {
		return 0
	}
	// Any overrun past a full hour starts a new billed hour.
	hours := int64(math.Ceil(minutes / 60))
	fee := hours * c.policy.HourPrice
	if limit := c.policy.DailyCap(); fee > limit {
		fee = limit
	}
	return fee
}

func startOfNextDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

// FormatDuration renders a stay length as an operator-facing string, rounding
// seconds up to the next minute and carrying 60 minutes / 24 hours over.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int64(d / time.Second)

	days := totalSeconds / 86400
	rest := totalSeconds % 86400
	hours := rest / 3600
	minutes := (rest%3600 + 59) / 60
	if minutes == 60 {
		hours++
		minutes = 0
	}
	if hours == 24 {
		days++
		hours = 0
	}

	switch {
	case days > 0 && hours == 0 && minutes == 0:
		return fmt.Sprintf("%d kun", days)
	case days > 0 && minutes == 0:
		return fmt.Sprintf("%d kun %d soat", days, hours)
	case days > 0:
		return fmt.Sprintf("%d kun %d soat %d daqiqa", days, hours, minutes)
	case hours > 0 && minutes == 0:
		return fmt.Sprintf("%d soat", hours)
	case hours > 0:
		return fmt.Sprintf("%d soat %d daqiqa", hours, minutes)
	default:
		return fmt.Sprintf("%d daqiqa", minutes)
	}
}
