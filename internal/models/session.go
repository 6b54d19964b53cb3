package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session statuses derived from exit/payment state.
const (
	StatusInside = "inside"
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// Session represents one vehicle's stay from entry to exit.
type Session struct {
	ID           int64      `db:"id" json:"id"`
	Plate        string     `db:"plate" json:"plate"`
	Token        string     `db:"token" json:"token"`
	EntryTime    time.Time  `db:"entry_time" json:"entry_time"`
	ExitTime     *time.Time `db:"exit_time" json:"exit_time,omitempty"`
	Amount       int64      `db:"amount" json:"amount"`
	Paid         bool       `db:"paid" json:"paid"`
	FlaggedError bool       `db:"flagged_error" json:"flagged_error"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Exited reports whether an exit has been recorded.
func (s *Session) Exited() bool {
	return s.ExitTime != nil
}

// Status returns inside, unpaid, or paid.
func (s *Session) Status() string {
	if s.ExitTime == nil {
		return StatusInside
	}
	if s.Paid {
		return StatusPaid
	}
	return StatusUnpaid
}

// DurationHours returns the stay length in hours, 0 while still inside.
func (s *Session) DurationHours() float64 {
	if s.ExitTime == nil {
		return 0
	}
	return s.ExitTime.Sub(s.EntryTime).Hours()
}

// TokenLength is the size of the public session token in hex characters.
const TokenLength = 10

// NewToken returns a random lowercase hex token for self-service lookups.
// It is assigned once at creation and never changes.
func NewToken() string {
	buf := make([]byte, TokenLength/2+1)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp-derived token so session creation cannot be blocked.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000")))[:TokenLength]
	}
	return hex.EncodeToString(buf)[:TokenLength]
}

// ValidToken checks the 10-hex-character token format.
func ValidToken(token string) bool {
	if len(token) != TokenLength {
		return false
	}
	for _, c := range token {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
