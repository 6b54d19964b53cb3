package models

import (
	"testing"
	"time"
)

func TestSessionStatus(t *testing.T) {
	entry := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(2 * time.Hour)

	s := Session{EntryTime: entry}
	if s.Status() != StatusInside || s.Exited() {
		t.Fatalf("open session status = %q", s.Status())
	}

	s.ExitTime = &exit
	if s.Status() != StatusUnpaid {
		t.Fatalf("exited session status = %q", s.Status())
	}
	if got := s.DurationHours(); got != 2 {
		t.Fatalf("DurationHours = %v, want 2", got)
	}

	s.Paid = true
	if s.Status() != StatusPaid {
		t.Fatalf("paid session status = %q", s.Status())
	}
}

func TestNewTokenIsValid(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := NewToken()
		if !ValidToken(token) {
			t.Fatalf("NewToken produced invalid token %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token %q after %d draws", token, i)
		}
		seen[token] = true
	}
}

func TestValidToken(t *testing.T) {
	cases := []struct {
		token string
		want  bool
	}{
		{"abcdef0123", true},
		{"ABCDEF0123", true},
		{"abcdef012", false},
		{"abcdef01234", false},
		{"ghijklmnop", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidToken(tc.token); got != tc.want {
			t.Errorf("ValidToken(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}
