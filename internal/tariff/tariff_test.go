package tariff

import (
	"testing"
	"time"
)

var testLoc = time.FixedZone("UZT", 5*3600)

func testCalculator() *Calculator {
	return NewCalculator(Policy{
		FreeMinutes: 10,
		HourPrice:   4000,
		Location:    testLoc,
	})
}

func at(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, testLoc)
}

func TestFeeSingleDay(t *testing.T) {
	calc := testCalculator()

	cases := []struct {
		name  string
		entry time.Time
		exit  time.Time
		want  int64
	}{
		{"same instant", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 0, 0), 0},
		{"thirty seconds", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 0, 30), 0},
		{"one minute", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 1, 0), 0},
		{"exactly free threshold", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 10, 0), 0},
		{"one minute past free", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 11, 0), 4000},
		{"59m59s", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 8, 59, 59), 4000},
		{"exactly one hour", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 9, 0, 0), 4000},
		{"one second past the hour", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 9, 0, 1), 8000},
		{"one minute past the hour", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 9, 1, 0), 8000},
		{"2h30m", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 10, 30, 0), 12000},
		{"4h45m", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 12, 45, 0), 20000},
		{"exactly five hours", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 13, 0, 0), 20000},
		{"5h1s hits the cap", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 13, 0, 1), 20000},
		{"5h1m hits the cap", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 13, 1, 0), 20000},
		{"six hours capped", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 30, 14, 0, 0), 20000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calc.Fee(tc.entry, tc.exit); got != tc.want {
				t.Fatalf("Fee(%s, %s) = %d, want %d", tc.entry, tc.exit, got, tc.want)
			}
		})
	}
}

func TestFeeAcrossMidnight(t *testing.T) {
	calc := testCalculator()

	cases := []struct {
		name  string
		entry time.Time
		exit  time.Time
		want  int64
	}{
		// Each side of midnight is billed as its own tranche.
		{"one hour each side", at(2025, 8, 30, 23, 0, 0), at(2025, 8, 31, 1, 0, 0), 8000},
		{"first night free", at(2025, 8, 30, 23, 50, 0), at(2025, 8, 31, 1, 0, 0), 4000},
		{"second morning free", at(2025, 8, 30, 23, 0, 0), at(2025, 8, 31, 0, 10, 0), 4000},
		{"both sides free", at(2025, 8, 30, 23, 50, 0), at(2025, 8, 31, 0, 10, 0), 0},
		{"evening to morning", at(2025, 8, 30, 20, 0, 0), at(2025, 8, 31, 7, 0, 0), 36000},
		{"26 hours", at(2025, 8, 30, 8, 0, 0), at(2025, 8, 31, 10, 0, 0), 40000},
		{"42 hours over three days", at(2025, 8, 30, 8, 0, 0), at(2025, 9, 1, 2, 0, 0), 48000},
		{"free edges around a full day", at(2025, 8, 30, 23, 50, 0), at(2025, 9, 1, 0, 10, 0), 20000},
		{"month boundary", at(2025, 8, 31, 23, 0, 0), at(2025, 9, 1, 1, 0, 0), 8000},
		{"year boundary", at(2024, 12, 31, 23, 0, 0), at(2025, 1, 1, 1, 0, 0), 8000},
		{"ten day stay", at(2025, 8, 30, 8, 0, 0), at(2025, 9, 9, 8, 0, 0), 220000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := calc.Fee(tc.entry, tc.exit); got != tc.want {
				t.Fatalf("Fee(%s, %s) = %d, want %d", tc.entry, tc.exit, got, tc.want)
			}
		})
	}
}

func TestFeeNegativeDurationIsZero(t *testing.T) {
	calc := testCalculator()
	entry := at(2025, 8, 30, 12, 0, 0)
	exit := at(2025, 8, 30, 8, 0, 0)
	if got := calc.Fee(entry, exit); got != 0 {
		t.Fatalf("Fee with exit before entry = %d, want 0", got)
	}
}

func TestFeeNormalizesZones(t *testing.T) {
	calc := testCalculator()
	// The same instants expressed in UTC must price identically.
	entry := at(2025, 8, 30, 23, 0, 0)
	exit := at(2025, 8, 31, 1, 0, 0)
	if got := calc.Fee(entry.UTC(), exit.UTC()); got != 8000 {
		t.Fatalf("Fee with UTC inputs = %d, want 8000", got)
	}
}

func TestFeeMonotonicInExitTime(t *testing.T) {
	calc := testCalculator()
	entry := at(2025, 8, 30, 22, 30, 0)

	prev := int64(0)
	for step := 0; step < 60*50; step++ {
		exit := entry.Add(time.Duration(step) * time.Minute)
		fee := calc.Fee(entry, exit)
		if fee < prev {
			t.Fatalf("fee dropped from %d to %d at exit %s", prev, fee, exit)
		}
		prev = fee
	}
}

func TestFeeIsPure(t *testing.T) {
	calc := testCalculator()
	entry := at(2025, 8, 30, 8, 0, 0)
	exit := at(2025, 8, 31, 10, 0, 0)

	first := calc.Fee(entry, exit)
	for i := 0; i < 10; i++ {
		if got := calc.Fee(entry, exit); got != first {
			t.Fatalf("repeated call returned %d, first returned %d", got, first)
		}
	}
}

func TestDailyCapDerivedFromHourPrice(t *testing.T) {
	p := Policy{FreeMinutes: 10, HourPrice: 4000}
	if p.DailyCap() != 20000 {
		t.Fatalf("DailyCap() = %d, want 20000", p.DailyCap())
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 daqiqa"},
		{30 * time.Second, "1 daqiqa"},
		{59 * time.Minute, "59 daqiqa"},
		{59*time.Minute + 30*time.Second, "1 soat"},
		{time.Hour, "1 soat"},
		{time.Hour + time.Minute, "1 soat 1 daqiqa"},
		{23*time.Hour + 59*time.Minute + 30*time.Second, "1 kun"},
		{25 * time.Hour, "1 kun 1 soat"},
		{49*time.Hour + 5*time.Minute, "2 kun 1 soat 5 daqiqa"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
