package model

import "testing"

func TestFormatClock(t *testing.T) {
	tests := map[int]string{
		0:     "00:00:00",
		5:     "00:00:05",
		65:    "00:01:05",
		3661:  "01:01:01",
		-3:    "00:00:00",
		36000: "10:00:00",
	}
	for in, want := range tests {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := map[int]string{
		0:    "0s",
		42:   "42s",
		125:  "2m 5s",
		3600: "1h 0m",
		7500: "2h 5m",
	}
	for in, want := range tests {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
