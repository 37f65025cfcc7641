package transform

import (
	"testing"
	"time"
)

func TestToISO(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"05/03/2024", "2024-03-05", true},
		{"5/3/2024", "2024-03-05", true},
		{"05/03/2024 13:45:00", "2024-03-05", true},
		{"2024-03-05", "2024-03-05", true},
		{"2024-03-05 08:00:00", "2024-03-05", true},
		{"45000", "2023-03-15", true},
		{"45000.75", "2023-03-15", true},
		{"0", "1899-12-30", true},
		{"not a date", "not a date", false},
		{"12.3.4", "12.3.4", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ToISO(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ToISO(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestISOToBR(t *testing.T) {
	if got, ok := ISOToBR(" 2024-03-05 "); !ok || got != "05/03/2024" {
		t.Errorf("ISOToBR = %q, %v", got, ok)
	}
	if got, ok := ISOToBR("05/03/2024"); ok || got != "05/03/2024" {
		t.Errorf("ISOToBR on BR input = %q, %v", got, ok)
	}
}

func TestToBRDayFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01/02/2000", "01/02/2000"},
		{"2024-03-05", "05/03/2024"},
		{"5/3/2024", "05/03/2024"},
		{"2024-03-05T10:20:30", "05/03/2024"},
		{"20240305", "05/03/2024"},
		{"31/31/2024", "31/31/2024"},
	}
	for _, tt := range tests {
		if got, _ := ToBR(tt.in); got != tt.want {
			t.Errorf("ToBR(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAgeInYears(t *testing.T) {
	birth := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	event := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	if got := AgeInYears(birth, event); got != 24 {
		t.Errorf("AgeInYears = %d, want 24", got)
	}

	// 365-day years drift: 2000-01-01 to 2004-12-31 is 1826 days.
	if got := AgeInYears(birth, time.Date(2004, 12, 30, 0, 0, 0, 0, time.UTC)); got != 5 {
		t.Errorf("AgeInYears across leap days = %d, want 5", got)
	}
	if got := AgeInYears(event, birth); got != -25 {
		t.Errorf("AgeInYears negative = %d, want -25", got)
	}
}

func TestStripLeadingZeros(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0042", "42"},
		{"42", "42"},
		{"000", "0"},
		{"42A", "42A"},
		{"", ""},
		{"-42", "-42"},
	}
	for _, tt := range tests {
		if got, _ := StripLeadingZeros(tt.in); got != tt.want {
			t.Errorf("StripLeadingZeros(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	if got, ok := FormatDecimal("1234.5", 2); !ok || got != "1234.50" {
		t.Errorf("FormatDecimal = %q, %v", got, ok)
	}
	if got, ok := FormatDecimal("12,50", 2); ok || got != "12,50" {
		t.Errorf("FormatDecimal on comma decimal = %q, %v", got, ok)
	}
}
