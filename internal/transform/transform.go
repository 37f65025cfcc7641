// =============================================================================
// XTE Converter - Value Transformations
// =============================================================================
//
// This package holds the field-level conversions shared by both pipelines.
//
// TRANSFORMATION TYPES:
//   - Date conversions (ISO <-> DD/MM/YYYY, day-first inference, Excel
//     serial day counts)
//   - Numeric formatting (two-decimal export, leading-zero repair)
//   - Derived values (age at realization)
//
// Every conversion is total: when a value cannot be interpreted, the raw
// text is returned unchanged together with ok == false. Callers never drop
// a value because it failed to parse.
//
// =============================================================================

package transform

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// DATE LAYOUTS
// =============================================================================

// Output layouts.
const (
	LayoutISO = "2006-01-02"
	LayoutBR  = "02/01/2006"
)

// excelEpoch is day zero of spreadsheet serial dates (1900 date system with
// the leap-year bug folded in).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// isoInputLayouts are the forms accepted when a value must become ISO.
// Order matters: the first layout that parses wins.
var isoInputLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006",
	"2006-1-2 15:04:05",
	"2006-1-2",
}

// dayFirstLayouts are the forms accepted when a table column is renormalized
// to DD/MM/YYYY. Ambiguous numeric dates are read day first.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	"2006-1-2T15:04:05Z07:00",
	"2006/1/2",
	"20060102",
}

// =============================================================================
// DATE CONVERSIONS
// =============================================================================

// ISOToBR converts a strict ISO date (YYYY-MM-DD) to DD/MM/YYYY.
//
// EXAMPLE:
//
//	Input:  "2024-03-05"
//	Output: "05/03/2024", true
func ISOToBR(value string) (string, bool) {
	v := strings.TrimSpace(value)
	t, err := time.Parse("2006-1-2", v)
	if err != nil {
		return value, false
	}
	return t.Format(LayoutBR), true
}

// ParseDayFirst parses a date written in any of the common day-first or ISO
// forms.
func ParseDayFirst(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ToBR renormalizes a date value to DD/MM/YYYY using day-first inference.
// Unparsable values are returned unchanged.
func ToBR(value string) (string, bool) {
	t, ok := ParseDayFirst(value)
	if !ok {
		return value, false
	}
	return t.Format(LayoutBR), true
}

// ToISO converts a date in DD/MM/YYYY or YYYY-MM-DD form, with or without a
// time of day, or a spreadsheet serial day count, to YYYY-MM-DD.
// Unparsable values are returned unchanged.
//
// EXAMPLE:
//
//	"05/03/2024"          -> "2024-03-05"
//	"2024-03-05 10:00:00" -> "2024-03-05"
//	"45000"               -> "2023-03-15"
func ToISO(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return value, false
	}
	for _, layout := range isoInputLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(LayoutISO), true
		}
	}
	if t, ok := FromExcelSerial(v); ok {
		return t.Format(LayoutISO), true
	}
	return value, false
}

// FromExcelSerial interprets digits with at most one decimal point as a day
// count from 1899-12-30.
func FromExcelSerial(value string) (time.Time, bool) {
	if !isSerial(value) {
		return time.Time{}, false
	}
	days, err := strconv.ParseFloat(value, 64)
	if err != nil || days > 2958465 {
		// 2958465 is 9999-12-31, the last date a sheet can hold.
		return time.Time{}, false
	}
	whole := math.Floor(days)
	t := excelEpoch.AddDate(0, 0, int(whole))
	return t.Add(time.Duration((days - whole) * float64(24*time.Hour))), true
}

func isSerial(value string) bool {
	digits, dots := 0, 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// AgeInYears returns floor(days between birth and event / 365). It is an
// approximation that ignores leap days.
func AgeInYears(birth, event time.Time) int {
	b := time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(event.Year(), event.Month(), event.Day(), 0, 0, 0, 0, time.UTC)
	days := int(e.Sub(b).Hours() / 24)
	return floorDiv(days, 365)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// =============================================================================
// NUMERIC CONVERSIONS
// =============================================================================

// StripLeadingZeros canonicalizes an all-digit identifier to its integer
// form. Anything that is not purely ASCII digits passes through.
//
// EXAMPLE:
//
//	"0042" -> "42", true
//	"000"  -> "0", true
//	"42A"  -> "42A", false
func StripLeadingZeros(value string) (string, bool) {
	if !IsDigits(value) {
		return value, false
	}
	result := strings.TrimLeft(value, "0")
	if result == "" {
		return "0", true
	}
	return result, true
}

// IsDigits reports whether s is non-empty and made only of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatDecimal formats a numeric value with a fixed number of decimal
// places. Non-numeric values pass through.
//
// EXAMPLE:
//
//	"1234.5", 2 -> "1234.50", true
func FormatDecimal(value string, places int) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return value, false
	}
	num, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return value, false
	}
	return strconv.FormatFloat(num, 'f', places, 64), true
}

// ParseDecimal parses a numeric value, reporting whether it is a number.
func ParseDecimal(value string) (float64, bool) {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}
