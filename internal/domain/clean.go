package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// nonAlnumRe matches every run of non-alphanumeric characters in a raw
// header, e.g. "Local_Authority_(District)" -> "local_authority_district".
var nonAlnumRe = regexp.MustCompile(`[^0-9a-zA-Z]+`)

const (
	dateLayout = "02-01-2006" // day-month-year, e.g. "31-12-2020"
	timeLayout = "15:04"      // 24-hour hour:minute, e.g. "09:45"

	monthTokenLayout = "2006-01"
)

// NormalizeHeader maps a raw column header to its canonical snake_case
// identifier: trim, collapse runs of non-alphanumerics to one underscore,
// strip edge underscores, lowercase. Idempotent: an already-canonical
// header comes back unchanged.
func NormalizeHeader(raw string) string {
	s := strings.TrimSpace(raw)
	s = nonAlnumRe.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	return strings.ToLower(s)
}

// CleanCategory repairs one open-vocabulary categorical value. Empty
// strings, the placeholder tokens "nan"/"none"/"null", and any value
// containing "missing" or "out of range" (case-insensitive) collapse to
// CategoryUnknown. Everything else passes through trimmed with its original
// casing preserved.
func CleanCategory(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return CategoryUnknown
	}
	lower := strings.ToLower(s)
	switch lower {
	case "nan", "none", "null":
		return CategoryUnknown
	}
	if strings.Contains(lower, "missing") || strings.Contains(lower, "out of range") {
		return CategoryUnknown
	}
	return s
}

// FixSeverity repairs a raw severity value into the closed enum. The known
// misspelling "fetal" maps to Fatal; otherwise the value is lowercased,
// capitalized, and kept only if it lands on one of the three canonical
// spellings. Anything else degrades to SeverityUnknown.
func FixSeverity(raw string) Severity {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return SeverityUnknown
	}
	if s == "fetal" {
		return SeverityFatal
	}
	switch Severity(capitalize(s)) {
	case SeverityFatal:
		return SeverityFatal
	case SeveritySerious:
		return SeveritySerious
	case SeveritySlight:
		return SeveritySlight
	default:
		return SeverityUnknown
	}
}

func capitalize(lower string) string {
	if lower == "" {
		return ""
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// ParseDate parses a day-month-year date string. Returns nil for empty or
// unparseable values; callers count nil results in diagnostics.
func ParseDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &d
}

// ParseHour extracts the integer hour from an hour:minute time string.
// Returns nil for empty or unparseable values.
func ParseHour(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return nil
	}
	h := t.Hour()
	return &h
}

// MonthToken formats a date as its sortable "YYYY-MM" token.
func MonthToken(d time.Time) string {
	return d.Format(monthTokenLayout)
}

// IsWeekday reports whether v is one of the seven ordered weekday names.
func IsWeekday(v string) bool {
	for _, w := range WeekdayOrder {
		if v == w {
			return true
		}
	}
	return false
}

// WeekdayIndex returns the position of v in WeekdayOrder (Monday=0), or
// len(WeekdayOrder) for values outside the domain so they sort last.
func WeekdayIndex(v string) int {
	for i, w := range WeekdayOrder {
		if v == w {
			return i
		}
	}
	return len(WeekdayOrder)
}

// ResolveDayOfWeek produces the final day-of-week value for a record: the
// cleaned source column when usable, else the weekday name derived from the
// parsed date, else CategoryUnknown. The result is constrained to the
// seven-day domain; any stray value resolves to CategoryUnknown.
func ResolveDayOfWeek(sourceValue, derivedDayName string) string {
	v := CleanCategory(sourceValue)
	if v == CategoryUnknown {
		if derivedDayName == "" {
			return CategoryUnknown
		}
		v = derivedDayName
	}
	if !IsWeekday(v) {
		return CategoryUnknown
	}
	return v
}

// CoerceFloat parses a numeric cell. Returns nil for empty or non-numeric
// values; bad numerics degrade to absent, never abort.
func CoerceFloat(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// CoerceRoundedInt parses a numeric cell and rounds it to the nearest
// integer, as applied to the speed limit column.
func CoerceRoundedInt(raw string) *int {
	f := CoerceFloat(raw)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}
