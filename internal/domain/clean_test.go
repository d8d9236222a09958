package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"already canonical", "accident_severity", "accident_severity"},
		{"spaces", "Accident Date", "accident_date"},
		{"parentheses", "Local_Authority_(District)", "local_authority_district"},
		{"mixed punctuation", "  Speed-limit (mph) ", "speed_limit_mph"},
		{"repeated separators", "Road__Surface__Conditions", "road_surface_conditions"},
		{"leading and trailing junk", "__Time__", "time"},
		{"uppercase", "LATITUDE", "latitude"},
		{"all punctuation", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeader(tt.raw))
		})
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	headers := []string{"Accident Date", "Local_Authority_(District)", "Weather Conditions", "Time"}
	for _, h := range headers {
		once := NormalizeHeader(h)
		assert.Equal(t, once, NormalizeHeader(once), "normalizing %q twice should be stable", h)
	}
}

func TestCleanCategory(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"empty", "", CategoryUnknown},
		{"whitespace only", "   ", CategoryUnknown},
		{"nan token", "NaN", CategoryUnknown},
		{"none token", "none", CategoryUnknown},
		{"null token", "NULL", CategoryUnknown},
		{"data missing phrase", "Data missing or out of range", CategoryUnknown},
		{"out of range phrase", "value OUT OF RANGE", CategoryUnknown},
		{"missing substring", "field is Missing", CategoryUnknown},
		{"case preserved", "Dry", "Dry"},
		{"inconsistent case preserved", "fine no high winds", "fine no high winds"},
		{"trimmed", "  Wet or damp  ", "Wet or damp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanCategory(tt.raw))
		})
	}
}

func TestFixSeverity(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected Severity
	}{
		{"canonical fatal", "Fatal", SeverityFatal},
		{"lowercase serious", "serious", SeveritySerious},
		{"uppercase slight", "SLIGHT", SeveritySlight},
		{"fetal typo", "fetal", SeverityFatal},
		{"fetal uppercase", "FETAL", SeverityFatal},
		{"fetal padded", "Fetal ", SeverityFatal},
		{"unrecognized word", "catastrophic", SeverityUnknown},
		{"empty", "", SeverityUnknown},
		{"whitespace", "  ", SeverityUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FixSeverity(tt.raw))
		})
	}
}

func TestSeverityScore(t *testing.T) {
	score, ok := SeverityFatal.Score()
	require.True(t, ok)
	assert.Equal(t, 3, score)

	score, ok = SeveritySerious.Score()
	require.True(t, ok)
	assert.Equal(t, 2, score)

	score, ok = SeveritySlight.Score()
	require.True(t, ok)
	assert.Equal(t, 1, score)

	_, ok = SeverityUnknown.Score()
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d := ParseDate("31-12-2020")
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), *d)

	assert.Nil(t, ParseDate("2020-12-31"), "ISO order is the wrong format")
	assert.Nil(t, ParseDate("31-13-2020"), "month out of range")
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("not a date"))
}

func TestParseHour(t *testing.T) {
	h := ParseHour("15:04")
	require.NotNil(t, h)
	assert.Equal(t, 15, *h)

	h = ParseHour("00:30")
	require.NotNil(t, h)
	assert.Equal(t, 0, *h)

	assert.Nil(t, ParseHour(""))
	assert.Nil(t, ParseHour("25:00"))
	assert.Nil(t, ParseHour("noon"))
}

func TestResolveDayOfWeek(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		derived  string
		expected string
	}{
		{"source wins", "Tuesday", "Wednesday", "Tuesday"},
		{"placeholder falls back to derived", "Data missing or out of range", "Friday", "Friday"},
		{"empty falls back to derived", "", "Sunday", "Sunday"},
		{"no source no derived", "", "", CategoryUnknown},
		{"stray value outside domain", "Someday", "", CategoryUnknown},
		{"lowercase outside domain", "monday", "", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveDayOfWeek(tt.source, tt.derived))
		})
	}
}

func TestCoerceFloat(t *testing.T) {
	v := CoerceFloat("3.5")
	require.NotNil(t, v)
	assert.Equal(t, 3.5, *v)

	assert.Nil(t, CoerceFloat(""))
	assert.Nil(t, CoerceFloat("n/a"))
}

func TestCoerceRoundedInt(t *testing.T) {
	v := CoerceRoundedInt("29.7")
	require.NotNil(t, v)
	assert.Equal(t, 30, *v)

	v = CoerceRoundedInt("30")
	require.NotNil(t, v)
	assert.Equal(t, 30, *v)

	assert.Nil(t, CoerceRoundedInt("fast"))
}

func TestTableDateRange(t *testing.T) {
	d1 := time.Date(2021, time.January, 5, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2021, time.March, 9, 0, 0, 0, 0, time.UTC)
	tbl := Table{{Date: &d2}, {}, {Date: &d1}}

	min, max := tbl.DateRange()
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, d1, *min)
	assert.Equal(t, d2, *max)
	assert.True(t, tbl.HasDates())

	empty := Table{{}, {}}
	min, max = empty.DateRange()
	assert.Nil(t, min)
	assert.Nil(t, max)
	assert.False(t, empty.HasDates())
}
