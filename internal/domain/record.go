package domain

import "time"

// Severity is the ordinal injury outcome classification of an accident.
type Severity string

const (
	SeverityFatal   Severity = "Fatal"
	SeveritySerious Severity = "Serious"
	SeveritySlight  Severity = "Slight"
	SeverityUnknown Severity = "Unknown"
)

// Severities lists the three canonical outcomes in descending order of
// severity. SeverityUnknown is deliberately excluded: it marks records whose
// outcome could not be recovered, not a fourth outcome class.
var Severities = []Severity{SeverityFatal, SeveritySerious, SeveritySlight}

// Score returns the ordinal severity score (Slight=1, Serious=2, Fatal=3).
// The second return is false for SeverityUnknown, which has no score.
func (s Severity) Score() (int, bool) {
	switch s {
	case SeveritySlight:
		return 1, true
	case SeveritySerious:
		return 2, true
	case SeverityFatal:
		return 3, true
	default:
		return 0, false
	}
}

// Severe reports whether the outcome counts toward the severe rate
// (Fatal or Serious).
func (s Severity) Severe() bool {
	return s == SeverityFatal || s == SeveritySerious
}

// CategoryUnknown is the canonical token that all missing, placeholder, and
// out-of-range categorical values collapse to.
const CategoryUnknown = "Unknown"

// WeekdayOrder is the fixed ordered domain for day-of-week values.
var WeekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Record is one cleaned, fully-typed accident observation. Optional scalars
// are pointers; nil means the source value was absent or unparseable.
// Categorical string fields are never empty; unusable values are
// CategoryUnknown.
type Record struct {
	AccidentIndex string `json:"accident_index,omitempty"`

	Severity      Severity `json:"accident_severity"`
	SeverityScore *int     `json:"severity_score,omitempty"`

	Date     *time.Time `json:"accident_date,omitempty"`
	Time     string     `json:"time,omitempty"`
	Hour     *int       `json:"hour,omitempty"`
	Year     *int       `json:"year,omitempty"`
	Month    string     `json:"month,omitempty"` // sortable "YYYY-MM" token
	MonthNum *int       `json:"month_num,omitempty"`
	DayName  string     `json:"day_name,omitempty"`

	// DayOfWeek is always one of WeekdayOrder or CategoryUnknown.
	DayOfWeek string `json:"day_of_week"`

	JunctionControl    string `json:"junction_control"`
	JunctionDetail     string `json:"junction_detail"`
	LightConditions    string `json:"light_conditions"`
	District           string `json:"local_authority_district"`
	CarriagewayHazards string `json:"carriageway_hazards"`
	PoliceForce        string `json:"police_force"`
	RoadSurface        string `json:"road_surface_conditions"`
	RoadType           string `json:"road_type"`
	Area               string `json:"urban_or_rural_area"`
	Weather            string `json:"weather_conditions"`
	VehicleType        string `json:"vehicle_type"`

	Casualties *float64 `json:"number_of_casualties,omitempty"`
	Vehicles   *float64 `json:"number_of_vehicles,omitempty"`
	SpeedLimit *int     `json:"speed_limit,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// Table is the cleaned dataset. It is immutable by convention: filters and
// aggregators return new slices and never modify records in place.
type Table []Record

// HasDates reports whether at least one record carries a parsed date.
// Date filtering is skipped entirely when no record does.
func (t Table) HasDates() bool {
	for i := range t {
		if t[i].Date != nil {
			return true
		}
	}
	return false
}

// DateRange returns the earliest and latest parsed dates in the table, or
// nils when no record has a date.
func (t Table) DateRange() (*time.Time, *time.Time) {
	var min, max *time.Time
	for i := range t {
		d := t[i].Date
		if d == nil {
			continue
		}
		if min == nil || d.Before(*min) {
			min = d
		}
		if max == nil || d.After(*max) {
			max = d
		}
	}
	return min, max
}
