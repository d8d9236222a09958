// Package aggregate implements the ten analytical case reducers over the
// filtered accident table, plus the KPI summary. Every reducer is read-only
// and tolerates an empty input by returning an empty result.
package aggregate

import (
	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// CaseID identifies one of the ten analytical case views.
type CaseID string

const (
	CaseMonthlyTrend        CaseID = "monthly-trend"
	CaseSeverityComposition CaseID = "severity-composition"
	CaseHourDayPattern      CaseID = "hour-day-pattern"
	CaseSpeedSeverity       CaseID = "speed-limit-severity"
	CaseWeatherSeverity     CaseID = "weather-severity"
	CaseLightConditions     CaseID = "light-conditions"
	CaseRoadSurface         CaseID = "road-surface"
	CaseVehicleType         CaseID = "vehicle-type"
	CaseUrbanRural          CaseID = "urban-rural"
	CaseDistrictHotspots    CaseID = "district-hotspots"
)

// Per-case top-N defaults and the map sampling bounds, applied when the
// caller leaves the corresponding option unset.
const (
	DefaultTopNWeather  = 10
	DefaultTopNVehicle  = 12
	DefaultTopNDistrict = 15

	DefaultMaxMapPoints = 150000
	DefaultSampleSeed   = 42
)

// Options carries the per-request aggregation parameters.
type Options struct {
	// TopN restricts categorical breakdowns to the N most frequent values
	// within the filtered subset. Zero means each case's default.
	TopN int

	// MaxMapPoints caps the hotspot map point count; SampleSeed drives the
	// reproducible down-sampling when the cap is exceeded.
	MaxMapPoints int
	SampleSeed   int64
}

func (o Options) topN(fallback int) int {
	if o.TopN > 0 {
		return o.TopN
	}
	return fallback
}

func (o Options) maxMapPoints() int {
	if o.MaxMapPoints > 0 {
		return o.MaxMapPoints
	}
	return DefaultMaxMapPoints
}

func (o Options) sampleSeed() int64 {
	if o.SampleSeed != 0 {
		return o.SampleSeed
	}
	return DefaultSampleSeed
}

// Func runs one case aggregation over the filtered table.
type Func func(tbl domain.Table, opts Options) any

// Registry maps each case to its aggregator. Dispatch goes through this map
// so cases stay independently testable and new cases don't touch dispatch
// logic.
var Registry = map[CaseID]Func{
	CaseMonthlyTrend:        func(tbl domain.Table, _ Options) any { return MonthlyTrend(tbl) },
	CaseSeverityComposition: func(tbl domain.Table, _ Options) any { return SeverityComposition(tbl) },
	CaseHourDayPattern:      func(tbl domain.Table, _ Options) any { return HourDayPattern(tbl) },
	CaseSpeedSeverity:       func(tbl domain.Table, _ Options) any { return SpeedSeverity(tbl) },
	CaseWeatherSeverity:     func(tbl domain.Table, o Options) any { return WeatherSeverity(tbl, o.topN(DefaultTopNWeather)) },
	CaseLightConditions:     func(tbl domain.Table, _ Options) any { return LightConditions(tbl) },
	CaseRoadSurface:         func(tbl domain.Table, _ Options) any { return RoadSurface(tbl) },
	CaseVehicleType:         func(tbl domain.Table, o Options) any { return VehicleType(tbl, o.topN(DefaultTopNVehicle)) },
	CaseUrbanRural:          func(tbl domain.Table, _ Options) any { return UrbanRural(tbl) },
	CaseDistrictHotspots:    func(tbl domain.Table, o Options) any { return DistrictHotspots(tbl, o) },
}

// CaseInfo describes one case for the visualization consumer.
type CaseInfo struct {
	ID       CaseID `json:"id"`
	Title    string `json:"title"`
	Question string `json:"question"`
}

// Catalog lists the ten cases in presentation order.
var Catalog = []CaseInfo{
	{CaseMonthlyTrend, "Accident trend over time", "When does the accident trend rise or fall? Is there a seasonal pattern?"},
	{CaseSeverityComposition, "Severity composition", "What share of accidents is Fatal, Serious, and Slight?"},
	{CaseHourDayPattern, "Hour and day-of-week pattern", "Which hours and weekdays are the most dangerous?"},
	{CaseSpeedSeverity, "Speed limit vs severity", "Do fatal and serious outcomes increase at higher speed limits?"},
	{CaseWeatherSeverity, "Weather vs severity", "Which weather conditions are most frequent, and how severe are they?"},
	{CaseLightConditions, "Light conditions", "Which light conditions dominate, and at what hours?"},
	{CaseRoadSurface, "Road surface vs severity", "Does the road surface (dry, wet, ice) affect severity?"},
	{CaseVehicleType, "Vehicle type", "Which vehicle types crash most often, and how severe are the outcomes?"},
	{CaseUrbanRural, "Urban vs rural", "Are accidents more common in urban or rural areas, and where is the severe rate higher?"},
	{CaseDistrictHotspots, "District hotspots and map", "Which districts are the most dangerous, and where do locations cluster?"},
}

// SeverityColors is the fixed chart palette keyed by severity, shared with
// the visualization consumer so colors stay consistent across all cases.
var SeverityColors = map[domain.Severity]string{
	domain.SeverityFatal:   "#ff3b30",
	domain.SeveritySerious: "#ff9f0a",
	domain.SeveritySlight:  "#34c759",
	domain.SeverityUnknown: "#9ca3af",
}

// percent returns 100*numer/denom, or 0 when the denominator is zero.
func percent(numer, denom float64) float64 {
	if denom == 0 {
		return 0
	}
	return 100 * numer / denom
}
