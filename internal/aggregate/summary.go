package aggregate

import (
	"time"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// Summary is the KPI header for a filtered subset.
type Summary struct {
	Total         int     `json:"total"`
	Fatal         int     `json:"fatal"`
	Serious       int     `json:"serious"`
	Slight        int     `json:"slight"`
	FatalPct      float64 `json:"fatal_pct"`
	SeriousPct    float64 `json:"serious_pct"`
	SlightPct     float64 `json:"slight_pct"`
	AvgCasualties float64 `json:"avg_casualties"`
	AvgVehicles   float64 `json:"avg_vehicles"`

	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
}

// Summarize computes the KPI row. Percentages are of the full subset,
// Unknown included in the denominator; averages skip records without a
// value for the metric.
func Summarize(tbl domain.Table) Summary {
	s := Summary{Total: len(tbl)}

	var casSum, vehSum float64
	var casN, vehN int
	for i := range tbl {
		switch tbl[i].Severity {
		case domain.SeverityFatal:
			s.Fatal++
		case domain.SeveritySerious:
			s.Serious++
		case domain.SeveritySlight:
			s.Slight++
		}
		if tbl[i].Casualties != nil {
			casSum += *tbl[i].Casualties
			casN++
		}
		if tbl[i].Vehicles != nil {
			vehSum += *tbl[i].Vehicles
			vehN++
		}
	}

	s.FatalPct = percent(float64(s.Fatal), float64(s.Total))
	s.SeriousPct = percent(float64(s.Serious), float64(s.Total))
	s.SlightPct = percent(float64(s.Slight), float64(s.Total))
	if casN > 0 {
		s.AvgCasualties = casSum / float64(casN)
	}
	if vehN > 0 {
		s.AvgVehicles = vehSum / float64(vehN)
	}

	s.DateFrom, s.DateTo = tbl.DateRange()
	return s
}
