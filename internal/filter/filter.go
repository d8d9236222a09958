// Package filter narrows a cleaned accident table to the subset a request
// asks for. Constraints AND across dimensions and OR within one; an empty
// dimension accepts every record.
package filter

import (
	"time"

	"github.com/couchcryptid/road-accident-insight/internal/aggregate"
	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// Spec is one request's filter state. Zero-valued dimensions are inactive.
type Spec struct {
	// From and To bound the accident date, inclusive on both ends. The date
	// dimension is skipped entirely when the table carries no parsed dates.
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	Severities   []domain.Severity `json:"severities,omitempty"`
	Areas        []string          `json:"areas,omitempty"`
	Districts    []string          `json:"districts,omitempty"`
	Weather      []string          `json:"weather,omitempty"`
	Light        []string          `json:"light,omitempty"`
	RoadTypes    []string          `json:"road_types,omitempty"`
	VehicleTypes []string          `json:"vehicle_types,omitempty"`
	SpeedLimits  []int             `json:"speed_limits,omitempty"`

	// TopN overrides the per-case top-N default for categorical breakdowns.
	TopN int `json:"top_n,omitempty"`

	Case aggregate.CaseID `json:"case,omitempty"`
}

// Active reports whether any dimension constrains the table.
func (s Spec) Active() bool {
	return s.From != nil || s.To != nil ||
		len(s.Severities) > 0 || len(s.Areas) > 0 || len(s.Districts) > 0 ||
		len(s.Weather) > 0 || len(s.Light) > 0 || len(s.RoadTypes) > 0 ||
		len(s.VehicleTypes) > 0 || len(s.SpeedLimits) > 0
}

// Options translates the request's aggregation parameters.
func (s Spec) Options() aggregate.Options {
	return aggregate.Options{TopN: s.TopN}
}

// Apply returns the records matching every active dimension of spec. The
// input table is never modified; records without a value for an active
// dimension (no parsed date, no speed limit) are excluded by it.
func Apply(tbl domain.Table, spec Spec) domain.Table {
	dateActive := (spec.From != nil || spec.To != nil) && tbl.HasDates()

	out := make(domain.Table, 0, len(tbl))
	for i := range tbl {
		r := &tbl[i]
		if dateActive && !matchDate(r.Date, spec.From, spec.To) {
			continue
		}
		if !matchSeverity(r.Severity, spec.Severities) {
			continue
		}
		if !matchString(r.Area, spec.Areas) ||
			!matchString(r.District, spec.Districts) ||
			!matchString(r.Weather, spec.Weather) ||
			!matchString(r.LightConditions, spec.Light) ||
			!matchString(r.RoadType, spec.RoadTypes) ||
			!matchString(r.VehicleType, spec.VehicleTypes) {
			continue
		}
		if !matchSpeed(r.SpeedLimit, spec.SpeedLimits) {
			continue
		}
		out = append(out, *r)
	}
	return out
}

func matchDate(d, from, to *time.Time) bool {
	if d == nil {
		return false
	}
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func matchSeverity(v domain.Severity, allowed []domain.Severity) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func matchString(v string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func matchSpeed(v *int, allowed []int) bool {
	if len(allowed) == 0 {
		return true
	}
	if v == nil {
		return false
	}
	for _, a := range allowed {
		if *v == a {
			return true
		}
	}
	return false
}
