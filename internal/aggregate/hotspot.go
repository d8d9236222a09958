package aggregate

import (
	"math/rand"
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// DistrictStats summarises one local-authority district.
type DistrictStats struct {
	District      string  `json:"district"`
	Accidents     int     `json:"accidents"`
	SevereRate    float64 `json:"severe_rate_pct"`
	AvgSeverity   float64 `json:"avg_severity"`
	AvgCasualties float64 `json:"avg_casualties"`
}

// MapPoint is one plotted accident location. Weight carries the severity
// score so renderers can scale markers; unscored records weigh 1.
type MapPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Weight    int     `json:"weight"`
}

// Coordinate is a map centre point.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// HotspotResult is the case 10 output: district league tables plus the
// point cloud for the map layer.
type HotspotResult struct {
	ByAccidents  []DistrictStats `json:"by_accidents"`
	BySevereRate []DistrictStats `json:"by_severe_rate"`
	MapPoints    []MapPoint      `json:"map_points"`
	Center       *Coordinate     `json:"center,omitempty"`
	TotalPoints  int             `json:"total_points"`
	Sampled      bool            `json:"sampled"`
}

// DistrictHotspots ranks districts by accident count and by severe rate,
// and collects located records for the map. When more records carry
// coordinates than opts allows, a deterministic seeded sample is drawn;
// the sample preserves the table's row order.
func DistrictHotspots(tbl domain.Table, opts Options) HotspotResult {
	type acc struct {
		accidents  int
		severe     int
		scoreSum   int
		scored     int
		casualties float64
		withCas    int
	}
	byDistrict := make(map[string]*acc)
	for i := range tbl {
		r := &tbl[i]
		a := byDistrict[r.District]
		if a == nil {
			a = &acc{}
			byDistrict[r.District] = a
		}
		a.accidents++
		if r.Severity.Severe() {
			a.severe++
		}
		if r.SeverityScore != nil {
			a.scoreSum += *r.SeverityScore
			a.scored++
		}
		if r.Casualties != nil {
			a.casualties += *r.Casualties
			a.withCas++
		}
	}

	stats := make([]DistrictStats, 0, len(byDistrict))
	for district, a := range byDistrict {
		s := DistrictStats{
			District:   district,
			Accidents:  a.accidents,
			SevereRate: percent(float64(a.severe), float64(a.accidents)),
		}
		if a.scored > 0 {
			s.AvgSeverity = float64(a.scoreSum) / float64(a.scored)
		}
		if a.withCas > 0 {
			s.AvgCasualties = a.casualties / float64(a.withCas)
		}
		stats = append(stats, s)
	}

	n := opts.topN(DefaultTopNDistrict)
	result := HotspotResult{
		ByAccidents:  topDistricts(stats, n, func(a, b DistrictStats) bool { return a.Accidents > b.Accidents }),
		BySevereRate: topDistricts(stats, n, func(a, b DistrictStats) bool { return a.SevereRate > b.SevereRate }),
	}

	located := make([]int, 0, len(tbl))
	for i := range tbl {
		if tbl[i].Latitude != nil && tbl[i].Longitude != nil {
			located = append(located, i)
		}
	}
	result.TotalPoints = len(located)

	limit := opts.maxMapPoints()
	if len(located) > limit {
		r := rand.New(rand.NewSource(opts.sampleSeed()))
		picked := r.Perm(len(located))[:limit]
		sort.Ints(picked)
		sampled := make([]int, limit)
		for i, p := range picked {
			sampled[i] = located[p]
		}
		located = sampled
		result.Sampled = true
	}

	result.MapPoints = make([]MapPoint, 0, len(located))
	var latSum, lonSum float64
	for _, i := range located {
		r := &tbl[i]
		weight := 1
		if r.SeverityScore != nil {
			weight = *r.SeverityScore
		}
		result.MapPoints = append(result.MapPoints, MapPoint{
			Latitude:  *r.Latitude,
			Longitude: *r.Longitude,
			Weight:    weight,
		})
		latSum += *r.Latitude
		lonSum += *r.Longitude
	}
	if len(result.MapPoints) > 0 {
		result.Center = &Coordinate{
			Latitude:  latSum / float64(len(result.MapPoints)),
			Longitude: lonSum / float64(len(result.MapPoints)),
		}
	}

	return result
}

func topDistricts(stats []DistrictStats, n int, less func(a, b DistrictStats) bool) []DistrictStats {
	out := make([]DistrictStats, len(stats))
	copy(out, stats)
	sort.Slice(out, func(i, j int) bool {
		if less(out[i], out[j]) {
			return true
		}
		if less(out[j], out[i]) {
			return false
		}
		return out[i].District < out[j].District
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
