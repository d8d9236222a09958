package aggregate

import (
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// CategoryBreakdownResult is the shared output shape for the top-N
// restricted categorical cases (weather, vehicle type).
type CategoryBreakdownResult struct {
	TopValues []string                `json:"top_values"`
	Counts    []CategorySeverityCount `json:"counts"`
}

// WeatherSeverity restricts records to the topN most frequent weather
// conditions within the filtered subset and groups them by severity.
func WeatherSeverity(tbl domain.Table, topN int) CategoryBreakdownResult {
	return topNBreakdown(tbl, topN, func(r *domain.Record) string { return r.Weather })
}

// VehicleType restricts records to the topN most frequent vehicle types
// within the filtered subset and groups them by severity.
func VehicleType(tbl domain.Table, topN int) CategoryBreakdownResult {
	return topNBreakdown(tbl, topN, func(r *domain.Record) string { return r.VehicleType })
}

func topNBreakdown(tbl domain.Table, topN int, key func(*domain.Record) string) CategoryBreakdownResult {
	top := topCategories(tbl, key, topN)
	keep := make(map[string]bool, len(top))
	for _, v := range top {
		keep[v] = true
	}

	counts := countByCategorySeverity(tbl, func(r *domain.Record) (string, bool) {
		k := key(r)
		return k, keep[k]
	})
	return CategoryBreakdownResult{TopValues: top, Counts: counts}
}

// CategoryCount is one row of a plain value-count table.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// HourCategoryCount is one (hour, category) cell.
type HourCategoryCount struct {
	Hour     int    `json:"hour"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// LightConditionsResult is the case 6 output: overall value counts plus the
// per-hour series for records with a parsed hour.
type LightConditionsResult struct {
	Counts []CategoryCount     `json:"counts"`
	ByHour []HourCategoryCount `json:"by_hour"`
}

// LightConditions counts records per light condition (most frequent first)
// and per (hour, light condition).
func LightConditions(tbl domain.Table) LightConditionsResult {
	counts := make(map[string]int)
	type cell struct {
		hour     int
		category string
	}
	byHour := make(map[cell]int)
	for i := range tbl {
		counts[tbl[i].LightConditions]++
		if tbl[i].Hour != nil {
			byHour[cell{hour: *tbl[i].Hour, category: tbl[i].LightConditions}]++
		}
	}

	result := LightConditionsResult{
		Counts: make([]CategoryCount, 0, len(counts)),
		ByHour: make([]HourCategoryCount, 0, len(byHour)),
	}
	for cat, n := range counts {
		result.Counts = append(result.Counts, CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(result.Counts, func(i, j int) bool {
		if result.Counts[i].Count != result.Counts[j].Count {
			return result.Counts[i].Count > result.Counts[j].Count
		}
		return result.Counts[i].Category < result.Counts[j].Category
	})

	for c, n := range byHour {
		result.ByHour = append(result.ByHour, HourCategoryCount{Hour: c.hour, Category: c.category, Count: n})
	}
	sort.Slice(result.ByHour, func(i, j int) bool {
		if result.ByHour[i].Hour != result.ByHour[j].Hour {
			return result.ByHour[i].Hour < result.ByHour[j].Hour
		}
		return result.ByHour[i].Category < result.ByHour[j].Category
	})

	return result
}

// RateBreakdownResult is the shared output shape for the severe-rate cases
// (road surface, urban vs rural).
type RateBreakdownResult struct {
	Counts []CategorySeverityCount `json:"counts"`
	Rates  []SevereRateRow         `json:"rates"` // sorted by severe rate, highest first
}

// RoadSurface groups records by (road surface, severity) and ranks surfaces
// by severe rate.
func RoadSurface(tbl domain.Table) RateBreakdownResult {
	return rateBreakdown(tbl, func(r *domain.Record) string { return r.RoadSurface })
}

// UrbanRural groups records by (urban/rural area, severity) and ranks areas
// by severe rate.
func UrbanRural(tbl domain.Table) RateBreakdownResult {
	return rateBreakdown(tbl, func(r *domain.Record) string { return r.Area })
}

func rateBreakdown(tbl domain.Table, key func(*domain.Record) string) RateBreakdownResult {
	counts := countByCategorySeverity(tbl, func(r *domain.Record) (string, bool) {
		return key(r), true
	})
	rates := severeRates(counts)
	sortBySevereRateDesc(rates)
	return RateBreakdownResult{Counts: counts, Rates: rates}
}
