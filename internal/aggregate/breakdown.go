package aggregate

import (
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// CategorySeverityCount is one (category, severity) cell of a stacked
// breakdown.
type CategorySeverityCount struct {
	Category string          `json:"category"`
	Severity domain.Severity `json:"accident_severity"`
	Count    int             `json:"count"`
}

// SevereRateRow is the per-category severe rate: the percentage of the
// category's records classified Fatal or Serious. Totals include Unknown
// records, so the rate is conservative for categories with many of them.
type SevereRateRow struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	SevereRate float64 `json:"severe_rate_pct"`
}

// severityRank fixes the within-category row order of breakdowns.
func severityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityFatal:
		return 0
	case domain.SeveritySerious:
		return 1
	case domain.SeveritySlight:
		return 2
	default:
		return 3
	}
}

// countByCategorySeverity groups records by (key(record), severity). The
// key func returns false to exclude a record from the grouping.
func countByCategorySeverity(tbl domain.Table, key func(*domain.Record) (string, bool)) []CategorySeverityCount {
	type cell struct {
		category string
		severity domain.Severity
	}
	counts := make(map[cell]int)
	for i := range tbl {
		k, ok := key(&tbl[i])
		if !ok {
			continue
		}
		counts[cell{category: k, severity: tbl[i].Severity}]++
	}

	out := make([]CategorySeverityCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategorySeverityCount{Category: c.category, Severity: c.severity, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return severityRank(out[i].Severity) < severityRank(out[j].Severity)
	})
	return out
}

// severeRates collapses a breakdown into per-category totals and severe
// rates, ordered by category.
func severeRates(counts []CategorySeverityCount) []SevereRateRow {
	totals := make(map[string]int)
	severe := make(map[string]int)
	order := make([]string, 0)
	for _, c := range counts {
		if _, seen := totals[c.Category]; !seen {
			order = append(order, c.Category)
		}
		totals[c.Category] += c.Count
		if c.Severity.Severe() {
			severe[c.Category] += c.Count
		}
	}
	sort.Strings(order)

	out := make([]SevereRateRow, 0, len(order))
	for _, cat := range order {
		out = append(out, SevereRateRow{
			Category:   cat,
			Total:      totals[cat],
			SevereRate: percent(float64(severe[cat]), float64(totals[cat])),
		})
	}
	return out
}

// sortBySevereRateDesc orders rate rows by severe rate, highest first,
// breaking ties by category name for determinism.
func sortBySevereRateDesc(rows []SevereRateRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SevereRate != rows[j].SevereRate {
			return rows[i].SevereRate > rows[j].SevereRate
		}
		return rows[i].Category < rows[j].Category
	})
}

// topCategories returns the n most frequent values of key within the table,
// ranked by count descending with name-ascending tie-breaks. Callers pass
// the already-filtered subset, so the "top" values shift with the active
// filter.
func topCategories(tbl domain.Table, key func(*domain.Record) string, n int) []string {
	counts := make(map[string]int)
	for i := range tbl {
		counts[key(&tbl[i])]++
	}

	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})

	if n < len(values) {
		values = values[:n]
	}
	return values
}
