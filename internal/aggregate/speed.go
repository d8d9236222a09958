package aggregate

import (
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// SpeedSeverityCount is one (speed limit, severity) cell.
type SpeedSeverityCount struct {
	SpeedLimit int             `json:"speed_limit"`
	Severity   domain.Severity `json:"accident_severity"`
	Count      int             `json:"count"`
}

// SpeedRateRow is the severe rate per speed limit.
type SpeedRateRow struct {
	SpeedLimit int     `json:"speed_limit"`
	Total      int     `json:"total"`
	SevereRate float64 `json:"severe_rate_pct"`
}

/// SpeedSeverityResult is the case 4 output: the stacked breakdown plus the
// severe-rate line, both ordered by speed limit.
type SpeedSeverityResult struct {
	Counts []SpeedSeverityCount `json:"counts"`
	Rates  []SpeedRateRow       `json:"rates"`
}

// SpeedSeverity groups records with a known speed limit by (speed limit,
// severity) and derives the severe rate per speed limit.
func SpeedSeverity(tbl domain.Table) SpeedSeverityResult {
	type cell struct {
		speed    int
		severity domain.Severity
	}
	counts := make(map[cell]int)
	totals := make(map[int]int)
	severe := make(map[int]int)
	for i := range tbl {
		if tbl[i].SpeedLimit == nil {
			continue
		}
		speed := *tbl[i].SpeedLimit
		counts[cell{speed: speed, severity: tbl[i].Severity}]++
		totals[speed]++
		if tbl[i].Severity.Severe() {
			severe[speed]++
		}
	}

	result := SpeedSeverityResult{
		Counts: make([]SpeedSeverityCount, 0, len(counts)),
		Rates:  make([]SpeedRateRow, 0, len(totals)),
	}
	for c, n := range counts {
		result.Counts = append(result.Counts, SpeedSeverityCount{SpeedLimit: c.speed, Severity: c.severity, Count: n})
	}
	sort.Slice(result.Counts, func(i, j int) bool {
		if result.Counts[i].SpeedLimit != result.Counts[j].SpeedLimit {
			return result.Counts[i].SpeedLimit < result.Counts[j].SpeedLimit
		}
		return severityRank(result.Counts[i].Severity) < severityRank(result.Counts[j].Severity)
	})

	for speed, total := range totals {
		result.Rates = append(result.Rates, SpeedRateRow{
			SpeedLimit: speed,
			Total:      total,
			SevereRate: percent(float64(severe[speed]), float64(total)),
		})
	}
	sort.Slice(result.Rates, func(i, j int) bool {
		return result.Rates[i].SpeedLimit < result.Rates[j].SpeedLimit
	})

	return result
}
