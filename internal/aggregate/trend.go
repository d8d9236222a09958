package aggregate

import (
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// TrendPoint is one month of the accident time series.
type TrendPoint struct {
	Month     string  `json:"month"` // sortable "YYYY-MM" token
	Accidents int     `json:"accidents"`
	MovingAvg float64 `json:"ma3"` // trailing 3-month mean, partial windows included
}

// MonthlyTrend counts accidents per month over dated records, sorted
// chronologically, with a 3-point trailing moving average. Records without
// a parsed date are excluded.
func MonthlyTrend(tbl domain.Table) []TrendPoint {
	counts := make(map[string]int)
	for i := range tbl {
		if tbl[i].Date == nil {
			continue
		}
		counts[tbl[i].Month]++
	}

	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	// The "YYYY-MM" token sorts lexicographically in chronological order.
	sort.Strings(months)

	points := make([]TrendPoint, 0, len(months))
	for i, m := range months {
		sum, n := 0, 0
		for j := max(0, i-2); j <= i; j++ {
			sum += counts[months[j]]
			n++
		}
		points = append(points, TrendPoint{
			Month:     m,
			Accidents: counts[m],
			MovingAvg: float64(sum) / float64(n),
		})
	}
	return points
}
