package aggregate

import (
	"sort"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

// HeatmapCell is one (day-of-week, hour) cell of the pattern grid. Cells
// with no accidents are omitted; the consumer treats them as zero.
type HeatmapCell struct {
	DayOfWeek string `json:"day_of_week"`
	Hour      int    `json:"hour"`
	Accidents int    `json:"accidents"`
}

// HourDayPattern counts accidents per (day-of-week, hour) over records with
// a parsed hour, ordered Monday..Sunday then by hour.
func HourDayPattern(tbl domain.Table) []HeatmapCell {
	type key struct {
		dow  string
		hour int
	}
	counts := make(map[key]int)
	for i := range tbl {
		if tbl[i].Hour == nil {
			continue
		}
		counts[key{dow: tbl[i].DayOfWeek, hour: *tbl[i].Hour}]++
	}

	cells := make([]HeatmapCell, 0, len(counts))
	for k, n := range counts {
		cells = append(cells, HeatmapCell{DayOfWeek: k.dow, Hour: k.hour, Accidents: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		di, dj := domain.WeekdayIndex(cells[i].DayOfWeek), domain.WeekdayIndex(cells[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		return cells[i].Hour < cells[j].Hour
	})
	return cells
}
