// Package pipeline turns the raw delimited accident dataset into a cleaned
// domain.Table plus a Diagnostics record. The transform is deterministic:
// the same source bytes always produce the same table.
package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/road-accident-insight/internal/domain"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
)

// clock is a package-level time source so tests can freeze the diagnostics
// timestamp via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used for Diagnostics.GeneratedAt. Pass nil
// to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Diagnostics summarizes one cleaning run. It is produced once per load and
// never mutated afterward.
type Diagnostics struct {
	RowsRaw                       int       `json:"rows_raw"`
	ColsRaw                       int       `json:"cols_raw"`
	DuplicateAccidentIndex        int       `json:"duplicates_accident_index"`
	DateParseFailures             int       `json:"date_parse_failures"`
	RowsClean                     int       `json:"rows_clean"`
	MissingRateCarriagewayHazards float64   `json:"missing_rate_carriageway_hazards"`
	GeneratedAt                   time.Time `json:"generated_at"`
}

// requiredColumns are the canonical columns the pipeline indexes
// unconditionally. A dataset missing one of these is structurally unusable
// and fails fast; every other column is optional.
var requiredColumns = []string{"accident_severity", "accident_date", "time", "day_of_week"}

// Loader runs the cleaning pipeline.
type Loader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewLoader creates a Loader with the given observability.
func NewLoader(logger *slog.Logger, metrics *observability.Metrics) *Loader {
	return &Loader{logger: logger, metrics: metrics}
}

// Load reads a delimited dataset and applies the full cleaning sequence:
// normalize headers, deduplicate by accident_index, repair severity, parse
// temporal fields and derive time features, resolve day-of-week, repair the
// remaining categoricals, coerce numerics, and compute the severity score.
// Malformed values degrade per field and never abort the run; only an
// unreadable source or a missing required column is an error.
func (l *Loader) Load(r io.Reader) (domain.Table, Diagnostics, error) {
	start := time.Now()

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // ragged rows degrade per cell, they do not abort

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, Diagnostics{}, fmt.Errorf("read dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, Diagnostics{}, fmt.Errorf("dataset has no header row")
	}

	cols := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := domain.NormalizeHeader(h)
		if _, exists := cols[name]; !exists {
			cols[name] = i
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, Diagnostics{}, fmt.Errorf("required column %q not found", name)
		}
	}

	diag := Diagnostics{
		RowsRaw: len(rows) - 1,
		ColsRaw: len(rows[0]),
	}

	data := dedupe(rows[1:], cols, &diag)

	_, hasHazards := cols["carriageway_hazards"]
	_, hasIndex := cols["accident_index"]

	table := make(domain.Table, 0, len(data))
	hazardsUnknown := 0
	for _, row := range data {
		rec := buildRecord(row, cols, hasIndex)
		if rec.Date == nil {
			diag.DateParseFailures++
		}
		if rec.CarriagewayHazards == domain.CategoryUnknown {
			hazardsUnknown++
		}
		table = append(table, rec)
	}

	diag.RowsClean = len(table)
	if hasHazards && len(table) > 0 {
		diag.MissingRateCarriagewayHazards = float64(hazardsUnknown) / float64(len(table))
	}
	diag.GeneratedAt = clock.Now()

	l.metrics.DatasetLoads.Inc()
	l.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	l.metrics.RowsRaw.Set(float64(diag.RowsRaw))
	l.metrics.RowsClean.Set(float64(diag.RowsClean))
	l.metrics.DuplicatesDropped.Set(float64(diag.DuplicateAccidentIndex))
	l.metrics.DateParseFailures.Set(float64(diag.DateParseFailures))

	l.logger.Info("dataset cleaned",
		"rows_raw", diag.RowsRaw,
		"rows_clean", diag.RowsClean,
		"duplicates", diag.DuplicateAccidentIndex,
		"date_parse_failures", diag.DateParseFailures,
	)

	return table, diag, nil
}

// dedupe keeps the first occurrence per accident_index value, preserving
// row order. Empty index values compare equal to each other, matching the
// source convention that a missing key is one shared "no key" bucket. When
// the column is absent no deduplication happens at all.
func dedupe(rows [][]string, cols map[string]int, diag *Diagnostics) [][]string {
	idx, ok := cols["accident_index"]
	if !ok {
		return rows
	}

	seen := make(map[string]bool, len(rows))
	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		key := strings.TrimSpace(cellAt(row, idx))
		if seen[key] {
			diag.DuplicateAccidentIndex++
			continue
		}
		seen[key] = true
		kept = append(kept, row)
	}
	return kept
}

func buildRecord(row []string, cols map[string]int, hasIndex bool) domain.Record {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok {
			return ""
		}
		return cellAt(row, idx)
	}

	rec := domain.Record{}
	if hasIndex {
		rec.AccidentIndex = strings.TrimSpace(cell("accident_index"))
	}

	rec.Severity = domain.FixSeverity(cell("accident_severity"))
	if score, ok := rec.Severity.Score(); ok {
		rec.SeverityScore = &score
	}

	rec.Date = domain.ParseDate(cell("accident_date"))
	rec.Time = strings.TrimSpace(cell("time"))
	rec.Hour = domain.ParseHour(cell("time"))
	if rec.Date != nil {
		year := rec.Date.Year()
		monthNum := int(rec.Date.Month())
		rec.Year = &year
		rec.MonthNum = &monthNum
		rec.Month = domain.MonthToken(*rec.Date)
		rec.DayName = rec.Date.Weekday().String()
	}
	rec.DayOfWeek = domain.ResolveDayOfWeek(cell("day_of_week"), rec.DayName)

	rec.JunctionControl = domain.CleanCategory(cell("junction_control"))
	rec.JunctionDetail = domain.CleanCategory(cell("junction_detail"))
	rec.LightConditions = domain.CleanCategory(cell("light_conditions"))
	rec.District = domain.CleanCategory(cell("local_authority_district"))
	rec.CarriagewayHazards = domain.CleanCategory(cell("carriageway_hazards"))
	rec.PoliceForce = domain.CleanCategory(cell("police_force"))
	rec.RoadSurface = domain.CleanCategory(cell("road_surface_conditions"))
	rec.RoadType = domain.CleanCategory(cell("road_type"))
	rec.Area = domain.CleanCategory(cell("urban_or_rural_area"))
	rec.Weather = domain.CleanCategory(cell("weather_conditions"))
	rec.VehicleType = domain.CleanCategory(cell("vehicle_type"))

	rec.Casualties = domain.CoerceFloat(cell("number_of_casualties"))
	rec.Vehicles = domain.CoerceFloat(cell("number_of_vehicles"))
	rec.SpeedLimit = domain.CoerceRoundedInt(cell("speed_limit"))
	rec.Latitude = domain.CoerceFloat(cell("latitude"))
	rec.Longitude = domain.CoerceFloat(cell("longitude"))

	return rec
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
