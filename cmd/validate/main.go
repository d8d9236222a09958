// Command validate runs integrity checks over a cleaned accident dataset:
// it loads the CSV through the actual cleaning pipeline, then verifies the
// invariants the dashboard relies on (severity domain and scores, category
// hygiene, temporal consistency, index uniqueness, rate bounds) and prints
// the diagnostics and severity composition.
//
// Usage:
//
//	go run ./cmd/validate -dataset road_accident_dataset.csv
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/couchcryptid/road-accident-insight/internal/aggregate"
	"github.com/couchcryptid/road-accident-insight/internal/domain"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
)

const maxErrorsPerPhase = 25

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataset := flag.String("dataset", "", "path to the raw accident CSV")
	flag.Parse()

	if *dataset == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataset); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== Accident Dataset Integrity Validation ===")
	fmt.Println()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: open dataset: %v\n", err)
		return 1
	}
	defer f.Close()

	loader := pipeline.NewLoader(slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())
	tbl, diag, err := loader.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: clean dataset: %v\n", err)
		return 1
	}

	printDiagnostics(diag)
	printComposition(tbl)

	phases := []*phase{
		validateSeverity(tbl),
		validateCategories(tbl),
		validateTemporal(tbl),
		validateUniqueness(tbl),
		validateRateBounds(tbl),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsPerPhase {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrorsPerPhase)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func printDiagnostics(diag pipeline.Diagnostics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Diagnostic", "Value"})
	t.AppendRow(table.Row{"Rows raw", diag.RowsRaw})
	t.AppendRow(table.Row{"Columns raw", diag.ColsRaw})
	t.AppendRow(table.Row{"Duplicate accident indices", diag.DuplicateAccidentIndex})
	t.AppendRow(table.Row{"Date parse failures", diag.DateParseFailures})
	t.AppendRow(table.Row{"Rows clean", diag.RowsClean})
	t.AppendRow(table.Row{"Hazards missing rate", fmt.Sprintf("%.4f", diag.MissingRateCarriagewayHazards)})
	t.Render()
}

func printComposition(tbl domain.Table) {
	s := aggregate.Summarize(tbl)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Severity", "Count", "Share"})
	t.AppendRow(table.Row{domain.SeverityFatal, s.Fatal, fmt.Sprintf("%.2f%%", s.FatalPct)})
	t.AppendRow(table.Row{domain.SeveritySerious, s.Serious, fmt.Sprintf("%.2f%%", s.SeriousPct)})
	t.AppendRow(table.Row{domain.SeveritySlight, s.Slight, fmt.Sprintf("%.2f%%", s.SlightPct)})
	t.AppendRow(table.Row{domain.SeverityUnknown, s.Total - s.Fatal - s.Serious - s.Slight, ""})
	t.AppendFooter(table.Row{"Total", s.Total, ""})
	t.Render()
}

// Phase 1: every severity is in the closed domain and its score matches.
func validateSeverity(tbl domain.Table) *phase {
	p := &phase{name: "Phase 1: Severity domain and scores"}

	valid := map[domain.Severity]bool{
		domain.SeverityFatal:   true,
		domain.SeveritySerious: true,
		domain.SeveritySlight:  true,
		domain.SeverityUnknown: true,
	}

	for i := range tbl {
		r := &tbl[i]
		if !valid[r.Severity] {
			p.errorf("row %d (%s): severity %q outside domain", i, r.AccidentIndex, r.Severity)
			continue
		}
		score, scored := r.Severity.Score()
		switch {
		case scored && r.SeverityScore == nil:
			p.errorf("row %d (%s): severity %s has no score", i, r.AccidentIndex, r.Severity)
		case scored && *r.SeverityScore != score:
			p.errorf("row %d (%s): severity %s scored %d, expected %d", i, r.AccidentIndex, r.Severity, *r.SeverityScore, score)
		case !scored && r.SeverityScore != nil:
			p.errorf("row %d (%s): unknown severity carries score %d", i, r.AccidentIndex, *r.SeverityScore)
		}
	}
	return p
}

// Phase 2: categorical fields are never empty and never raw placeholders.
func validateCategories(tbl domain.Table) *phase {
	p := &phase{name: "Phase 2: Category hygiene"}

	fields := func(r *domain.Record) map[string]string {
		return map[string]string{
			"junction_control":    r.JunctionControl,
			"junction_detail":     r.JunctionDetail,
			"light_conditions":    r.LightConditions,
			"district":            r.District,
			"carriageway_hazards": r.CarriagewayHazards,
			"police_force":        r.PoliceForce,
			"road_surface":        r.RoadSurface,
			"road_type":           r.RoadType,
			"urban_or_rural_area": r.Area,
			"weather_conditions":  r.Weather,
			"vehicle_type":        r.VehicleType,
		}
	}

	for i := range tbl {
		for name, v := range fields(&tbl[i]) {
			if v == "" {
				p.errorf("row %d (%s): %s is empty after cleaning", i, tbl[i].AccidentIndex, name)
			}
			if domain.CleanCategory(v) != v {
				p.errorf("row %d (%s): %s %q is not in cleaned form", i, tbl[i].AccidentIndex, name, v)
			}
		}
	}
	return p
}

// Phase 3: derived time features agree with the parsed date.
func validateTemporal(tbl domain.Table) *phase {
	p := &phase{name: "Phase 3: Temporal consistency"}

	for i := range tbl {
		r := &tbl[i]
		if !domain.IsWeekday(r.DayOfWeek) && r.DayOfWeek != domain.CategoryUnknown {
			p.errorf("row %d (%s): day_of_week %q outside Monday..Sunday", i, r.AccidentIndex, r.DayOfWeek)
		}
		if r.Hour != nil && (*r.Hour < 0 || *r.Hour > 23) {
			p.errorf("row %d (%s): hour %d out of range", i, r.AccidentIndex, *r.Hour)
		}

		if r.Date == nil {
			if r.Year != nil || r.MonthNum != nil || r.Month != "" || r.DayName != "" {
				p.errorf("row %d (%s): undated row carries derived date features", i, r.AccidentIndex)
			}
			continue
		}
		if r.Year == nil || *r.Year != r.Date.Year() {
			p.errorf("row %d (%s): year disagrees with date", i, r.AccidentIndex)
		}
		if r.MonthNum == nil || *r.MonthNum != int(r.Date.Month()) {
			p.errorf("row %d (%s): month number disagrees with date", i, r.AccidentIndex)
		}
		if r.Month != domain.MonthToken(*r.Date) {
			p.errorf("row %d (%s): month token %q disagrees with date", i, r.AccidentIndex, r.Month)
		}
		if r.DayName != r.Date.Weekday().String() {
			p.errorf("row %d (%s): day name %q disagrees with date", i, r.AccidentIndex, r.DayName)
		}
	}
	return p
}

// Phase 4: accident indices are unique after dedup.
func validateUniqueness(tbl domain.Table) *phase {
	p := &phase{name: "Phase 4: Accident index uniqueness"}

	seen := make(map[string]int, len(tbl))
	for i := range tbl {
		idx := tbl[i].AccidentIndex
		if idx == "" {
			continue
		}
		if first, ok := seen[idx]; ok {
			p.errorf("rows %d and %d share accident_index %q", first, i, idx)
			continue
		}
		seen[idx] = i
	}
	return p
}

// Phase 5: every severe rate any case can produce stays within [0, 100].
func validateRateBounds(tbl domain.Table) *phase {
	p := &phase{name: "Phase 5: Severe rate bounds"}

	check := func(source, category string, rate float64) {
		if rate < 0 || rate > 100 {
			p.errorf("%s: %q severe rate %.4f outside [0, 100]", source, category, rate)
		}
	}

	for _, row := range aggregate.SpeedSeverity(tbl).Rates {
		check("speed", fmt.Sprintf("%d", row.SpeedLimit), row.SevereRate)
	}
	for _, row := range aggregate.RoadSurface(tbl).Rates {
		check("road surface", row.Category, row.SevereRate)
	}
	for _, row := range aggregate.UrbanRural(tbl).Rates {
		check("area", row.Category, row.SevereRate)
	}
	for _, d := range aggregate.DistrictHotspots(tbl, aggregate.Options{}).BySevereRate {
		check("district", d.District, d.SevereRate)
	}
	return p
}
