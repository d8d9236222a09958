// Command genmock generates a deterministic mock accident CSV fixture with
// the quirks the cleaning pipeline has to handle: duplicated accident
// indices, the "Fetal" severity typo, placeholder category values, and
// malformed dates. It runs the generated file through the actual pipeline
// and prints the resulting counts so test assertions can be updated.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/accidents.csv -rows 500 -seed 42
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/couchcryptid/road-accident-insight/internal/aggregate"
	"github.com/couchcryptid/road-accident-insight/internal/observability"
	"github.com/couchcryptid/road-accident-insight/internal/pipeline"
)

var (
	severities = []string{"Fatal", "Serious", "Slight", "Slight", "Slight", "Fetal", "fatal"}
	weathers   = []string{"Fine no high winds", "Raining no high winds", "Snowing no high winds", "Fine + high winds", "Data missing or out of range", ""}
	surfaces   = []string{"Dry", "Wet or damp", "Frost or ice", "Snow", "Data missing or out of range"}
	lights     = []string{"Daylight", "Darkness - lights lit", "Darkness - no lighting", "Darkness - lighting unknown"}
	areas      = []string{"Urban", "Rural", "Unallocated"}
	districts  = []string{"Leeds", "Bradford", "Sheffield", "York", "Kirklees", "Wakefield", "Calderdale", "Harrogate"}
	roadTypes  = []string{"Single carriageway", "Dual carriageway", "Roundabout", "One way street", "Slip road"}
	vehicles   = []string{"Car", "Motorcycle over 500cc", "Pedal cycle", "Bus or coach (17 or more pass seats)", "Goods 7.5 tonnes mgw and over", "Taxi/Private hire car"}
	speeds     = []string{"30", "30", "30", "40", "50", "60", "70", "30.0", "60.0"}
)

var header = []string{
	"Accident_Index", "Accident Date", "Time", "Day_of_Week",
	"Accident_Severity", "Weather_Conditions", "Road_Surface_Conditions",
	"Light_Conditions", "Urban_or_Rural_Area", "Local_Authority_(District)",
	"Road_Type", "Vehicle_Type", "Speed_limit",
	"Number_of_Casualties", "Number_of_Vehicles",
	"Latitude", "Longitude", "Carriageway_Hazards",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the mock CSV fixture")
	rows := flag.Int("rows", 500, "number of raw rows to generate")
	seed := flag.Int64("seed", 42, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	var buf bytes.Buffer
	if err := generate(&buf, *rows, *seed); err != nil {
		return fmt.Errorf("generating fixture: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, buf.Bytes(), 0o600); err != nil {
		return err
	}
	log.Printf("wrote fixture: %s (%d raw rows)", *out, *rows)

	return printStats(bytes.NewReader(buf.Bytes()))
}

func generate(w io.Writer, rows int, seed int64) error {
	r := rand.New(rand.NewSource(seed))
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < rows; i++ {
		idx := fmt.Sprintf("A%06d", i+1)
		// Roughly 5% duplicated indices, reusing an earlier row's key.
		if i > 0 && r.Intn(20) == 0 {
			idx = fmt.Sprintf("A%06d", r.Intn(i)+1)
		}

		date := fmt.Sprintf("%02d-%02d-%d", r.Intn(28)+1, r.Intn(12)+1, 2019+r.Intn(3))
		// Roughly 2% malformed dates.
		if r.Intn(50) == 0 {
			date = "not a date"
		}

		row := []string{
			idx,
			date,
			fmt.Sprintf("%02d:%02d", r.Intn(24), r.Intn(60)),
			"", // derived from the date by the pipeline
			pick(r, severities),
			pick(r, weathers),
			pick(r, surfaces),
			pick(r, lights),
			pick(r, areas),
			pick(r, districts),
			pick(r, roadTypes),
			pick(r, vehicles),
			pick(r, speeds),
			fmt.Sprintf("%d", r.Intn(4)+1),
			fmt.Sprintf("%d", r.Intn(3)+1),
			fmt.Sprintf("%.5f", 53.5+r.Float64()),
			fmt.Sprintf("%.5f", -2.0+r.Float64()),
			pick(r, []string{"None", "None", "None", "Other object on road", ""}),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func pick(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

func printStats(r io.Reader) error {
	loader := pipeline.NewLoader(slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())
	table, diag, err := loader.Load(r)
	if err != nil {
		return fmt.Errorf("running pipeline over fixture: %w", err)
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Rows raw: %d, clean: %d\n", diag.RowsRaw, diag.RowsClean)
	fmt.Printf("Duplicates dropped: %d\n", diag.DuplicateAccidentIndex)
	fmt.Printf("Date parse failures: %d\n", diag.DateParseFailures)
	fmt.Printf("Hazards missing rate: %.4f\n", diag.MissingRateCarriagewayHazards)

	s := aggregate.Summarize(table)
	fmt.Printf("Severity: fatal=%d, serious=%d, slight=%d (total %d)\n",
		s.Fatal, s.Serious, s.Slight, s.Total)
	fmt.Printf("Avg casualties: %.3f, avg vehicles: %.3f\n", s.AvgCasualties, s.AvgVehicles)
	if s.DateFrom != nil && s.DateTo != nil {
		fmt.Printf("Date range: %s .. %s\n",
			s.DateFrom.Format("2006-01-02"), s.DateTo.Format("2006-01-02"))
	}
	return nil
}
