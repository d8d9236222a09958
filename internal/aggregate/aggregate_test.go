package aggregate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/road-accident-insight/internal/aggregate"
	"github.com/couchcryptid/road-accident-insight/internal/domain"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func datep(v string) *time.Time {
	t, _ := time.Parse("2006-01-02", v)
	return &t
}

func rec(severity domain.Severity, mutate ...func(*domain.Record)) domain.Record {
	r := domain.Record{Severity: severity}
	if score, ok := severity.Score(); ok {
		r.SeverityScore = intp(score)
	}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

func TestRegistryCoversCatalog(t *testing.T) {
	require.Len(t, aggregate.Registry, len(aggregate.Catalog))
	for _, info := range aggregate.Catalog {
		assert.Contains(t, aggregate.Registry, info.ID)
	}
}

func TestRegistryToleratesEmptyTable(t *testing.T) {
	for id, fn := range aggregate.Registry {
		assert.NotPanics(t, func() { fn(domain.Table{}, aggregate.Options{}) }, "case %s", id)
	}
}

func TestSeverityComposition(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeverityFatal),
		rec(domain.SeveritySlight),
		rec(domain.SeveritySlight),
		rec(domain.SeverityUnknown),
	}

	counts := aggregate.SeverityComposition(tbl)

	require.Len(t, counts, 3)
	assert.Equal(t, domain.SeverityFatal, counts[0].Severity)
	assert.Equal(t, 1, counts[0].Count)
	assert.Equal(t, domain.SeveritySerious, counts[1].Severity)
	assert.Equal(t, 0, counts[1].Count, "absent severity still gets a zero row")
	assert.Equal(t, domain.SeveritySlight, counts[2].Severity)
	assert.Equal(t, 2, counts[2].Count)

	sum := 0
	for _, c := range counts {
		sum += c.Count
	}
	assert.Equal(t, 3, sum, "Unknown is excluded from the composition")
}

func TestMonthlyTrend(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Date = datep("2021-03-05"); r.Month = "2021-03" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Date = datep("2021-01-10"); r.Month = "2021-01" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Date = datep("2021-01-20"); r.Month = "2021-01" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Date = datep("2021-02-01"); r.Month = "2021-02" }),
		rec(domain.SeveritySlight), // undated, excluded
	}

	points := aggregate.MonthlyTrend(tbl)

	require.Len(t, points, 3)
	assert.Equal(t, "2021-01", points[0].Month)
	assert.Equal(t, 2, points[0].Accidents)
	assert.InDelta(t, 2.0, points[0].MovingAvg, 1e-9, "partial window averages what it has")
	assert.Equal(t, "2021-02", points[1].Month)
	assert.InDelta(t, 1.5, points[1].MovingAvg, 1e-9)
	assert.Equal(t, "2021-03", points[2].Month)
	assert.InDelta(t, (2.0+1.0+1.0)/3.0, points[2].MovingAvg, 1e-9)
}

func TestHourDayPattern(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.DayOfWeek = "Tuesday"; r.Hour = intp(8) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.DayOfWeek = "Monday"; r.Hour = intp(17) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.DayOfWeek = "Monday"; r.Hour = intp(17) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.DayOfWeek = "Monday" }), // no hour
	}

	cells := aggregate.HourDayPattern(tbl)

	require.Len(t, cells, 2)
	assert.Equal(t, "Monday", cells[0].DayOfWeek)
	assert.Equal(t, 17, cells[0].Hour)
	assert.Equal(t, 2, cells[0].Accidents)
	assert.Equal(t, "Tuesday", cells[1].DayOfWeek)
}

func TestSpeedSeverityRates(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeverityFatal, func(r *domain.Record) { r.SpeedLimit = intp(60) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.SpeedLimit = intp(60) }),
		rec(domain.SeverityUnknown, func(r *domain.Record) { r.SpeedLimit = intp(60) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.SpeedLimit = intp(30) }),
		rec(domain.SeverityFatal), // no speed limit, skipped
	}

	result := aggregate.SpeedSeverity(tbl)

	require.Len(t, result.Rates, 2)
	assert.Equal(t, 30, result.Rates[0].SpeedLimit)
	assert.InDelta(t, 0.0, result.Rates[0].SevereRate, 1e-9)
	assert.Equal(t, 60, result.Rates[1].SpeedLimit)
	assert.InDelta(t, 100.0/3.0, result.Rates[1].SevereRate, 1e-9,
		"Unknown stays in the denominator")

	for _, row := range result.Rates {
		assert.GreaterOrEqual(t, row.SevereRate, 0.0)
		assert.LessOrEqual(t, row.SevereRate, 100.0)
	}
}

func TestWeatherSeverityTopN(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Rain" }),
		rec(domain.SeverityFatal, func(r *domain.Record) { r.Weather = "Rain" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Fine" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Fine" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Fine" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Snow" }),
	}

	result := aggregate.WeatherSeverity(tbl, 2)

	assert.Equal(t, []string{"Fine", "Rain"}, result.TopValues)
	for _, c := range result.Counts {
		assert.NotEqual(t, "Snow", c.Category, "values outside the top N are dropped")
	}
}

func TestWeatherSeverityTopNRecomputedOnSubset(t *testing.T) {
	// After filtering away the dominant value, the top N is drawn from what
	// remains rather than from the full dataset.
	subset := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Snow" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Weather = "Fog" }),
	}

	result := aggregate.WeatherSeverity(subset, 2)

	assert.ElementsMatch(t, []string{"Snow", "Fog"}, result.TopValues)
}

func TestLightConditions(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.LightConditions = "Darkness"; r.Hour = intp(22) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.LightConditions = "Daylight"; r.Hour = intp(9) }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.LightConditions = "Daylight" }),
	}

	result := aggregate.LightConditions(tbl)

	require.Len(t, result.Counts, 2)
	assert.Equal(t, "Daylight", result.Counts[0].Category, "most frequent first")
	assert.Equal(t, 2, result.Counts[0].Count)

	require.Len(t, result.ByHour, 2, "records without an hour are excluded from the hourly series")
	assert.Equal(t, 9, result.ByHour[0].Hour)
}

func TestRoadSurfaceRatesSorted(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeverityFatal, func(r *domain.Record) { r.RoadSurface = "Ice" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.RoadSurface = "Ice" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.RoadSurface = "Dry" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.RoadSurface = "Dry" }),
	}

	result := aggregate.RoadSurface(tbl)

	require.Len(t, result.Rates, 2)
	assert.Equal(t, "Ice", result.Rates[0].Category, "highest severe rate first")
	assert.InDelta(t, 50.0, result.Rates[0].SevereRate, 1e-9)
	assert.Equal(t, "Dry", result.Rates[1].Category)
}

func TestUrbanRural(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Area = "Urban" }),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.Area = "Urban" }),
		rec(domain.SeverityFatal, func(r *domain.Record) { r.Area = "Rural" }),
	}

	result := aggregate.UrbanRural(tbl)

	require.Len(t, result.Rates, 2)
	assert.Equal(t, "Rural", result.Rates[0].Category)
	assert.InDelta(t, 100.0, result.Rates[0].SevereRate, 1e-9)
}

func TestDistrictHotspots(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeverityFatal, func(r *domain.Record) {
			r.District = "Leeds"
			r.Latitude = floatp(53.8)
			r.Longitude = floatp(-1.55)
			r.Casualties = floatp(2)
		}),
		rec(domain.SeveritySlight, func(r *domain.Record) {
			r.District = "Leeds"
			r.Latitude = floatp(53.81)
			r.Longitude = floatp(-1.56)
			r.Casualties = floatp(1)
		}),
		rec(domain.SeveritySlight, func(r *domain.Record) { r.District = "York" }),
	}

	result := aggregate.DistrictHotspots(tbl, aggregate.Options{})

	require.Len(t, result.ByAccidents, 2)
	assert.Equal(t, "Leeds", result.ByAccidents[0].District)
	assert.Equal(t, 2, result.ByAccidents[0].Accidents)
	assert.InDelta(t, 50.0, result.ByAccidents[0].SevereRate, 1e-9)
	assert.InDelta(t, 2.0, result.ByAccidents[0].AvgSeverity, 1e-9)
	assert.InDelta(t, 1.5, result.ByAccidents[0].AvgCasualties, 1e-9)

	require.Len(t, result.MapPoints, 2, "records without coordinates are excluded")
	assert.Equal(t, 2, result.TotalPoints)
	assert.False(t, result.Sampled)
	assert.Equal(t, 3, result.MapPoints[0].Weight, "fatal records weigh their severity score")

	require.NotNil(t, result.Center)
	assert.InDelta(t, 53.805, result.Center.Latitude, 1e-9)
}

func TestDistrictHotspotsTopNTruncation(t *testing.T) {
	tbl := make(domain.Table, 0, 6)
	for _, d := range []string{"A", "B", "C", "D", "E", "F"} {
		district := d
		tbl = append(tbl, rec(domain.SeveritySlight, func(r *domain.Record) { r.District = district }))
	}

	result := aggregate.DistrictHotspots(tbl, aggregate.Options{TopN: 4})

	assert.Len(t, result.ByAccidents, 4)
	assert.Len(t, result.BySevereRate, 4)
}

func TestDistrictHotspotsSamplingDeterministic(t *testing.T) {
	tbl := make(domain.Table, 0, 50)
	for i := 0; i < 50; i++ {
		lat, lon := 50.0+float64(i)*0.01, -1.0
		tbl = append(tbl, rec(domain.SeveritySlight, func(r *domain.Record) {
			r.District = "X"
			r.Latitude = &lat
			r.Longitude = &lon
		}))
	}

	opts := aggregate.Options{MaxMapPoints: 10, SampleSeed: 7}
	first := aggregate.DistrictHotspots(tbl, opts)
	second := aggregate.DistrictHotspots(tbl, opts)

	assert.True(t, first.Sampled)
	assert.Equal(t, 50, first.TotalPoints)
	assert.Len(t, first.MapPoints, 10)
	assert.Equal(t, first.MapPoints, second.MapPoints, "same seed, same sample")

	for i := 1; i < len(first.MapPoints); i++ {
		assert.Less(t, first.MapPoints[i-1].Latitude, first.MapPoints[i].Latitude,
			"sample preserves row order")
	}
}

func TestSummarize(t *testing.T) {
	tbl := domain.Table{
		rec(domain.SeverityFatal, func(r *domain.Record) {
			r.Date = datep("2021-01-01")
			r.Casualties = floatp(3)
			r.Vehicles = floatp(2)
		}),
		rec(domain.SeveritySlight, func(r *domain.Record) {
			r.Date = datep("2021-06-30")
			r.Casualties = floatp(1)
		}),
		rec(domain.SeverityUnknown),
	}

	s := aggregate.Summarize(tbl)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Fatal)
	assert.Equal(t, 1, s.Slight)
	assert.InDelta(t, 100.0/3.0, s.FatalPct, 1e-9, "Unknown stays in the denominator")
	assert.InDelta(t, 2.0, s.AvgCasualties, 1e-9, "averages skip records without a value")
	assert.InDelta(t, 2.0, s.AvgVehicles, 1e-9)
	require.NotNil(t, s.DateFrom)
	assert.Equal(t, "2021-01-01", s.DateFrom.Format("2006-01-02"))
	assert.Equal(t, "2021-06-30", s.DateTo.Format("2006-01-02"))
}

func TestSummarizeEmpty(t *testing.T) {
	s := aggregate.Summarize(domain.Table{})

	assert.Zero(t, s.Total)
	assert.Zero(t, s.FatalPct)
	assert.Nil(t, s.DateFrom)
	assert.Nil(t, s.DateTo)
}
