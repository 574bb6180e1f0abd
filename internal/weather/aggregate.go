package weather

import (
	"math"
	"sort"
)

// dayGroup is a run of records sharing one local calendar day.
type dayGroup struct {
	date    Date
	records []HourlyRecord
}

// groupByDay sorts a copy of the series by time and splits it at local
// midnight. The input slice is not modified.
func groupByDay(series HourlySeries) []dayGroup {
	sorted := make([]HourlyRecord, len(series.Records))
	copy(sorted, series.Records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var groups []dayGroup
	for _, r := range sorted {
		d := DateOf(r.Time, series.Timezone)
		if n := len(groups); n > 0 && groups[n-1].date == d {
			groups[n-1].records = append(groups[n-1].records, r)
			continue
		}
		groups = append(groups, dayGroup{date: d, records: []HourlyRecord{r}})
	}
	return groups
}

// AggregateTemperatureDew reduces an hourly series to one record per local
// calendar day: minimum and maximum temperature and mean dew point.
//
// Partial days at either end are emitted as-is and days without records are
// absent. Records sharing a timestamp are counted as independent samples.
func AggregateTemperatureDew(series HourlySeries) ([]DailyTemperatureDew, error) {
	if len(series.Records) == 0 {
		return nil, ErrEmptyInput
	}
	for i, r := range series.Records {
		if r.Time.IsZero() {
			return nil, &MalformedRecordError{Index: i, Field: "time"}
		}
		if missing(r.Temperature) {
			return nil, &MalformedRecordError{Index: i, Time: r.Time, Field: "temperature"}
		}
		if missing(r.DewPoint) {
			return nil, &MalformedRecordError{Index: i, Time: r.Time, Field: "dew_point"}
		}
	}

	groups := groupByDay(series)
	out := make([]DailyTemperatureDew, 0, len(groups))
	for _, g := range groups {
		day := DailyTemperatureDew{
			Date:    g.date,
			TMin:    math.Inf(1),
			TMax:    math.Inf(-1),
			Samples: len(g.records),
		}
		var dewSum float64
		for _, r := range g.records {
			day.TMin = math.Min(day.TMin, *r.Temperature)
			day.TMax = math.Max(day.TMax, *r.Temperature)
			dewSum += *r.DewPoint
		}
		day.DewMean = dewSum / float64(len(g.records))
		out = append(out, day)
	}
	return out, nil
}

// AggregatePrecipitation sums precipitation, rain and snowfall over each
// local calendar day. Missing hourly values count as zero.
func AggregatePrecipitation(series HourlySeries) ([]DailyPrecipitation, error) {
	if len(series.Records) == 0 {
		return nil, ErrEmptyInput
	}
	for i, r := range series.Records {
		if r.Time.IsZero() {
			return nil, &MalformedRecordError{Index: i, Field: "time"}
		}
	}

	groups := groupByDay(series)
	out := make([]DailyPrecipitation, 0, len(groups))
	for _, g := range groups {
		day := DailyPrecipitation{Date: g.date, Samples: len(g.records)}
		for _, r := range g.records {
			day.Precipitation += valueOrZero(r.Precipitation)
			day.Rain += valueOrZero(r.Rain)
			day.Snowfall += valueOrZero(r.Snowfall)
		}
		out = append(out, day)
	}
	return out, nil
}

func missing(v *float64) bool {
	return v == nil || math.IsNaN(*v)
}

func valueOrZero(v *float64) float64 {
	if missing(v) {
		return 0
	}
	return *v
}
