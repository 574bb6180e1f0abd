package weather

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

// hours builds consecutive hourly records starting at start.
func hours(start time.Time, temps, dews []float64) []HourlyRecord {
	out := make([]HourlyRecord, len(temps))
	for i := range temps {
		out[i] = HourlyRecord{
			Time:        start.Add(time.Duration(i) * time.Hour),
			Temperature: f(temps[i]),
			DewPoint:    f(dews[i]),
		}
	}
	return out
}

func TestAggregateTemperatureDew_SingleDay(t *testing.T) {
	start := time.Date(2025, 1, 10, 6, 0, 0, 0, time.UTC)
	series := HourlySeries{
		Timezone: time.UTC,
		Records:  hours(start, []float64{-2, 5, 8, 3}, []float64{-5, -1, 1, 0}),
	}

	days, err := AggregateTemperatureDew(series)
	require.NoError(t, err)
	require.Len(t, days, 1)

	assert.Equal(t, Date{2025, time.January, 10}, days[0].Date)
	assert.Equal(t, -2.0, days[0].TMin)
	assert.Equal(t, 8.0, days[0].TMax)
	assert.InDelta(t, -1.25, days[0].DewMean, 1e-9)
	assert.Equal(t, 4, days[0].Samples)
}

func TestAggregateTemperatureDew_GroupsOnLocalMidnight(t *testing.T) {
	zurich := mustLoad(t, "Europe/Zurich")
	// 22:00 UTC on Jan 10 is 23:00 in Zurich; 23:00 UTC is already Jan 11 there.
	start := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)
	records := hours(start, []float64{1, 2, 3}, []float64{0, 0, 0})

	days, err := AggregateTemperatureDew(HourlySeries{Timezone: zurich, Records: records})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, Date{2025, time.January, 10}, days[0].Date)
	assert.Equal(t, 1, days[0].Samples)
	assert.Equal(t, Date{2025, time.January, 11}, days[1].Date)
	assert.Equal(t, 2, days[1].Samples)

	utcDays, err := AggregateTemperatureDew(HourlySeries{Timezone: time.UTC, Records: records})
	require.NoError(t, err)
	require.Len(t, utcDays, 2)
	assert.Equal(t, 2, utcDays[0].Samples)
}

func TestAggregateTemperatureDew_NilTimezoneUsesRecordLocation(t *testing.T) {
	tokyo := mustLoad(t, "Asia/Tokyo")
	start := time.Date(2025, 3, 1, 23, 0, 0, 0, tokyo)
	records := hours(start, []float64{4, 6}, []float64{1, 1})

	days, err := AggregateTemperatureDew(HourlySeries{Records: records})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, Date{2025, time.March, 1}, days[0].Date)
	assert.Equal(t, Date{2025, time.March, 2}, days[1].Date)
}

func TestAggregateTemperatureDew_UnsortedInput(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	records := hours(start, []float64{10, 11, 12, 20, 21}, []float64{5, 5, 5, 6, 6})
	// Move the first record to the next day and shuffle.
	records[0].Time = start.Add(30 * time.Hour)
	shuffled := []HourlyRecord{records[3], records[0], records[1], records[4], records[2]}

	days, err := AggregateTemperatureDew(HourlySeries{Timezone: time.UTC, Records: shuffled})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, Date{2025, time.June, 1}, days[0].Date)
	assert.Equal(t, 11.0, days[0].TMin)
	assert.Equal(t, 21.0, days[0].TMax)
	assert.Equal(t, Date{2025, time.June, 2}, days[1].Date)
	assert.Equal(t, 10.0, days[1].TMin)

	// Input must not be reordered.
	assert.Equal(t, records[3].Time, shuffled[0].Time)
}

func TestAggregateTemperatureDew_NoGapFill(t *testing.T) {
	day1 := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	day3 := time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC)
	records := append(hours(day1, []float64{1}, []float64{0}), hours(day3, []float64{2}, []float64{0})...)

	days, err := AggregateTemperatureDew(HourlySeries{Timezone: time.UTC, Records: records})
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 1, days[0].Date.Day)
	assert.Equal(t, 3, days[1].Date.Day)
}

func TestAggregateTemperatureDew_DuplicateTimestampsCountTwice(t *testing.T) {
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	records := []HourlyRecord{
		{Time: ts, Temperature: f(1), DewPoint: f(0)},
		{Time: ts, Temperature: f(3), DewPoint: f(4)},
	}

	days, err := AggregateTemperatureDew(HourlySeries{Timezone: time.UTC, Records: records})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 2, days[0].Samples)
	assert.Equal(t, 2.0, days[0].DewMean)
}

func TestAggregateTemperatureDew_Malformed(t *testing.T) {
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		record HourlyRecord
		field  string
	}{
		{"missing temperature", HourlyRecord{Time: ts, DewPoint: f(1)}, "temperature"},
		{"NaN temperature", HourlyRecord{Time: ts, Temperature: f(math.NaN()), DewPoint: f(1)}, "temperature"},
		{"missing dew point", HourlyRecord{Time: ts, Temperature: f(1)}, "dew_point"},
		{"zero time", HourlyRecord{Temperature: f(1), DewPoint: f(1)}, "time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			good := HourlyRecord{Time: ts.Add(-time.Hour), Temperature: f(1), DewPoint: f(1)}
			days, err := AggregateTemperatureDew(HourlySeries{Records: []HourlyRecord{good, tt.record}})

			require.Error(t, err)
			assert.Nil(t, days)
			assert.True(t, errors.Is(err, ErrMalformedRecord))

			var mre *MalformedRecordError
			require.True(t, errors.As(err, &mre))
			assert.Equal(t, 1, mre.Index)
			assert.Equal(t, tt.field, mre.Field)
		})
	}
}

func TestAggregatePrecipitation_Sums(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	rain := []float64{1.0, 0, 0, 2.0}
	snow := []float64{0, 0, 0, 0.5}
	total := []float64{1.0, 0, 0, 2.5}

	records := make([]HourlyRecord, 4)
	for i := range records {
		records[i] = HourlyRecord{
			Time:          start.Add(time.Duration(i) * time.Hour),
			Precipitation: f(total[i]),
			Rain:          f(rain[i]),
			Snowfall:      f(snow[i]),
		}
	}

	days, err := AggregatePrecipitation(HourlySeries{Timezone: time.UTC, Records: records})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.InDelta(t, 3.0, days[0].Rain, 1e-9)
	assert.InDelta(t, 0.5, days[0].Snowfall, 1e-9)
	assert.InDelta(t, 3.5, days[0].Precipitation, 1e-9)
}

func TestAggregatePrecipitation_MissingValuesAreZero(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []HourlyRecord{
		{Time: start, Precipitation: f(1.2), Rain: f(1.2)},
		{Time: start.Add(time.Hour)},
		{Time: start.Add(2 * time.Hour), Precipitation: f(math.NaN()), Rain: f(0.3), Snowfall: f(0.1)},
	}

	days, err := AggregatePrecipitation(HourlySeries{Timezone: time.UTC, Records: records})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 3, days[0].Samples)
	assert.InDelta(t, 1.2, days[0].Precipitation, 1e-9)
	assert.InDelta(t, 1.5, days[0].Rain, 1e-9)
	assert.InDelta(t, 0.1, days[0].Snowfall, 1e-9)
}

func TestAggregate_EmptyInput(t *testing.T) {
	_, err := AggregateTemperatureDew(HourlySeries{})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = AggregatePrecipitation(HourlySeries{Timezone: time.UTC})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// TestAggregate_Properties checks grouping completeness, min/max bounds and
// sum conservation over a multi-day series with partial edge days.
func TestAggregate_Properties(t *testing.T) {
	zurich := mustLoad(t, "Europe/Zurich")
	start := time.Date(2025, 3, 28, 15, 0, 0, 0, zurich) // spans the DST change on Mar 30

	var records []HourlyRecord
	for i := 0; i < 24*4+7; i++ {
		v := float64((i*37)%23) - 8
		records = append(records, HourlyRecord{
			Time:          start.Add(time.Duration(i) * time.Hour),
			Temperature:   f(v),
			DewPoint:      f(v - 3),
			Precipitation: f(float64(i%5) * 0.3),
			Rain:          f(float64(i%5) * 0.2),
			Snowfall:      f(float64(i%5) * 0.1),
		})
	}

	type raw struct {
		temps                []float64
		precip, rain, snowfl float64
	}
	expected := map[Date]*raw{}
	for _, r := range records {
		d := DateOf(r.Time, zurich)
		if expected[d] == nil {
			expected[d] = &raw{}
		}
		e := expected[d]
		e.temps = append(e.temps, *r.Temperature)
		e.precip += *r.Precipitation
		e.rain += *r.Rain
		e.snowfl += *r.Snowfall
	}

	series := HourlySeries{Timezone: zurich, Records: records}
	temps, err := AggregateTemperatureDew(series)
	require.NoError(t, err)
	precip, err := AggregatePrecipitation(series)
	require.NoError(t, err)

	require.Len(t, temps, len(expected))
	require.Len(t, precip, len(expected))

	for i, day := range temps {
		if i > 0 {
			assert.True(t, temps[i-1].Date.Before(day.Date), "dates ascending")
		}
		e, ok := expected[day.Date]
		require.True(t, ok, "unexpected day %s", day.Date)

		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range e.temps {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		assert.LessOrEqual(t, day.TMin, day.TMax)
		assert.Equal(t, lo, day.TMin)
		assert.Equal(t, hi, day.TMax)
		assert.Equal(t, len(e.temps), day.Samples)
	}

	for _, day := range precip {
		e := expected[day.Date]
		require.NotNil(t, e)
		assert.InDelta(t, e.precip, day.Precipitation, 1e-9)
		assert.InDelta(t, e.rain, day.Rain, 1e-9)
		assert.InDelta(t, e.snowfl, day.Snowfall, 1e-9)
	}
}
