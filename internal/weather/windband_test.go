package weather

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		gust       float64
		band       Band
		strongFill *float64
		stormFill  *float64
	}{
		{"calm", 12, BandNormal, nil, nil},
		{"just below strong", 38.999, BandNormal, nil, nil},
		{"strong threshold", 39, BandStrong, f(39), nil},
		{"strong", 45, BandStrong, f(45), nil},
		{"just below storm", 49.9, BandStrong, f(49.9), nil},
		{"storm threshold", 50, BandStorm, f(50), f(50)},
		{"storm", 72, BandStorm, f(50), f(72)},
		{"band ceiling", 89, BandStorm, f(50), f(89)},
		{"above ceiling", 95, BandStorm, f(50), f(89)},
		{"negative", -3, BandNormal, nil, nil},
		{"NaN", math.NaN(), BandNormal, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.gust)
			assert.Equal(t, tt.band, c.Band)
			assert.Equal(t, tt.strongFill, c.StrongFillUpper)
			assert.Equal(t, tt.stormFill, c.StormFillUpper)
		})
	}
}

func TestClassify_MonotonicBanding(t *testing.T) {
	for g := 0.0; g <= 120; g += 0.25 {
		c := Classify(g)
		switch {
		case g < StrongThreshold:
			assert.Equal(t, BandNormal, c.Band, "g=%v", g)
		case g < StormThreshold:
			assert.Equal(t, BandStrong, c.Band, "g=%v", g)
			require.NotNil(t, c.StrongFillUpper)
			assert.Equal(t, g, *c.StrongFillUpper)
			assert.Nil(t, c.StormFillUpper)
		default:
			assert.Equal(t, BandStorm, c.Band, "g=%v", g)
			require.NotNil(t, c.StormFillUpper)
			assert.Equal(t, math.Min(g, MaxBandCeiling), *c.StormFillUpper)
		}
	}
}

func TestClassifyWind(t *testing.T) {
	days := []DailyWindRecord{
		{Date: Date{2025, 1, 1}, SpeedMin: f(3), SpeedMax: f(15), GustsMax: f(30)},
		{Date: Date{2025, 1, 2}, SpeedMin: f(10), SpeedMax: f(28), GustsMax: f(45)},
		{Date: Date{2025, 1, 3}, SpeedMin: f(20), SpeedMax: f(60), GustsMax: f(100)},
		{Date: Date{2025, 1, 4}, SpeedMin: f(40), SpeedMax: f(20), GustsMax: f(10)}, // inverted ordering is tolerated
		{Date: Date{2025, 1, 5}},
	}

	series := ClassifyWind(days)
	require.Len(t, series.Days, 5)
	assert.Equal(t, BandNormal, series.Days[0].Band)
	assert.Equal(t, BandStrong, series.Days[1].Band)
	assert.Equal(t, BandStorm, series.Days[2].Band)
	assert.Equal(t, BandNormal, series.Days[3].Band)
	assert.Equal(t, BandNormal, series.Days[4].Band)
	assert.Nil(t, series.Days[4].StrongFillUpper)

	assert.Equal(t, days[2].Date, series.Days[2].Date)
	assert.Equal(t, StrongThreshold, series.StrongThreshold)
	assert.Equal(t, StormThreshold, series.StormThreshold)
	assert.Equal(t, MaxBandCeiling, series.BandCeiling)
	assert.InDelta(t, 105.0, series.AxisCeiling, 1e-9)

	assert.Equal(t, map[Band]int{BandNormal: 3, BandStrong: 1, BandStorm: 1}, series.Counts())
}

func TestAxisCeiling(t *testing.T) {
	assert.Equal(t, MaxBandCeiling, AxisCeiling(nil))
	assert.Equal(t, MaxBandCeiling, AxisCeiling([]float64{10, 40, 80}))
	assert.InDelta(t, 94.5, AxisCeiling([]float64{90, math.NaN()}), 1e-9)
}

func TestClassifiedWind_JSON(t *testing.T) {
	series := ClassifyWind([]DailyWindRecord{{Date: Date{2025, 1, 2}, GustsMax: f(45)}})

	b, err := json.Marshal(series.Days[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-01-02","windSpeedMin":null,"windSpeedMax":null,"windGustsMax":45,"band":"strong","strongFillUpper":45}`, string(b))
}
