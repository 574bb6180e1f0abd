package weather

import "math"

// Wind severity thresholds in km/h. Strong wind starts around Beaufort 6,
// storm around Beaufort 7; band shading stops at MaxBandCeiling.
const (
	StrongThreshold = 39.0
	StormThreshold  = 50.0
	MaxBandCeiling  = 89.0
)

// Band is a wind severity class.
type Band string

const (
	BandNormal Band = "normal"
	BandStrong Band = "strong"
	BandStorm  Band = "storm"
)

// WindClassification is the band of one gust value plus the upper edges of
// the shaded strong and storm areas. A nil edge means no shading.
type WindClassification struct {
	Band            Band     `json:"band"`
	StrongFillUpper *float64 `json:"strongFillUpper,omitempty"`
	StormFillUpper  *float64 `json:"stormFillUpper,omitempty"`
}

// ClassifiedWind is a daily wind record annotated with its band.
type ClassifiedWind struct {
	DailyWindRecord
	WindClassification
}

// WindSeries is a classified daily wind series with the values needed to
// draw threshold lines and scale the axis.
type WindSeries struct {
	Days            []ClassifiedWind `json:"days"`
	StrongThreshold float64          `json:"strongThreshold"`
	StormThreshold  float64          `json:"stormThreshold"`
	BandCeiling     float64          `json:"bandCeiling"`
	AxisCeiling     float64          `json:"axisCeiling"`
}

// Classify bands a single gust value. Negative and NaN input is normal.
func Classify(gust float64) WindClassification {
	switch {
	case gust >= StormThreshold:
		return WindClassification{
			Band:            BandStorm,
			StrongFillUpper: ptr(math.Min(gust, StormThreshold)),
			StormFillUpper:  ptr(math.Min(gust, MaxBandCeiling)),
		}
	case gust >= StrongThreshold:
		return WindClassification{
			Band:            BandStrong,
			StrongFillUpper: ptr(gust),
		}
	default:
		return WindClassification{Band: BandNormal}
	}
}

// ClassifyWind classifies every day by its maximum gust, keeping input
// order. Days without a gust value are normal.
func ClassifyWind(days []DailyWindRecord) WindSeries {
	out := WindSeries{
		Days:            make([]ClassifiedWind, 0, len(days)),
		StrongThreshold: StrongThreshold,
		StormThreshold:  StormThreshold,
		BandCeiling:     MaxBandCeiling,
	}
	gusts := make([]float64, 0, len(days))
	for _, d := range days {
		c := WindClassification{Band: BandNormal}
		if !missing(d.GustsMax) {
			c = Classify(*d.GustsMax)
			gusts = append(gusts, *d.GustsMax)
		}
		out.Days = append(out.Days, ClassifiedWind{DailyWindRecord: d, WindClassification: c})
	}
	out.AxisCeiling = AxisCeiling(gusts)
	return out
}

// AxisCeiling is the upper y-axis limit for a gust series: the band ceiling,
// or 5% above the highest gust when that is larger.
func AxisCeiling(gusts []float64) float64 {
	ceiling := MaxBandCeiling
	for _, g := range gusts {
		if math.IsNaN(g) {
			continue
		}
		ceiling = math.Max(ceiling, g*1.05)
	}
	return ceiling
}

// Counts tallies the days in each band.
func (s WindSeries) Counts() map[Band]int {
	counts := make(map[Band]int, 3)
	for _, d := range s.Days {
		counts[d.Band]++
	}
	return counts
}

func ptr(v float64) *float64 {
	return &v
}
