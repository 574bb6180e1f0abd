package archive

import (
	"time"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

// summaryRow is one archived day. Nil values are columns the overview has no
// data for on that date.
type summaryRow struct {
	PlaceKey  string
	Date      weather.Date
	PlaceName string
	Timezone  string

	TMin    *float64
	TMax    *float64
	DewMean *float64

	Precipitation *float64
	Rain          *float64
	Snowfall      *float64

	WindSpeedMin *float64
	WindSpeedMax *float64
	GustsMax     *float64
	Band         *string

	GeneratedAt time.Time
}

// summaryRows flattens the joined days of ov into table rows.
func summaryRows(ov weather.Overview) []summaryRow {
	days := ov.Days()
	out := make([]summaryRow, 0, len(days))
	for _, d := range days {
		r := summaryRow{
			PlaceKey:    ov.Query.Key(),
			Date:        d.Date,
			PlaceName:   ov.Place.Name,
			Timezone:    ov.Place.Timezone,
			GeneratedAt: ov.GeneratedAt,
		}
		if t := d.Temperature; t != nil {
			r.TMin, r.TMax, r.DewMean = ptr(t.TMin), ptr(t.TMax), ptr(t.DewMean)
		}
		if p := d.Precipitation; p != nil {
			r.Precipitation, r.Rain, r.Snowfall = ptr(p.Precipitation), ptr(p.Rain), ptr(p.Snowfall)
		}
		if w := d.Wind; w != nil {
			r.WindSpeedMin, r.WindSpeedMax, r.GustsMax = w.SpeedMin, w.SpeedMax, w.GustsMax
			r.Band = ptr(string(w.Band))
		}
		out = append(out, r)
	}
	return out
}

func ptr[T any](v T) *T { return &v }
