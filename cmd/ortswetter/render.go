package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

const todayMarker = "*"

func printPresets(w io.Writer, presets []weather.LocationQuery) {
	for i, p := range presets {
		fmt.Fprintf(w, "%2d  %s\n", i, p.String())
	}
}

// renderTable prints the label and one line per local day, marking today.
func renderTable(w io.Writer, ov weather.Overview) error {
	fmt.Fprintln(w, ov.Label)
	fmt.Fprintf(w, "Timezone: %s  Strong wind >= %.0f km/h  Storm >= %.0f km/h\n\n",
		ov.Place.Timezone, ov.Wind.StrongThreshold, ov.Wind.StormThreshold)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\t\tTMIN °C\tTMAX °C\tDEW °C\tRAIN mm\tSNOW cm\tTOTAL mm\tGUST km/h\tBAND\t")

	for _, d := range ov.Days() {
		mark := ""
		if d.Date == ov.Today {
			mark = todayMarker
		}

		tmin, tmax, dew := "-", "-", "-"
		if t := d.Temperature; t != nil {
			tmin, tmax, dew = num(t.TMin), num(t.TMax), num(t.DewMean)
		}
		rain, snow, total := "-", "-", "-"
		if p := d.Precipitation; p != nil {
			rain, snow, total = num(p.Rain), num(p.Snowfall), num(p.Precipitation)
		}
		gust, band := "-", "-"
		if wd := d.Wind; wd != nil {
			if wd.GustsMax != nil {
				gust = num(*wd.GustsMax)
			}
			band = string(wd.Band)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			d.Date, mark, tmin, tmax, dew, rain, snow, total, gust, band)
	}
	return tw.Flush()
}

func num(v float64) string {
	return fmt.Sprintf("%.1f", v)
}
