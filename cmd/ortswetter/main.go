package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/i474232898/weather-daily-overview/internal/config"
	"github.com/i474232898/weather-daily-overview/internal/observability"
	"github.com/i474232898/weather-daily-overview/internal/weather"
	"github.com/i474232898/weather-daily-overview/internal/weather/providers"
)

func main() {
	var name = flag.StringP("name", "n", "", "place name, e.g. Fislisbach")
	var country = flag.StringP("country", "c", "", "ISO 3166-1 alpha-2 country code, e.g. CH")
	var preset = flag.IntP("preset", "p", -1, "index of a preset place (see --list-presets)")
	var pastDays = flag.Int("past-days", -1, "days of history to include, 0..92 (default from PAST_DAYS)")
	var forecastDays = flag.Int("forecast-days", -1, "days of forecast to include, 0..16 (default from FORECAST_DAYS)")
	var asJSON = flag.Bool("json", false, "print the overview as JSON")
	var listPresets = flag.Bool("list-presets", false, "list the preset places and exit")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	if *listPresets {
		printPresets(os.Stdout, cfg.Presets)
		return
	}

	q, err := pickQuery(*name, *country, *preset, cfg.Presets)
	if err != nil {
		flag.Usage()
		fatal(err)
	}

	window, err := overrideWindow(cfg.Window, *pastDays, *forecastDays)
	if err != nil {
		fatal(err)
	}

	log := observability.NewLogger(os.Stderr, cfg.LogLevel, "text")
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	resolver, err := providers.NewResolver(cfg.Geocoder, httpClient, cfg.GeocodingLanguage, cfg.GoogleAPIKey, log)
	if err != nil {
		fatal(err)
	}
	service := weather.NewService(nil, resolver, providers.NewOpenMeteoForecast(httpClient, log),
		weather.ServiceConfig{Window: window},
		weather.WithLogger(log),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ov, err := service.Overview(ctx, q)
	if err != nil {
		fatal(err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ov); err != nil {
			fatal(err)
		}
		return
	}
	if err := renderTable(os.Stdout, ov); err != nil {
		fatal(err)
	}
}

// pickQuery prefers an explicit name over a preset index.
func pickQuery(name, country string, preset int, presets []weather.LocationQuery) (weather.LocationQuery, error) {
	if name != "" {
		return weather.LocationQuery{Name: name, Country: country}, nil
	}
	if preset >= 0 {
		if preset >= len(presets) {
			return weather.LocationQuery{}, fmt.Errorf("preset %d out of range (0..%d)", preset, len(presets)-1)
		}
		return presets[preset], nil
	}
	return weather.LocationQuery{}, fmt.Errorf("please specify --name or --preset")
}

// overrideWindow applies the day flags (negative means unset) and checks the
// result against the forecast API limits.
func overrideWindow(w weather.FetchWindow, pastDays, forecastDays int) (weather.FetchWindow, error) {
	if pastDays >= 0 {
		w.PastDays = pastDays
	}
	if forecastDays >= 0 {
		w.ForecastDays = forecastDays
	}
	if err := config.ValidateWindow(w); err != nil {
		return weather.FetchWindow{}, fmt.Errorf("--past-days/--forecast-days: %w", err)
	}
	return w, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ortswetter: %v\n", err)
	os.Exit(1)
}
