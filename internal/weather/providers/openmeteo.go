package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

	hourlyTimeLayout = "2006-01-02T15:04"
	dailyTimeLayout  = "2006-01-02"
)

var (
	hourlyVariables = []string{"temperature_2m", "dew_point_2m", "precipitation", "rain", "snowfall"}
	dailyVariables  = []string{"wind_speed_10m_max", "wind_speed_10m_min", "wind_gusts_10m_max"}
)

// OpenMeteoForecast implements weather.Fetcher against the Open-Meteo forecast API.
// Temperatures are °C, wind km/h, precipitation and rain mm, snowfall cm.
type OpenMeteoForecast struct {
	baseURL string
	http    *resilientClient
}

// NewOpenMeteoForecast creates a fetcher using client for outbound calls.
func NewOpenMeteoForecast(client *http.Client, logger *slog.Logger) *OpenMeteoForecast {
	return &OpenMeteoForecast{
		baseURL: openMeteoForecastURL,
		http:    newResilientClient("openmeteo-forecast", client, DefaultBackoff(), logger),
	}
}

type forecastPayload struct {
	Timezone string `json:"timezone"`
	Hourly   struct {
		Time          []string   `json:"time"`
		Temperature   []*float64 `json:"temperature_2m"`
		DewPoint      []*float64 `json:"dew_point_2m"`
		Precipitation []*float64 `json:"precipitation"`
		Rain          []*float64 `json:"rain"`
		Snowfall      []*float64 `json:"snowfall"`
	} `json:"hourly"`
	Daily struct {
		Time     []string   `json:"time"`
		SpeedMax []*float64 `json:"wind_speed_10m_max"`
		SpeedMin []*float64 `json:"wind_speed_10m_min"`
		GustsMax []*float64 `json:"wind_gusts_10m_max"`
	} `json:"daily"`
}

// Fetch retrieves hourly temperature, dew point and precipitation plus daily
// wind for place, localized to the timezone Open-Meteo reports back.
func (p *OpenMeteoForecast) Fetch(ctx context.Context, place weather.Place, window weather.FetchWindow) (weather.Observations, error) {
	tz := place.Timezone
	if tz == "" {
		tz = "auto"
	}

	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(place.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(place.Longitude, 'f', -1, 64))
	values.Set("hourly", strings.Join(hourlyVariables, ","))
	values.Set("daily", strings.Join(dailyVariables, ","))
	values.Set("timezone", tz)
	if window.PastDays > 0 {
		values.Set("past_days", strconv.Itoa(window.PastDays))
	}
	if window.ForecastDays > 0 {
		values.Set("forecast_days", strconv.Itoa(window.ForecastDays))
	}

	var payload forecastPayload
	if err := p.http.getJSON(ctx, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Observations{}, fmt.Errorf("openmeteo forecast: %w", err)
	}
	return payload.observations()
}

func (p forecastPayload) observations() (weather.Observations, error) {
	loc := time.UTC
	if p.Timezone != "" {
		var err error
		if loc, err = time.LoadLocation(p.Timezone); err != nil {
			return weather.Observations{}, fmt.Errorf("load timezone %q: %w", p.Timezone, err)
		}
	}

	h := p.Hourly
	n := len(h.Time)
	for name, col := range map[string][]*float64{
		"temperature_2m": h.Temperature,
		"dew_point_2m":   h.DewPoint,
		"precipitation":  h.Precipitation,
		"rain":           h.Rain,
		"snowfall":       h.Snowfall,
	} {
		if len(col) != n {
			return weather.Observations{}, fmt.Errorf("hourly %s has %d values for %d timestamps", name, len(col), n)
		}
	}

	records := make([]weather.HourlyRecord, n)
	for i, s := range h.Time {
		ts, err := time.ParseInLocation(hourlyTimeLayout, s, loc)
		if err != nil {
			return weather.Observations{}, fmt.Errorf("hourly time %q: %w", s, err)
		}
		records[i] = weather.HourlyRecord{
			Time:          ts,
			Temperature:   h.Temperature[i],
			DewPoint:      h.DewPoint[i],
			Precipitation: h.Precipitation[i],
			Rain:          h.Rain[i],
			Snowfall:      h.Snowfall[i],
		}
	}

	d := p.Daily
	m := len(d.Time)
	if len(d.SpeedMax) != m || len(d.SpeedMin) != m || len(d.GustsMax) != m {
		return weather.Observations{}, fmt.Errorf("daily wind series lengths differ from %d timestamps", m)
	}

	wind := make([]weather.DailyWindRecord, m)
	for i, s := range d.Time {
		ts, err := time.ParseInLocation(dailyTimeLayout, s, loc)
		if err != nil {
			return weather.Observations{}, fmt.Errorf("daily time %q: %w", s, err)
		}
		wind[i] = weather.DailyWindRecord{
			Date:     weather.DateOf(ts, loc),
			SpeedMin: d.SpeedMin[i],
			SpeedMax: d.SpeedMax[i],
			GustsMax: d.GustsMax[i],
		}
	}

	return weather.Observations{
		Timezone:  loc,
		Hourly:    weather.HourlySeries{Timezone: loc, Records: records},
		DailyWind: wind,
	}, nil
}
