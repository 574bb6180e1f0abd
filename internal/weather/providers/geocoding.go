package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements weather.Resolver with the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	baseURL  string
	language string
	http     *resilientClient
}

// NewOpenMeteoGeocoder creates a resolver returning names in language ("de" when empty).
func NewOpenMeteoGeocoder(client *http.Client, language string, logger *slog.Logger) *OpenMeteoGeocoder {
	if language == "" {
		language = "de"
	}
	return &OpenMeteoGeocoder{
		baseURL:  openMeteoGeocodingURL,
		language: language,
		http:     newResilientClient("openmeteo-geocoding", client, DefaultBackoff(), logger),
	}
}

type geocodingPayload struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// Resolve returns the best match for q, or weather.ErrLocationNotFound.
func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, q weather.LocationQuery) (weather.Place, error) {
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return weather.Place{}, fmt.Errorf("%w: empty name", weather.ErrLocationNotFound)
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("count", "1")
	values.Set("language", g.language)
	values.Set("format", "json")
	if c := strings.TrimSpace(q.Country); c != "" {
		values.Set("countryCode", strings.ToUpper(c))
	}

	var payload geocodingPayload
	if err := g.http.getJSON(ctx, g.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Place{}, fmt.Errorf("openmeteo geocoding: %w", err)
	}
	if len(payload.Results) == 0 {
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, q.String())
	}

	r := payload.Results[0]
	tz := r.Timezone
	if tz == "" {
		tz = "auto"
	}
	return weather.Place{
		Name:      r.Name,
		Country:   r.Country,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Timezone:  tz,
	}, nil
}
