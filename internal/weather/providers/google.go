package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-daily-overview/internal/common"
	"github.com/i474232898/weather-daily-overview/internal/weather"
)

// geocodeFunc matches geocoder.Geocoding so tests can stub the Google call.
type geocodeFunc func(geocoder.Address) (geocoder.Location, error)

// GoogleGeocoder implements weather.Resolver with the Google Geocoding API.
// Google has no timezone in its answer, so places resolve to "auto" and the
// forecast API picks the zone from the coordinates.
//
// The API key is process-global (geocoder.ApiKey), not per instance; see
// NewGoogleGeocoder.
type GoogleGeocoder struct {
	geocode geocodeFunc
}

// NewGoogleGeocoder configures the package-wide API key of kelvins/geocoder.
// Only one key per process is supported: constructing a second GoogleGeocoder
// with a different key silently switches every existing one to that key.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{geocode: geocoder.Geocoding}
}

// Resolve geocodes q as a city within an optional country.
func (g *GoogleGeocoder) Resolve(ctx context.Context, q weather.LocationQuery) (weather.Place, error) {
	if err := ctx.Err(); err != nil {
		return weather.Place{}, err
	}
	name := strings.TrimSpace(q.Name)
	if name == "" {
		return weather.Place{}, fmt.Errorf("%w: empty name", weather.ErrLocationNotFound)
	}

	loc, err := g.geocode(geocoder.Address{City: name, Country: strings.TrimSpace(q.Country)})
	if err != nil {
		if common.ContainsAnyFold(err.Error(), "ZERO_RESULTS", "no results") {
			return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, q.String())
		}
		return weather.Place{}, fmt.Errorf("google geocoding: %w", err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return weather.Place{}, fmt.Errorf("%w: %q", weather.ErrLocationNotFound, q.String())
	}

	return weather.Place{
		Name:      name,
		Country:   strings.TrimSpace(q.Country),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  "auto",
	}, nil
}
