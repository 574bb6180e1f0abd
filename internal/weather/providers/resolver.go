package providers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

// NewResolver returns the geocoder named by backend: "openmeteo" (the
// default when empty) or "google".
func NewResolver(backend string, client *http.Client, language, googleAPIKey string, logger *slog.Logger) (weather.Resolver, error) {
	switch backend {
	case "", "openmeteo":
		return NewOpenMeteoGeocoder(client, language, logger), nil
	case "google":
		if googleAPIKey == "" {
			return nil, fmt.Errorf("google geocoder requires an API key")
		}
		return NewGoogleGeocoder(googleAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown geocoder %q", backend)
	}
}
