package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const defaultGeocoderURL = "https://nominatim.openstreetmap.org/reverse"

// Geocoder resolves coordinates to a locality string through an external
// reverse-geocoding service.
type Geocoder struct {
	client  *resty.Client
	baseURL string
}

type reverseGeocodeResponse struct {
	DisplayName string `json:"display_name"`
}

// NewGeocoder creates a geocoder against the given endpoint; an empty
// baseURL falls back to GEOCODER_URL or the public Nominatim endpoint.
func NewGeocoder(baseURL string) *Geocoder {
	if baseURL == "" {
		baseURL = os.Getenv("GEOCODER_URL")
	}
	if baseURL == "" {
		baseURL = defaultGeocoderURL
	}
	return &Geocoder{
		client:  resty.New().SetTimeout(10 * time.Second),
		baseURL: baseURL,
	}
}

// ReverseGeocode resolves (lat, lng) to a human-readable address. On any
// failure it falls back to the literal coordinate pair; it never returns an
// error to the caller.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	fallback := fmt.Sprintf("%.6f, %.6f", lat, lng)

	var result reverseGeocodeResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    fmt.Sprintf("%f", lat),
			"lon":    fmt.Sprintf("%f", lng),
			"format": "jsonv2",
		}).
		SetResult(&result).
		Get(g.baseURL)
	if err != nil {
		logrus.Warnf("Reverse geocoding failed: %v", err)
		return fallback
	}
	if resp.StatusCode() != 200 || result.DisplayName == "" {
		logrus.Warnf("Reverse geocoding returned status %d", resp.StatusCode())
		return fallback
	}

	return result.DisplayName
}
