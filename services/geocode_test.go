package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseGeocodeSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.NotEmpty(t, r.URL.Query().Get("lat"))
		assert.NotEmpty(t, r.URL.Query().Get("lon"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name": "Main Street, Springfield"}`))
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	address := geocoder.ReverseGeocode(context.Background(), 40.7128, -74.006)
	assert.Equal(t, "Main Street, Springfield", address)
}

func TestReverseGeocodeFallsBackToCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	address := geocoder.ReverseGeocode(context.Background(), 40.7128, -74.006)
	assert.Equal(t, "40.712800, -74.006000", address)
}

func TestReverseGeocodeEmptyDisplayName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	geocoder := NewGeocoder(server.URL)
	address := geocoder.ReverseGeocode(context.Background(), 1.5, 2.5)
	assert.Equal(t, "1.500000, 2.500000", address)
}
