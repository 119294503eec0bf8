package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name      string
		from      models.Location
		to        models.Location
		expected  float64
		tolerance float64
	}{
		{
			name:      "Same point",
			from:      models.Location{Latitude: 29.3759, Longitude: 47.9774},
			to:        models.Location{Latitude: 29.3759, Longitude: 47.9774},
			expected:  0.0,
			tolerance: 0.001,
		},
		{
			name:      "Kuwait City to Salmiya",
			from:      models.Location{Latitude: 29.3759, Longitude: 47.9774},
			to:        models.Location{Latitude: 29.3339, Longitude: 48.0478},
			expected:  8.2,
			tolerance: 0.5,
		},
		{
			name:      "Cross equator, 2 degrees latitude",
			from:      models.Location{Latitude: -1.0, Longitude: 100.0},
			to:        models.Location{Latitude: 1.0, Longitude: 100.0},
			expected:  222.4,
			tolerance: 5.0,
		},
		{
			name:      "Cross 180th meridian",
			from:      models.Location{Latitude: 0.0, Longitude: 179.0},
			to:        models.Location{Latitude: 0.0, Longitude: -179.0},
			expected:  222.4,
			tolerance: 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.from, tt.to)
			assert.InDelta(t, tt.expected, got, tt.tolerance)
		})
	}
}

func TestDistanceKmSymmetric(t *testing.T) {
	a := models.Location{Latitude: 29.3759, Longitude: 47.9774}
	b := models.Location{Latitude: 29.2658, Longitude: 47.9315}

	assert.InDelta(t, DistanceKm(a, b), DistanceKm(b, a), 1e-9)
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{name: "Rounds down", in: 19.6039, expected: 19.60},
		{name: "Rounds up", in: 19.605, expected: 19.61},
		{name: "Already two decimals", in: 5.25, expected: 5.25},
		{name: "Zero", in: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round2(tt.in))
		})
	}
}

func TestEncodeDecodeLocation(t *testing.T) {
	loc := models.Location{Latitude: 29.3759, Longitude: 47.9774}

	hash := EncodeLocation(loc, 9)
	assert.Len(t, hash, 9)

	lat, lon := DecodeGeohash(hash)
	assert.InDelta(t, loc.Latitude, lat, 0.001)
	assert.InDelta(t, loc.Longitude, lon, 0.001)
}

func TestGeohashNeighbors(t *testing.T) {
	hash := EncodeLocation(models.Location{Latitude: 29.3759, Longitude: 47.9774}, 6)
	neighbors := GeohashNeighbors(hash)
	assert.Len(t, neighbors, 8)
	assert.NotContains(t, neighbors, hash)
}
