package utils

import (
	"math"

	"github.com/mmcloughlin/geohash"

	"github.com/mishwarapp/mishwar/internal/pkg/models"
)

// Earth's mean radius in kilometers, used by the haversine formula.
const earthRadiusKm = 6371.0

// DistanceKm calculates the great-circle distance between two locations
// in kilometers using the Haversine formula.
func DistanceKm(from, to models.Location) float64 {
	lat1 := from.Latitude * math.Pi / 180.0
	lon1 := from.Longitude * math.Pi / 180.0
	lat2 := to.Latitude * math.Pi / 180.0
	lon2 := to.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Round2 rounds a value to two decimal places, the precision used for
// fares and distances in API responses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// EncodeLocation converts a location to a geohash string
func EncodeLocation(location models.Location, precision uint) string {
	return geohash.EncodeWithPrecision(location.Latitude, location.Longitude, precision)
}

// DecodeGeohash converts a geohash string to latitude and longitude
func DecodeGeohash(hash string) (latitude, longitude float64) {
	return geohash.Decode(hash)
}

// GeohashNeighbors returns the neighboring geohashes of a given geohash
func GeohashNeighbors(hash string) []string {
	return geohash.Neighbors(hash)
}
