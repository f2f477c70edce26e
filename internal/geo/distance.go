// Package geo measures horizontal great-circle distances between waypoints.
// Elevation is ignored.
package geo

import (
	"math"

	"github.com/sstent/ridecoach/internal/models"
)

// EarthRadius is the mean Earth radius in meters.
const EarthRadius = 6371000

// Distance returns the haversine distance between a and b in meters.
func Distance(a, b models.Waypoint) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Haversine returns the great-circle distance in meters between two
// latitude/longitude pairs given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	// rounding can push h a hair outside [0,1] near antipodes
	h = math.Max(0, math.Min(1, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

// CumulativeDistance sums the distances between consecutive points.
func CumulativeDistance(points []models.Waypoint) float64 {
	if len(points) < 2 {
		return 0
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1], points[i])
	}
	return total
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
