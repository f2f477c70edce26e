package analysis

import (
	"math"

	"github.com/sstent/ridecoach/internal/geo"
	"github.com/sstent/ridecoach/internal/models"
)

// EstimateRideTime returns the expected ride duration in minutes, rounded
// half-up to one decimal. Each segment is ridden at the flat speed unless
// one of its endpoints lies inside a climb, in which case the first such
// climb's average gradient picks the climbing or steep speed.
func EstimateRideTime(points []models.Waypoint, climbs []models.Climb, th Thresholds) float64 {
	if len(points) < 2 {
		return 0
	}
	th = th.WithDefaults()

	var minutes float64
	for i := 1; i < len(points); i++ {
		km := geo.Distance(points[i-1], points[i]) / 1000
		minutes += km / segmentSpeed(i-1, i, climbs, th) * 60
	}

	return roundTenth(minutes)
}

func segmentSpeed(from, to int, climbs []models.Climb, th Thresholds) float64 {
	for _, c := range climbs {
		if !contains(c, from) && !contains(c, to) {
			continue
		}
		if c.AverageGradient >= th.SteepThreshold {
			return th.SteepSpeedKmh
		}
		return th.ClimbSpeedKmh
	}
	return th.FlatSpeedKmh
}

func contains(c models.Climb, idx int) bool {
	return idx >= c.StartPointIndex && idx <= c.EndPointIndex
}

func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
