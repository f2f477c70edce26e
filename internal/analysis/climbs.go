package analysis

import (
	"github.com/sstent/ridecoach/internal/geo"
	"github.com/sstent/ridecoach/internal/models"
)

// candidate is an open climb. A nil *candidate means "not climbing".
type candidate struct {
	startIndex     int
	startElevation float64
	distance       float64

	// last waypoint with elevation that ended a climbing pair
	lastIndex     int
	lastElevation float64
}

// DetectClimbs scans consecutive waypoint pairs once and returns the
// sustained uphill sections that clear the thresholds. Pairs where either
// point lacks elevation are skipped and never open or close a climb.
func DetectClimbs(points []models.Waypoint, th Thresholds) []models.Climb {
	th = th.WithDefaults()
	climbs := []models.Climb{}

	var open *candidate
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		if !prev.HasElevation || !curr.HasElevation {
			continue
		}

		distance := geo.Distance(prev, curr)
		gradient := 0.0
		if distance > 0 {
			gradient = (curr.Elevation - prev.Elevation) / distance
		}

		if gradient >= th.GradientThreshold {
			if open == nil {
				open = &candidate{startIndex: i - 1, startElevation: prev.Elevation}
			}
			open.distance += distance
			open.lastIndex = i
			open.lastElevation = curr.Elevation
			continue
		}

		if open != nil {
			if c, ok := open.close(i-1, prev.Elevation, th); ok {
				climbs = append(climbs, c)
			}
			open = nil
		}
	}

	if open != nil {
		endIndex, endElevation := open.lastIndex, open.lastElevation
		if last := len(points) - 1; points[last].HasElevation {
			endIndex, endElevation = last, points[last].Elevation
		}
		if c, ok := open.close(endIndex, endElevation, th); ok {
			climbs = append(climbs, c)
		}
	}

	return climbs
}

func (c *candidate) close(endIndex int, endElevation float64, th Thresholds) (models.Climb, bool) {
	gain := endElevation - c.startElevation
	if gain < th.MinClimbElevation || c.distance < th.MinClimbDistance {
		return models.Climb{}, false
	}

	avg := 0.0
	if c.distance > 0 {
		avg = gain / c.distance
	}

	return models.Climb{
		StartPointIndex:     c.startIndex,
		EndPointIndex:       endIndex,
		DistanceMeters:      c.distance,
		ElevationGainMeters: gain,
		AverageGradient:     avg,
	}, true
}
