// Package analysis derives ride analytics from a track: total distance,
// detected climbs and an estimated ride time.
//
// Everything here is a pure function of its inputs. Calls share no state and
// may run concurrently for different tracks.
package analysis

import (
	"github.com/sstent/ridecoach/internal/geo"
	"github.com/sstent/ridecoach/internal/models"
	"github.com/sstent/ridecoach/internal/parser"
)

// Thresholds tunes climb detection and the ride time model. Fields at zero
// or below take the defaults.
type Thresholds = models.Thresholds

// Analyze parses a raw GPX or FIT payload and analyses it. Malformed payloads
// fail with a *parser.ParseError; a valid payload with fewer than two points
// yields a zero-valued report.
func Analyze(data []byte, ids models.Identifiers, th Thresholds) (*models.AnalysisReport, error) {
	track, err := parser.ParseTrack(data)
	if err != nil {
		return nil, err
	}
	return AnalyzeTrack(track, ids, th), nil
}

// AnalyzeTrack runs climb detection and the ride time model over a loaded track.
func AnalyzeTrack(track models.Track, ids models.Identifiers, th Thresholds) *models.AnalysisReport {
	climbs := DetectClimbs(track.Points, th)
	return Summarize(track, climbs, ids, th)
}

// Summarize builds a report for a track whose climbs are already known, as
// when a stored analysis is read back.
func Summarize(track models.Track, climbs []models.Climb, ids models.Identifiers, th Thresholds) *models.AnalysisReport {
	owned := make([]models.Climb, len(climbs))
	copy(owned, climbs)

	return &models.AnalysisReport{
		Filename:                 ids.Filename,
		UserID:                   ids.UserID,
		UploadedAt:               ids.UploadedAt,
		PointCount:               track.Len(),
		TotalDistanceKm:          geo.CumulativeDistance(track.Points) / 1000,
		EstimatedRideTimeMinutes: EstimateRideTime(track.Points, owned, th),
		ClimbCount:               len(owned),
		Climbs:                   owned,
	}
}
