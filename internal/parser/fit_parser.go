package parser

import (
	"bytes"
	"math"

	"github.com/tormoder/fit"

	"github.com/sstent/ridecoach/internal/models"
)

// FITParser loads the record stream of a FIT activity as a track.
type FITParser struct{}

func NewFITParser() *FITParser {
	return &FITParser{}
}

func (p *FITParser) Parse(data []byte) (models.Track, error) {
	fitFile, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return models.Track{}, &ParseError{Format: FileTypeFIT, Msg: "failed to decode FIT file", Err: err}
	}

	activity, err := fitFile.Activity()
	if err != nil {
		return models.Track{}, &ParseError{Format: FileTypeFIT, Msg: "not an activity file", Err: err}
	}

	return recordsToTrack(activity.Records), nil
}

// recordsToTrack keeps records carrying a position. Records without one are
// sensor-only samples and have no place on the map.
func recordsToTrack(records []*fit.RecordMsg) models.Track {
	points := make([]models.Waypoint, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.PositionLat.Invalid() || rec.PositionLong.Invalid() {
			continue
		}

		lat := rec.PositionLat.Degrees()
		lon := rec.PositionLong.Degrees()

		if alt, ok := recordAltitude(rec); ok {
			points = append(points, models.NewWaypointWithElevation(lat, lon, alt))
		} else {
			points = append(points, models.NewWaypoint(lat, lon))
		}
	}
	return models.Track{Points: points}
}

// recordAltitude prefers enhanced_altitude, which newer devices write while
// leaving the 16-bit altitude field invalid.
func recordAltitude(rec *fit.RecordMsg) (float64, bool) {
	if alt := rec.GetEnhancedAltitudeScaled(); !math.IsNaN(alt) {
		return alt, true
	}
	if alt := rec.GetAltitudeScaled(); !math.IsNaN(alt) {
		return alt, true
	}
	return 0, false
}
