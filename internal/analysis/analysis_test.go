package analysis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"

	"github.com/sstent/ridecoach/internal/geo"
	"github.com/sstent/ridecoach/internal/models"
	"github.com/sstent/ridecoach/internal/parser"
)

const noElevation = math.MaxFloat64

// meridianTrack lays points out northwards along one meridian, spacing
// meters apart. An elevation of noElevation produces a point without one.
func meridianTrack(spacing float64, elevations ...float64) []models.Waypoint {
	step := spacing / geo.EarthRadius * 180 / math.Pi
	points := make([]models.Waypoint, len(elevations))
	for i, ele := range elevations {
		lat := 46.0 + float64(i)*step
		if ele == noElevation {
			points[i] = models.NewWaypoint(lat, 7.0)
			continue
		}
		points[i] = models.NewWaypointWithElevation(lat, 7.0, ele)
	}
	return points
}

func toGPX(points []models.Waypoint) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><gpx version="1.1"><trk><trkseg>`)
	for _, p := range points {
		if p.HasElevation {
			fmt.Fprintf(&b, `<trkpt lat="%.10f" lon="%.10f"><ele>%g</ele></trkpt>`, p.Lat, p.Lon, p.Elevation)
		} else {
			fmt.Fprintf(&b, `<trkpt lat="%.10f" lon="%.10f"></trkpt>`, p.Lat, p.Lon)
		}
	}
	b.WriteString(`</trkseg></trk></gpx>`)
	return b.String()
}

// toFIT encodes points as a FIT activity whose records carry only
// enhanced_altitude, as recent head units write them.
func toFIT(t *testing.T, points []models.Waypoint) []byte {
	t.Helper()

	file, err := fit.NewFile(fit.FileTypeActivity, fit.NewHeader(fit.V20, false))
	require.NoError(t, err)
	act, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, p := range points {
		rec := fit.NewRecordMsg()
		rec.Timestamp = start.Add(time.Duration(i) * time.Second)
		rec.PositionLat = fit.NewLatitudeDegrees(p.Lat)
		rec.PositionLong = fit.NewLongitudeDegrees(p.Lon)
		if p.HasElevation {
			rec.EnhancedAltitude = uint32(math.Round((p.Elevation + 500) * 5))
		}
		act.Records = append(act.Records, rec)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}

func TestConcreteClimbScenario(t *testing.T) {
	points := meridianTrack(50, 100, 110, 125, 140)

	climbs := DetectClimbs(points, Thresholds{})
	require.Len(t, climbs, 1)

	c := climbs[0]
	assert.Equal(t, 0, c.StartPointIndex)
	assert.Equal(t, 3, c.EndPointIndex)
	assert.InDelta(t, 150.0, c.DistanceMeters, 1e-6)
	assert.Equal(t, 40.0, c.ElevationGainMeters)
	assert.InDelta(t, 0.2667, c.AverageGradient, 1e-3)

	report := AnalyzeTrack(models.Track{Points: points}, models.Identifiers{Filename: "climb.gpx"}, Thresholds{})
	assert.InDelta(t, 0.15, report.TotalDistanceKm, 1e-9)
	assert.Equal(t, 1, report.ClimbCount)
	// 0.15 km at 8 km/h
	assert.Equal(t, 1.1, report.EstimatedRideTimeMinutes)
}

func TestClimbInclusiveBoundary(t *testing.T) {
	points := meridianTrack(100, 100, 110)
	d := geo.Distance(points[0], points[1])

	th := Thresholds{GradientThreshold: 10 / d, MinClimbDistance: d, MinClimbElevation: 10}
	climbs := DetectClimbs(points, th)
	require.Len(t, climbs, 1)
	assert.Equal(t, 0, climbs[0].StartPointIndex)
	assert.Equal(t, 1, climbs[0].EndPointIndex)
	assert.Equal(t, 10.0, climbs[0].ElevationGainMeters)
	assert.Equal(t, d, climbs[0].DistanceMeters)
}

func TestClimbTwoPointsDefaults(t *testing.T) {
	climbs := DetectClimbs(meridianTrack(120, 100, 110), Thresholds{})
	require.Len(t, climbs, 1)
	assert.Equal(t, 1, climbs[0].EndPointIndex)
}

func TestClimbBelowMinimumElevationIsDiscarded(t *testing.T) {
	points := meridianTrack(50, 100, 103.3, 106.6, 109.9)
	assert.Empty(t, DetectClimbs(points, Thresholds{}))
}

func TestClimbBelowMinimumDistanceIsDiscarded(t *testing.T) {
	// steep but only 60 m long
	points := meridianTrack(30, 100, 106, 112, 112)
	assert.Empty(t, DetectClimbs(points, Thresholds{}))
}

func TestClimbClosedAtEndOfTrack(t *testing.T) {
	elevations := make([]float64, 10)
	for i := range elevations {
		elevations[i] = 200 + float64(i)*2
	}
	climbs := DetectClimbs(meridianTrack(30, elevations...), Thresholds{})
	require.Len(t, climbs, 1)
	assert.Equal(t, 0, climbs[0].StartPointIndex)
	assert.Equal(t, 9, climbs[0].EndPointIndex)
	assert.Equal(t, 18.0, climbs[0].ElevationGainMeters)
}

func TestClimbClosedAtLastElevatedPoint(t *testing.T) {
	points := meridianTrack(60, 100, 110, 120, 130, noElevation)
	climbs := DetectClimbs(points, Thresholds{})
	require.Len(t, climbs, 1)
	assert.Equal(t, 3, climbs[0].EndPointIndex)
	assert.Equal(t, 30.0, climbs[0].ElevationGainMeters)
	assert.InDelta(t, 180.0, climbs[0].DistanceMeters, 1e-6)
}

func TestClimbEndsOnShallowSegment(t *testing.T) {
	points := meridianTrack(50, 100, 110, 120, 130, 130, 120)
	climbs := DetectClimbs(points, Thresholds{})
	require.Len(t, climbs, 1)

	c := climbs[0]
	assert.Equal(t, 0, c.StartPointIndex)
	assert.Equal(t, 3, c.EndPointIndex)
	assert.Equal(t, 30.0, c.ElevationGainMeters)
	assert.InDelta(t, 150.0, c.DistanceMeters, 1e-6)

	// four segments touch the climb at 8 km/h, the last one is flat
	assert.Equal(t, 1.6, EstimateRideTime(points, climbs, Thresholds{}))
}

func TestClimbMissingElevationDoesNotBreakClimb(t *testing.T) {
	points := meridianTrack(60, 100, 110, noElevation, 130, 140)
	climbs := DetectClimbs(points, Thresholds{})
	require.Len(t, climbs, 1)

	c := climbs[0]
	assert.Equal(t, 0, c.StartPointIndex)
	assert.Equal(t, 4, c.EndPointIndex)
	assert.Equal(t, 40.0, c.ElevationGainMeters)
	// the two skipped pairs contribute no distance
	assert.InDelta(t, 120.0, c.DistanceMeters, 1e-6)
}

func TestMultipleClimbsDoNotOverlap(t *testing.T) {
	points := meridianTrack(50,
		100, 110, 120, 130, // climb one
		130, 130, 130, // flat
		140, 150, 160, // climb two
	)
	climbs := DetectClimbs(points, Thresholds{})
	require.Len(t, climbs, 2)

	assert.Equal(t, 0, climbs[0].StartPointIndex)
	assert.Equal(t, 3, climbs[0].EndPointIndex)
	assert.Equal(t, 6, climbs[1].StartPointIndex)
	assert.Equal(t, 9, climbs[1].EndPointIndex)
	assert.Less(t, climbs[0].EndPointIndex, climbs[1].StartPointIndex)
}

func TestClimbThresholdOverride(t *testing.T) {
	points := meridianTrack(50, 100, 110, 125, 140)
	assert.Empty(t, DetectClimbs(points, Thresholds{GradientThreshold: 0.5}))
	assert.Empty(t, DetectClimbs(points, Thresholds{MinClimbElevation: 50}))
}

func TestDetectClimbsDegenerate(t *testing.T) {
	assert.Empty(t, DetectClimbs(nil, Thresholds{}))
	assert.Empty(t, DetectClimbs(meridianTrack(50, 100), Thresholds{}))
	assert.Empty(t, DetectClimbs(meridianTrack(50, noElevation, noElevation, noElevation), Thresholds{}))
}

func TestFlatTrackUsesFlatSpeed(t *testing.T) {
	points := meridianTrack(250, 300, 300, 300, 300, 300)
	report := AnalyzeTrack(models.Track{Points: points}, models.Identifiers{}, Thresholds{})

	assert.Equal(t, 0, report.ClimbCount)
	assert.Empty(t, report.Climbs)
	assert.InDelta(t, 1.0, report.TotalDistanceKm, 1e-9)
	// 1 km at 25 km/h
	assert.Equal(t, 2.4, report.EstimatedRideTimeMinutes)
}

func TestEstimateRideTimeClimbSpeed(t *testing.T) {
	points := meridianTrack(500, 0, 0, 0)
	climbs := []models.Climb{{StartPointIndex: 0, EndPointIndex: 1, AverageGradient: 0.04}}

	// first segment at 15 km/h, second touches index 1 and also counts
	assert.Equal(t, 4.0, EstimateRideTime(points, climbs, Thresholds{}))
}

func TestEstimateRideTimeFirstMatchingClimbWins(t *testing.T) {
	points := meridianTrack(400, 0, 0, 0)
	climbs := []models.Climb{
		{StartPointIndex: 0, EndPointIndex: 0, AverageGradient: 0.1},
		{StartPointIndex: 0, EndPointIndex: 2, AverageGradient: 0.03},
	}

	// segment 0-1 matches both, the steep one listed first wins; 1-2 only the second
	assert.Equal(t, 4.6, EstimateRideTime(points, climbs, Thresholds{}))
}

func TestEstimateRideTimeDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, EstimateRideTime(nil, nil, Thresholds{}))
	assert.Equal(t, 0.0, EstimateRideTime(meridianTrack(50, 1), nil, Thresholds{}))
}

func TestRoundTenth(t *testing.T) {
	assert.Equal(t, 1.3, roundTenth(1.25))
	assert.Equal(t, 1.2, roundTenth(1.2499))
	assert.Equal(t, 0.0, roundTenth(0.04))
	assert.Equal(t, 0.1, roundTenth(0.05))
}

func TestAnalyzeSingleWaypoint(t *testing.T) {
	payload := `<gpx><trk><trkseg><trkpt lat="46" lon="7"><ele>100</ele></trkpt></trkseg></trk></gpx>`
	report, err := Analyze([]byte(payload), models.Identifiers{Filename: "one.gpx"}, Thresholds{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.TotalDistanceKm)
	assert.Equal(t, 0.0, report.EstimatedRideTimeMinutes)
	assert.Equal(t, 0, report.ClimbCount)
	assert.NotNil(t, report.Climbs)
	assert.Equal(t, 1, report.PointCount)
}

func TestAnalyzeMalformed(t *testing.T) {
	report, err := Analyze([]byte("not xml at all"), models.Identifiers{}, Thresholds{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, parser.IsParseError(err))
}

func TestAnalyzeEchoesIdentifiers(t *testing.T) {
	uploaded := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)
	ids := models.Identifiers{Filename: "alpe.gpx", UserID: 42, UploadedAt: uploaded}

	report, err := Analyze([]byte(toGPX(meridianTrack(50, 100, 110, 125, 140))), ids, Thresholds{})
	require.NoError(t, err)

	assert.Equal(t, "alpe.gpx", report.Filename)
	assert.Equal(t, int64(42), report.UserID)
	assert.Equal(t, uploaded, report.UploadedAt)
	assert.Equal(t, 1, report.ClimbCount)
	assert.Equal(t, 4, report.PointCount)
}

func TestAnalyzeFITActivity(t *testing.T) {
	data := toFIT(t, meridianTrack(50, 100, 110, 125, 140))

	report, err := Analyze(data, models.Identifiers{Filename: "ride.fit"}, Thresholds{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.PointCount)
	assert.Equal(t, 1, report.ClimbCount)
	require.Len(t, report.Climbs, 1)
	assert.Equal(t, 0, report.Climbs[0].StartPointIndex)
	assert.Equal(t, 3, report.Climbs[0].EndPointIndex)
	assert.InDelta(t, 40.0, report.Climbs[0].ElevationGainMeters, 1e-9)
	assert.InDelta(t, 0.15, report.TotalDistanceKm, 1e-4)
}

func TestSummarizeCopiesClimbs(t *testing.T) {
	points := meridianTrack(50, 100, 110, 125, 140)
	climbs := DetectClimbs(points, Thresholds{})

	report := Summarize(models.Track{Points: points}, climbs, models.Identifiers{}, Thresholds{})
	climbs[0].EndPointIndex = 99
	assert.Equal(t, 3, report.Climbs[0].EndPointIndex)
}
