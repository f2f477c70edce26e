package models

import "time"

// Waypoint is a single recorded position along a track.
type Waypoint struct {
	Lat          float64 // degrees, -90..90
	Lon          float64 // degrees, -180..180
	Elevation    float64 // meters, only meaningful when HasElevation is set
	HasElevation bool
}

// NewWaypoint returns a waypoint without elevation data.
func NewWaypoint(lat, lon float64) Waypoint {
	return Waypoint{Lat: lat, Lon: lon}
}

// NewWaypointWithElevation returns a waypoint carrying an elevation in meters.
func NewWaypointWithElevation(lat, lon, ele float64) Waypoint {
	return Waypoint{Lat: lat, Lon: lon, Elevation: ele, HasElevation: true}
}

// Track is the ordered sequence of waypoints for one ride.
type Track struct {
	Points []Waypoint
}

func (t Track) Len() int { return len(t.Points) }

// IsEmpty reports whether the track has too few points to measure anything.
func (t Track) IsEmpty() bool { return len(t.Points) < 2 }

// Climb is a sustained uphill section, referenced into its track by index.
type Climb struct {
	StartPointIndex     int     `json:"start_point_index"`
	EndPointIndex       int     `json:"end_point_index"`
	DistanceMeters      float64 `json:"distance_meters"`
	ElevationGainMeters float64 `json:"elevation_gain_meters"`
	AverageGradient     float64 `json:"average_gradient"`
}

// Identifiers are echoed back in the report and never interpreted by the analysis.
type Identifiers struct {
	Filename   string
	UserID     int64
	UploadedAt time.Time
}

// AnalysisReport is the aggregate result of analysing one track.
type AnalysisReport struct {
	ID                       int64     `json:"gpx_file_id,omitempty"`
	Filename                 string    `json:"filename"`
	UserID                   int64     `json:"user_id"`
	UploadedAt               time.Time `json:"uploaded_at"`
	PointCount               int       `json:"point_count"`
	TotalDistanceKm          float64   `json:"total_distance_km"`
	EstimatedRideTimeMinutes float64   `json:"estimated_ride_time_minutes"`
	ClimbCount               int       `json:"climb_count"`
	Climbs                   []Climb   `json:"climbs"`
}
