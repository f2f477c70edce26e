// internal/database/models.go
package database

import (
	"errors"
	"time"

	"github.com/sstent/ridecoach/internal/models"
)

var ErrNotFound = errors.New("gpx file not found")

// GpxFile is an uploaded track together with its analysis summary.
type GpxFile struct {
	ID                       int64     `json:"id"`
	Filename                 string    `json:"filename"`
	FileType                 string    `json:"file_type"`
	Content                  []byte    `json:"-"`
	UserID                   int64     `json:"user_id"`
	PointCount               int       `json:"point_count"`
	TotalDistanceKm          float64   `json:"total_distance_km"`
	EstimatedRideTimeMinutes float64   `json:"estimated_ride_time_minutes"`
	ClimbCount               int       `json:"climb_count"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

type Stats struct {
	Files           int     `json:"files"`
	Climbs          int     `json:"climbs"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

// Database interface
type Database interface {
	SaveAnalysis(file *GpxFile, climbs []models.Climb) error
	GetGpxFile(id int64) (*GpxFile, error)
	GetClimbs(gpxFileID int64) ([]models.Climb, error)
	ListGpxFilesByUser(userID int64) ([]GpxFile, error)
	FileExists(filename string, userID int64) (bool, error)
	DeleteGpxFile(id int64) error

	GetStats() (*Stats, error)

	Close() error
}
