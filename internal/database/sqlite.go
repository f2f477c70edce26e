// internal/database/sqlite.go
package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sstent/ridecoach/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

var _ Database = (*SQLiteDB)(nil)

func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	sqlite := &SQLiteDB{db: db}
	if err := sqlite.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sqlite, nil
}

func (s *SQLiteDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS gpx_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL,
		file_type TEXT NOT NULL,
		content BLOB NOT NULL,
		user_id INTEGER NOT NULL,
		point_count INTEGER NOT NULL DEFAULT 0,
		total_distance_km REAL NOT NULL DEFAULT 0,
		estimated_ride_time_minutes REAL NOT NULL DEFAULT 0,
		climb_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_gpx_files_user_id ON gpx_files(user_id);
	CREATE INDEX IF NOT EXISTS idx_gpx_files_filename ON gpx_files(filename);

	CREATE TABLE IF NOT EXISTS climbs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		gpx_file_id INTEGER NOT NULL REFERENCES gpx_files(id) ON DELETE CASCADE,
		distance_meters REAL NOT NULL,
		elevation_gain_meters REAL NOT NULL,
		average_gradient REAL NOT NULL,
		start_point_index INTEGER NOT NULL,
		end_point_index INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_climbs_gpx_file_id ON climbs(gpx_file_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveAnalysis inserts the file and its climbs in one transaction and sets
// file.ID on success.
func (s *SQLiteDB) SaveAnalysis(file *GpxFile, climbs []models.Climb) error {
	now := time.Now().UTC()
	if file.CreatedAt.IsZero() {
		file.CreatedAt = now
	}
	file.UpdatedAt = now
	if file.Content == nil {
		file.Content = []byte{}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
	INSERT INTO gpx_files (
		filename, file_type, content, user_id, point_count,
		total_distance_km, estimated_ride_time_minutes, climb_count,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.Filename, file.FileType, file.Content, file.UserID, file.PointCount,
		file.TotalDistanceKm, file.EstimatedRideTimeMinutes, file.ClimbCount,
		file.CreatedAt, file.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert gpx file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
	INSERT INTO climbs (
		gpx_file_id, distance_meters, elevation_gain_meters,
		average_gradient, start_point_index, end_point_index
	) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range climbs {
		if _, err := stmt.Exec(id, c.DistanceMeters, c.ElevationGainMeters,
			c.AverageGradient, c.StartPointIndex, c.EndPointIndex); err != nil {
			return fmt.Errorf("failed to insert climb: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	file.ID = id
	return nil
}

func (s *SQLiteDB) GetGpxFile(id int64) (*GpxFile, error) {
	query := `
	SELECT id, filename, file_type, content, user_id, point_count,
	       total_distance_km, estimated_ride_time_minutes, climb_count,
	       created_at, updated_at
	FROM gpx_files
	WHERE id = ?`

	var f GpxFile
	err := s.db.QueryRow(query, id).Scan(
		&f.ID, &f.Filename, &f.FileType, &f.Content, &f.UserID, &f.PointCount,
		&f.TotalDistanceKm, &f.EstimatedRideTimeMinutes, &f.ClimbCount,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &f, nil
}

// GetClimbs returns a file's climbs in track order.
func (s *SQLiteDB) GetClimbs(gpxFileID int64) ([]models.Climb, error) {
	query := `
	SELECT distance_meters, elevation_gain_meters, average_gradient,
	       start_point_index, end_point_index
	FROM climbs
	WHERE gpx_file_id = ?
	ORDER BY start_point_index, id`

	rows, err := s.db.Query(query, gpxFileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	climbs := []models.Climb{}
	for rows.Next() {
		var c models.Climb
		if err := rows.Scan(&c.DistanceMeters, &c.ElevationGainMeters, &c.AverageGradient,
			&c.StartPointIndex, &c.EndPointIndex); err != nil {
			return nil, err
		}
		climbs = append(climbs, c)
	}

	return climbs, rows.Err()
}

// ListGpxFilesByUser returns a user's files newest first, without content.
func (s *SQLiteDB) ListGpxFilesByUser(userID int64) ([]GpxFile, error) {
	query := `
	SELECT id, filename, file_type, user_id, point_count,
	       total_distance_km, estimated_ride_time_minutes, climb_count,
	       created_at, updated_at
	FROM gpx_files
	WHERE user_id = ?
	ORDER BY created_at DESC, id DESC`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []GpxFile{}
	for rows.Next() {
		var f GpxFile
		err := rows.Scan(
			&f.ID, &f.Filename, &f.FileType, &f.UserID, &f.PointCount,
			&f.TotalDistanceKm, &f.EstimatedRideTimeMinutes, &f.ClimbCount,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

func (s *SQLiteDB) FileExists(filename string, userID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM gpx_files WHERE filename = ? AND user_id = ?`
	var count int
	if err := s.db.QueryRow(query, filename, userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteGpxFile removes a file; its climbs go with it via ON DELETE CASCADE.
func (s *SQLiteDB) DeleteGpxFile(id int64) error {
	res, err := s.db.Exec(`DELETE FROM gpx_files WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteDB) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(total_distance_km), 0) FROM gpx_files`).
		Scan(&stats.Files, &stats.TotalDistanceKm)
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM climbs`).Scan(&stats.Climbs); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
