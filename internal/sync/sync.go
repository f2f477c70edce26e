package sync

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	gosync "sync"
	"time"

	"github.com/sstent/ridecoach/internal/analysis"
	"github.com/sstent/ridecoach/internal/database"
	"github.com/sstent/ridecoach/internal/models"
	"github.com/sstent/ridecoach/internal/parser"
)

// SyncService ingests track files: it analyses them and stores the results.
type SyncService struct {
	db         database.Database
	thresholds models.Thresholds
	inboxDir   string
	userID     int64
	now        func() time.Time

	// serialises inbox scans between cron and the API
	syncMu gosync.Mutex
}

func NewSyncService(db database.Database, thresholds models.Thresholds, inboxDir string, userID int64) *SyncService {
	return &SyncService{
		db:         db,
		thresholds: thresholds.WithDefaults(),
		inboxDir:   inboxDir,
		userID:     userID,
		now:        time.Now,
	}
}

func (s *SyncService) Thresholds() models.Thresholds { return s.thresholds }

// ImportFile analyses data and persists it for userID. Malformed payloads
// come back as *parser.ParseError and nothing is stored.
func (s *SyncService) ImportFile(filename string, userID int64, data []byte) (*models.AnalysisReport, error) {
	ids := models.Identifiers{
		Filename:   filename,
		UserID:     userID,
		UploadedAt: s.now().UTC(),
	}

	report, err := analysis.Analyze(data, ids, s.thresholds)
	if err != nil {
		return nil, err
	}

	fileType := parser.DetectFileTypeFromData(data)
	if fileType == parser.FileTypeUnknown {
		fileType = parser.FileTypeGPX
	}

	file := &database.GpxFile{
		Filename:                 filename,
		FileType:                 string(fileType),
		Content:                  data,
		UserID:                   userID,
		PointCount:               report.PointCount,
		TotalDistanceKm:          report.TotalDistanceKm,
		EstimatedRideTimeMinutes: report.EstimatedRideTimeMinutes,
		ClimbCount:               report.ClimbCount,
		CreatedAt:                ids.UploadedAt,
	}
	if err := s.db.SaveAnalysis(file, report.Climbs); err != nil {
		return nil, fmt.Errorf("failed to save analysis: %w", err)
	}

	report.ID = file.ID
	log.Printf("Imported %s for user=%d id=%d climbs=%d distance=%.2fkm",
		filename, userID, file.ID, report.ClimbCount, report.TotalDistanceKm)
	return report, nil
}

// GetAnalysis rebuilds the report of a stored file. Distance and time are
// re-derived from the stored content; content that no longer yields points
// produces zero values instead of an error.
func (s *SyncService) GetAnalysis(id int64) (*models.AnalysisReport, error) {
	file, err := s.db.GetGpxFile(id)
	if err != nil {
		return nil, err
	}

	climbs, err := s.db.GetClimbs(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load climbs: %w", err)
	}

	track, err := parser.ParseTrack(file.Content)
	if err != nil {
		log.Printf("Stored content of gpx file %d no longer parses: %v", id, err)
		track = models.Track{}
	}

	ids := models.Identifiers{Filename: file.Filename, UserID: file.UserID, UploadedAt: file.CreatedAt}
	report := analysis.Summarize(track, climbs, ids, s.thresholds)
	report.ID = file.ID
	return report, nil
}

func (s *SyncService) ListFiles(userID int64) ([]database.GpxFile, error) {
	return s.db.ListGpxFilesByUser(userID)
}

func (s *SyncService) DeleteFile(id int64) error {
	return s.db.DeleteGpxFile(id)
}

func (s *SyncService) Stats() (*database.Stats, error) {
	return s.db.GetStats()
}

// Sync imports every .gpx and .fit file in the inbox that has not been
// imported for the sync user yet. A failing file is logged and skipped.
// Overlapping calls run one after the other.
func (s *SyncService) Sync(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	startTime := s.now()
	log.Printf("Starting sync of %s", s.inboxDir)
	defer func() {
		log.Printf("Sync completed in %s", time.Since(startTime))
	}()

	files, err := s.inboxFiles()
	if err != nil {
		return err
	}
	log.Printf("Found %d track files in inbox", len(files))

	for i, path := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := filepath.Base(path)
		log.Printf("[%d/%d] Processing %s...", i+1, len(files), name)
		if err := s.syncFile(path, name); err != nil {
			log.Printf("Error syncing %s: %v", name, err)
		}
	}

	return nil
}

func (s *SyncService) syncFile(path, name string) error {
	exists, err := s.db.FileExists(name, s.userID)
	if err != nil {
		return fmt.Errorf("failed to check file: %w", err)
	}
	if exists {
		log.Printf("%s already imported", name)
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	_, err = s.ImportFile(name, s.userID, data)
	return err
}

func (s *SyncService) inboxFiles() ([]string, error) {
	if err := os.MkdirAll(s.inboxDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}

	entries, err := os.ReadDir(s.inboxDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch parser.DetectFileTypeFromName(e.Name()) {
		case parser.FileTypeGPX, parser.FileTypeFIT:
			files = append(files, filepath.Join(s.inboxDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
