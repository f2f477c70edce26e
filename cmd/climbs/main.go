package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/sstent/ridecoach/internal/analysis"
	"github.com/sstent/ridecoach/internal/config"
	"github.com/sstent/ridecoach/internal/models"
)

func main() {
	var (
		userID = flag.Int64("user", 0, "User id echoed in the reports")
		pretty = flag.Bool("pretty", false, "Indent JSON output")
	)

	flag.Usage = func() {
		fmt.Printf("climbs - detect climbs and estimate ride time for GPX/FIT tracks\n\n")
		fmt.Printf("usage: climbs [options] file.gpx [file.fit ...]\n\n")
		fmt.Printf("thresholds can be overridden with CLIMB_GRADIENT_THRESHOLD, MIN_CLIMB_DISTANCE_METERS, ...\n\n")
		fmt.Printf("options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	thresholds := cfg.Thresholds()

	reports, failed := analyzeFiles(flag.Args(), *userID, thresholds, os.Stderr)

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reports); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// analyzeFiles analyses every path, reporting failures to errOut. A progress
// bar is drawn on errOut for batches.
func analyzeFiles(paths []string, userID int64, th models.Thresholds, errOut io.Writer) ([]*models.AnalysisReport, int) {
	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(errOut),
			progressbar.OptionSetDescription("Analysing"),
			progressbar.OptionClearOnFinish(),
		)
	}

	reports := make([]*models.AnalysisReport, 0, len(paths))
	failed := 0
	for _, path := range paths {
		report, err := analyzeFile(path, userID, th)
		if err != nil {
			fmt.Fprintf(errOut, "Error analysing %s: %v\n", path, err)
			failed++
		} else {
			reports = append(reports, report)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return reports, failed
}

func analyzeFile(path string, userID int64, th models.Thresholds) (*models.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ids := models.Identifiers{
		Filename:   filepath.Base(path),
		UserID:     userID,
		UploadedAt: time.Now().UTC(),
	}
	return analysis.Analyze(data, ids, th)
}
