package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sstent/ridecoach/internal/models"
)

// gpxDoc maps only the subset of GPX the analysis consumes.
type gpxDoc struct {
	XMLName xml.Name   `xml:"gpx"`
	Tracks  []gpxTrack `xml:"trk"`
}

type gpxTrack struct {
	Name     string       `xml:"name"`
	Segments []gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat *string `xml:"lat,attr"`
	Lon *string `xml:"lon,attr"`
	Ele *string `xml:"ele"`
}

// GPXParser extracts track points from GPX 1.0/1.1 documents.
type GPXParser struct{}

func NewGPXParser() *GPXParser {
	return &GPXParser{}
}

// Parse concatenates the points of every track and segment in file order.
func (p *GPXParser) Parse(data []byte) (models.Track, error) {
	var doc gpxDoc
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return models.Track{}, &ParseError{Format: FileTypeGPX, Msg: "invalid GPX document", Err: err}
	}

	var points []models.Waypoint
	for ti, track := range doc.Tracks {
		for si, segment := range track.Segments {
			for pi, pt := range segment.Points {
				wp, err := pt.waypoint()
				if err != nil {
					return models.Track{}, &ParseError{
						Format: FileTypeGPX,
						Msg:    fmt.Sprintf("track %d segment %d point %d", ti, si, pi),
						Err:    err,
					}
				}
				points = append(points, wp)
			}
		}
	}

	return models.Track{Points: points}, nil
}

func (pt gpxPoint) waypoint() (models.Waypoint, error) {
	if pt.Lat == nil || pt.Lon == nil {
		return models.Waypoint{}, fmt.Errorf("missing lat/lon attribute")
	}

	lat, err := parseCoordinate(*pt.Lat, 90)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("lat: %w", err)
	}
	lon, err := parseCoordinate(*pt.Lon, 180)
	if err != nil {
		return models.Waypoint{}, fmt.Errorf("lon: %w", err)
	}

	if pt.Ele == nil || strings.TrimSpace(*pt.Ele) == "" {
		return models.NewWaypoint(lat, lon), nil
	}

	ele, err := strconv.ParseFloat(strings.TrimSpace(*pt.Ele), 64)
	if err != nil || math.IsNaN(ele) || math.IsInf(ele, 0) {
		return models.Waypoint{}, fmt.Errorf("invalid elevation %q", *pt.Ele)
	}

	return models.NewWaypointWithElevation(lat, lon, ele), nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%q out of range", s)
	}
	return v, nil
}
