// Package parser loads GPS tracks from GPX and FIT payloads.
package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/sstent/ridecoach/internal/models"
)

// ErrUnsupportedFormat is returned for payloads no parser can handle.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError reports a payload that is not valid track data at all.
// A valid payload without points is not a ParseError; it yields an empty Track.
type ParseError struct {
	Format FileType
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Msg, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Parser turns a raw payload into a flat, ordered Track.
type Parser interface {
	Parse(data []byte) (models.Track, error)
}

// ParseTrack detects the payload format and parses it. Anything that is not
// a FIT file is handed to the GPX parser so that garbage surfaces as a
// ParseError rather than as an unsupported-format error.
func ParseTrack(data []byte) (models.Track, error) {
	p, err := NewParserFromData(data)
	if err != nil {
		return models.Track{}, err
	}
	return p.Parse(data)
}

// ParseFile reads filename and parses its contents.
func ParseFile(filename string) (models.Track, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseTrack(data)
}
