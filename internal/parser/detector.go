// internal/parser/detector.go
package parser

import (
	"bytes"
	"path/filepath"
	"strings"
)

type FileType string

const (
	FileTypeFIT     FileType = "fit"
	FileTypeTCX     FileType = "tcx"
	FileTypeGPX     FileType = "gpx"
	FileTypeUnknown FileType = "unknown"
)

// sniffLen bounds how much of a payload is inspected for detection.
const sniffLen = 512

func DetectFileTypeFromData(data []byte) FileType {
	// FIT header: bytes 8..12 carry the ".FIT" signature
	if len(data) >= 12 && bytes.Equal(data[8:12], []byte(".FIT")) {
		return FileTypeFIT
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	head = bytes.TrimSpace(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")))

	if bytes.HasPrefix(head, []byte("<")) {
		if bytes.Contains(head, []byte("<gpx")) ||
			bytes.Contains(head, []byte("topografix.com/GPX")) {
			return FileTypeGPX
		}
		if bytes.Contains(head, []byte("TrainingCenterDatabase")) {
			return FileTypeTCX
		}
	}

	return FileTypeUnknown
}

// DetectFileTypeFromName maps a file extension to a FileType.
func DetectFileTypeFromName(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".fit":
		return FileTypeFIT
	case ".gpx":
		return FileTypeGPX
	case ".tcx":
		return FileTypeTCX
	default:
		return FileTypeUnknown
	}
}
