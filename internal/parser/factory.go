package parser

import "fmt"

// NewParser returns the parser for a known file type.
func NewParser(fileType FileType) (Parser, error) {
	switch fileType {
	case FileTypeFIT:
		return NewFITParser(), nil
	case FileTypeGPX:
		return NewGPXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileType)
	}
}

// NewParserFromData picks a parser based on file content. Unknown content
// falls back to GPX; TCX is recognised but not supported.
func NewParserFromData(data []byte) (Parser, error) {
	fileType := DetectFileTypeFromData(data)
	if fileType == FileTypeUnknown {
		fileType = FileTypeGPX
	}
	return NewParser(fileType)
}
