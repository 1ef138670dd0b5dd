package domain

import (
	"errors"
	"strconv"
)

// ErrUnsupportedFileType is returned when the declared type has no parser.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// ErrEmptyFile is returned when an upload has no header line to parse.
var ErrEmptyFile = errors.New("no columns to parse from file")

// ErrUnparseableText is returned when no known delimiter yields the expected headers.
var ErrUnparseableText = errors.New("Failed to parse the .txt file with common delimiters (tab, comma, space).")

// ErrRaggedRow is returned when a row has more fields than the header.
var ErrRaggedRow = errors.New("row has more fields than the header")

// ParseError reports why an upload could not be read as a table.
// Its message is shown to the uploader verbatim.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return "Error tokenizing data. Line " + strconv.Itoa(e.Line) + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }
