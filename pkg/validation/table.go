package validation

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"slices"

	"github.com/aretw0/intake/pkg/domain"
)

// Cell is a single parsed field.
type Cell struct {
	Value string
	Null  bool
}

// Table is a parsed report file: a header row and zero or more data rows.
// Every data row has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]Cell
}

// Delimiters are tried in this order for text files.
var Delimiters = []rune{'\t', ',', ' '}

// naValues are the field spellings treated as missing, on top of the empty string.
var naValues = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {},
	"n/a": {}, "nan": {}, "null": {},
}

func isNA(s string) bool {
	if s == "" {
		return true
	}
	_, ok := naValues[s]
	return ok
}

// ParseCSV reads comma separated data.
func ParseCSV(data []byte) (Table, error) {
	return parse(data, ',')
}

// ParseText reads a text report whose delimiter is unknown.
// The first delimiter producing exactly the expected header row wins.
func ParseText(data []byte, headers []string) (Table, error) {
	for _, d := range Delimiters {
		t, err := parse(data, d)
		if err != nil {
			continue
		}
		if slices.Equal(t.Header, headers) {
			return t, nil
		}
	}
	return Table{}, &domain.ParseError{Err: domain.ErrUnparseableText}
}

func parse(data []byte, delim rune) (Table, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var (
		t Table
		// next is the line the reader starts on; csv.Reader drops blank lines,
		// so any gap before the next record is made of blank rows.
		next = 1
	)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return Table{}, &domain.ParseError{Line: perr.StartLine, Err: perr.Err}
			}
			return Table{}, &domain.ParseError{Err: err}
		}
		line, _ := r.FieldPos(0)

		if t.Header == nil {
			// Leading blank lines carry no header.
			t.Header = fields
		} else {
			for ; next < line; next++ {
				t.Rows = append(t.Rows, nullRow(len(t.Header)))
			}
			if len(fields) > len(t.Header) {
				return Table{}, &domain.ParseError{Line: line, Err: domain.ErrRaggedRow}
			}
			row := nullRow(len(t.Header))
			for j, f := range fields {
				row[j] = Cell{Value: f, Null: isNA(f)}
			}
			t.Rows = append(t.Rows, row)
		}
		next = 1 + bytes.Count(data[:r.InputOffset()], []byte("\n"))
	}

	if t.Header == nil {
		return Table{}, &domain.ParseError{Err: domain.ErrEmptyFile}
	}
	// Blank lines after the last record.
	for range bytes.Count(data[r.InputOffset():], []byte("\n")) {
		t.Rows = append(t.Rows, nullRow(len(t.Header)))
	}
	return t, nil
}

func nullRow(n int) []Cell {
	row := make([]Cell, n)
	for j := range row {
		row[j].Null = true
	}
	return row
}
