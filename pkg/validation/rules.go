package validation

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/intake/pkg/domain"
)

// DefaultMaxFileKB is the largest accepted upload, in kilobytes.
const DefaultMaxFileKB = 10

var fileNamePattern = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

// Extension returns the lower-cased extension of name without the dot.
// Leading dots do not start an extension, so ".csv" has none.
func Extension(name string) string {
	_, ext := splitExt(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// splitExt splits name into root and extension (dot included).
func splitExt(name string) (root, ext string) {
	file := name[strings.LastIndexByte(name, '/')+1:]
	stripped := strings.TrimLeft(file, ".")
	dot := strings.LastIndexByte(stripped, '.')
	if dot < 0 {
		return name, ""
	}
	ext = stripped[dot:]
	return name[:len(name)-len(ext)], ext
}

// ValidateFileName checks that the name, minus its extension, is alphanumeric or spaces.
func ValidateFileName(name string) domain.Outcome {
	base, _ := splitExt(name)
	if fileNamePattern.MatchString(base) {
		return domain.Pass(domain.RuleFileName, "File name is valid.")
	}
	return domain.Fail(domain.RuleFileName, "File name is invalid.")
}

// ValidateFileSize checks that size, in bytes, is at most maxKB kilobytes.
func ValidateFileSize(size int64, maxKB int64) domain.Outcome {
	if float64(size)/1024 <= float64(maxKB) {
		return domain.Pass(domain.RuleFileSize, "File size is valid.")
	}
	return domain.Fail(domain.RuleFileSize, "File size must be under "+strconv.FormatInt(maxKB, 10)+" KB.")
}

// ValidateHeaders checks that the header row equals want, order included.
func ValidateHeaders(t Table, want []string) domain.Outcome {
	if slices.Equal(t.Header, want) {
		return domain.Pass(domain.RuleHeaders, "Headers matched.")
	}
	return domain.Fail(domain.RuleHeaders, "Headers are not matching.")
}

// CheckNullValues fails when any cell is missing.
func CheckNullValues(t Table) domain.Outcome {
	for _, row := range t.Rows {
		for _, c := range row {
			if c.Null {
				return domain.Fail(domain.RuleNullValues, "Uploaded file contains null values.")
			}
		}
	}
	return domain.Pass(domain.RuleNullValues, "Uploaded file does not contain null values.")
}

// CheckEmptyRows fails when any row is entirely missing or whitespace.
func CheckEmptyRows(t Table) domain.Outcome {
	for _, row := range t.Rows {
		if isEmptyRow(row) {
			return domain.Fail(domain.RuleEmptyRows, "Uploaded file contains empty rows.")
		}
	}
	return domain.Pass(domain.RuleEmptyRows, "Uploaded file does not contain empty rows.")
}

func isEmptyRow(row []Cell) bool {
	for _, c := range row {
		if !c.Null && strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}
