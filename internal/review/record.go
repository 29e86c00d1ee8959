// Package review provides schema normalization and cleaning for raw review records.
package review

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownSource indicates a source identifier with no configured mapping.
var ErrUnknownSource = errors.New("unknown review source")

// DataFormatError indicates a malformed value in a raw review row.
type DataFormatError struct {
	Source string
	Row    int
	Field  string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("bad %s value %q in %s row %d: %v", e.Field, e.Value, e.Source, e.Row, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// Table is a column-ordered set of raw string rows, the shape reviews have
// between CSV parsing and cleaning. Every row is aligned to Columns.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Column returns the index of the named column, or -1.
func (t Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Record is the canonical review record shared by all sources. Created once
// per ingestion run and immutable thereafter.
type Record struct {
	Content            string
	Score              float64
	Likes              int
	CreatedDate        time.Time
	ReviewVersion      string
	Version            string
	Weekday            string
	ContainsSourceWord bool
	LikesWeighted      float64

	// Extra carries mapped per-source columns outside the canonical set
	// (reviewer id, name, reply). Indexed as plain metadata.
	Extra map[string]string
}
