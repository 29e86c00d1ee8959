package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/reviewpilot/reviews-engine/internal/review"
)

// ReadCSV loads a review export into a raw table. The first record is the
// header row; subsequent rows are padded or truncated to the header width so
// ragged exports do not abort the load.
func ReadCSV(r io.Reader) (review.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return review.Table{}, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return review.Table{}, fmt.Errorf("read csv header: %w", err)
	}

	t := review.Table{Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return review.Table{}, fmt.Errorf("read csv row %d: %w", len(t.Rows)+1, err)
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		} else if len(row) > len(header) {
			row = row[:len(header)]
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadSourceCSV opens the conventional per-source export file under the
// data root, e.g. data/netflix_reviews.csv.
func ReadSourceCSV(dataRoot, source string) (review.Table, error) {
	path := filepath.Join(dataRoot, source+"_reviews.csv")
	f, err := os.Open(path)
	if err != nil {
		return review.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return review.Table{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
