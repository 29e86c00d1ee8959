package review

import (
	"strconv"
	"strings"
	"time"

	"github.com/reviewpilot/reviews-engine/internal/observability"
)

// CleanOptions configures the cleaning pipeline.
type CleanOptions struct {
	// WeightLikes enables down-weighting of above-mean like counts
	// (likes * 0.5 when likes > mean). Disabling it reproduces the
	// behavior of an earlier pipeline revision where the weighting
	// branch was a no-op; keep it off only when parity with that
	// revision is required.
	WeightLikes bool
}

// Cleaner turns canonical-shaped tables into cleaned records.
type Cleaner struct {
	logger *observability.Logger
	opts   CleanOptions
}

// NewCleaner creates a Cleaner.
func NewCleaner(logger *observability.Logger, opts CleanOptions) *Cleaner {
	return &Cleaner{logger: logger, opts: opts}
}

// dateLayouts are the accepted created_date formats across the three sources.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"1/2/2006 15:04",
}

// parseDate tries each accepted layout in order.
func parseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, strings.TrimSpace(value))
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Clean runs the order-sensitive cleaning steps: exact-duplicate removal,
// created_date parsing, dropping rows without content, then derivation of
// weekday, contains_source_word and likes_weighted. Rows with unparseable
// dates are skipped and logged rather than aborting the batch; if every row
// fails, the first row's DataFormatError is returned.
func (c *Cleaner) Clean(t Table, source string) ([]Record, error) {
	t = dropDuplicates(t)

	contentIdx := t.Column(ColContent)
	scoreIdx := t.Column(ColScore)
	likesIdx := t.Column(ColLikes)
	dateIdx := t.Column(ColCreatedDate)
	reviewVerIdx := t.Column(ColReviewVersion)
	versionIdx := t.Column(ColVersion)

	canonical := map[string]bool{
		ColContent: true, ColScore: true, ColLikes: true,
		ColCreatedDate: true, ColReviewVersion: true, ColVersion: true,
	}

	var firstErr *DataFormatError
	records := make([]Record, 0, len(t.Rows))
	for i, row := range t.Rows {
		date, err := parseDate(cell(row, dateIdx))
		if err != nil {
			dfe := &DataFormatError{
				Source: source,
				Row:    i,
				Field:  ColCreatedDate,
				Value:  cell(row, dateIdx),
				Err:    err,
			}
			if firstErr == nil {
				firstErr = dfe
			}
			c.logger.Warn().Str("source", source).Int("row", i).Err(err).Msg("Skipping row with unparseable date")
			continue
		}

		content := cell(row, contentIdx)
		if strings.TrimSpace(content) == "" {
			continue
		}

		rec := Record{
			Content:       content,
			Score:         parseFloat(cell(row, scoreIdx)),
			Likes:         parseInt(cell(row, likesIdx)),
			CreatedDate:   date,
			ReviewVersion: cell(row, reviewVerIdx),
			Version:       cell(row, versionIdx),
			Weekday:       date.Weekday().String(),
			ContainsSourceWord: strings.Contains(
				strings.ToLower(content), strings.ToLower(source)),
		}

		for j, col := range t.Columns {
			if canonical[col] || j >= len(row) {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[col] = row[j]
		}

		records = append(records, rec)
	}

	if len(records) == 0 && firstErr != nil {
		return nil, firstErr
	}

	weightLikes(records, c.opts.WeightLikes)

	return records, nil
}

// dropDuplicates removes rows whose fields are all equal, keeping first
// occurrences and re-indexing the rest contiguously.
func dropDuplicates(t Table) Table {
	seen := make(map[string]bool, len(t.Rows))
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, row)
	}
	return Table{Columns: t.Columns, Rows: rows}
}

// weightLikes derives likes_weighted per batch: above-mean like counts are
// halved when weighting is enabled, otherwise likes pass through unchanged.
func weightLikes(records []Record, enabled bool) {
	if len(records) == 0 {
		return
	}

	var sum float64
	for _, r := range records {
		sum += float64(r.Likes)
	}
	mean := sum / float64(len(records))

	for i := range records {
		likes := float64(records[i].Likes)
		if enabled && likes > mean {
			records[i].LikesWeighted = likes * 0.5
		} else {
			records[i].LikesWeighted = likes
		}
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}
