package review

import "fmt"

// Canonical column names produced by the mapper.
const (
	ColContent       = "content"
	ColScore         = "score"
	ColLikes         = "likes"
	ColCreatedDate   = "created_date"
	ColReviewVersion = "review_version"
	ColVersion       = "version"
)

// FieldMapping maps one source column to one canonical column. Order matters:
// the mapper's output columns follow the declared target order.
type FieldMapping struct {
	Source string
	Target string
}

// mappings is the fixed configuration table, one entry per supported source.
var mappings = map[string][]FieldMapping{
	"chatgpt": {
		{Source: "reviewId", Target: "id"},
		{Source: "userName", Target: "name"},
		{Source: "content", Target: ColContent},
		{Source: "score", Target: ColScore},
		{Source: "thumbsUpCount", Target: ColLikes},
		{Source: "reviewCreatedVersion", Target: ColReviewVersion},
		{Source: "at", Target: ColCreatedDate},
		{Source: "appVersion", Target: ColVersion},
	},
	"netflix": {
		{Source: "created", Target: ColCreatedDate},
		{Source: "content", Target: ColContent},
		{Source: "score", Target: ColScore},
		{Source: "likes", Target: ColLikes},
		{Source: "reviewCreatedVersion", Target: ColReviewVersion},
		{Source: "version", Target: ColVersion},
	},
	"spotify": {
		{Source: "Time_submitted", Target: ColCreatedDate},
		{Source: "Review", Target: ColContent},
		{Source: "Rating", Target: ColScore},
		{Source: "Total_thumbsup", Target: ColLikes},
		{Source: "Reply", Target: "reply"},
	},
}

// Sources returns the supported source identifiers.
func Sources() []string {
	return []string{"chatgpt", "netflix", "spotify"}
}

// Mapping returns the field mapping for a source, or ErrUnknownSource.
func Mapping(source string) ([]FieldMapping, error) {
	m, ok := mappings[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}
	return m, nil
}

// Map normalizes a raw source table into canonical shape: source columns are
// renamed per the mapping and emitted in declared target order, unmapped
// columns are discarded. Values are copied untouched; validation belongs to
// the cleaner.
func Map(source string, raw Table) (Table, error) {
	mapping, err := Mapping(source)
	if err != nil {
		return Table{}, err
	}

	indices := make([]int, len(mapping))
	columns := make([]string, len(mapping))
	for i, fm := range mapping {
		idx := raw.Column(fm.Source)
		if idx < 0 {
			return Table{}, &DataFormatError{
				Source: source,
				Row:    -1,
				Field:  fm.Source,
				Err:    fmt.Errorf("required column missing"),
			}
		}
		indices[i] = idx
		columns[i] = fm.Target
	}

	rows := make([][]string, len(raw.Rows))
	for r, raw := range raw.Rows {
		row := make([]string, len(indices))
		for i, idx := range indices {
			if idx < len(raw) {
				row[i] = raw[idx]
			}
		}
		rows[r] = row
	}

	return Table{Columns: columns, Rows: rows}, nil
}
