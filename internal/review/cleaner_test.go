package review

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviews-engine/internal/observability"
)

func newTestCleaner(weightLikes bool) *Cleaner {
	return NewCleaner(observability.Nop(), CleanOptions{WeightLikes: weightLikes})
}

func canonicalTable(rows [][]string) Table {
	return Table{
		Columns: []string{ColCreatedDate, ColContent, ColScore, ColLikes, ColReviewVersion, ColVersion},
		Rows:    rows,
	}
}

func TestClean_DropsExactDuplicates(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "Great app", "5", "2", "1.0", "1.0"},
		{"2024-01-01 10:00:00", "Great app", "5", "2", "1.0", "1.0"},
		{"2024-01-02 10:00:00", "Needs work", "2", "0", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestClean_DropsEmptyContent(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "", "5", "2", "1.0", "1.0"},
		{"2024-01-02 10:00:00", "   ", "4", "1", "1.0", "1.0"},
		{"2024-01-03 10:00:00", "Fine", "3", "0", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Fine", records[0].Content)
}

func TestClean_SkipsUnparseableDates(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"not-a-date", "Broken row", "5", "2", "1.0", "1.0"},
		{"2024-01-01 10:00:00", "Good row", "4", "1", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Good row", records[0].Content)
}

func TestClean_AllDatesBadReturnsError(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"???", "Row one", "5", "2", "1.0", "1.0"},
		{"also bad", "Row two", "4", "1", "1.0", "1.0"},
	})

	_, err := c.Clean(table, "netflix")
	require.Error(t, err)

	var dfe *DataFormatError
	require.True(t, errors.As(err, &dfe))
	assert.Equal(t, 0, dfe.Row)
	assert.Equal(t, ColCreatedDate, dfe.Field)
}

func TestClean_DerivedFields(t *testing.T) {
	c := newTestCleaner(true)

	// 2024-01-01 is a Monday.
	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "I love netflix so much", "5", "2", "1.0", "1.0"},
		{"2024-01-06 10:00:00", "great app", "4", "1", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Monday", records[0].Weekday)
	assert.True(t, records[0].ContainsSourceWord)

	assert.Equal(t, "Saturday", records[1].Weekday)
	assert.False(t, records[1].ContainsSourceWord)
}

func TestClean_SourceWordCaseInsensitive(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "NETFLIX keeps crashing", "1", "0", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].ContainsSourceWord)
}

func TestClean_WeightLikesHalvesAboveMean(t *testing.T) {
	c := newTestCleaner(true)

	// Likes 0, 10, 20: mean is 10, only 20 is above it.
	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "a", "3", "0", "1.0", "1.0"},
		{"2024-01-02 10:00:00", "b", "3", "10", "1.0", "1.0"},
		{"2024-01-03 10:00:00", "c", "3", "20", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, 0.0, records[0].LikesWeighted)
	assert.Equal(t, 10.0, records[1].LikesWeighted)
	assert.Equal(t, 10.0, records[2].LikesWeighted)
}

func TestClean_WeightLikesDisabledPassesThrough(t *testing.T) {
	c := newTestCleaner(false)

	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "a", "3", "0", "1.0", "1.0"},
		{"2024-01-02 10:00:00", "b", "3", "10", "1.0", "1.0"},
		{"2024-01-03 10:00:00", "c", "3", "20", "1.0", "1.0"},
	})

	records, err := c.Clean(table, "netflix")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, want := range []float64{0, 10, 20} {
		assert.Equal(t, want, records[i].LikesWeighted)
	}
}

func TestClean_ExtraColumnsPreserved(t *testing.T) {
	c := newTestCleaner(true)

	table := Table{
		Columns: []string{ColCreatedDate, ColContent, ColScore, ColLikes, "reply"},
		Rows: [][]string{
			{"2024-01-01 10:00:00", "Great", "5", "1", "thanks for the feedback"},
		},
	}

	records, err := c.Clean(table, "spotify")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "thanks for the feedback", records[0].Extra["reply"])
}

func TestClean_AcceptedDateLayouts(t *testing.T) {
	c := newTestCleaner(true)

	layouts := []string{
		"2024-03-15 08:30:00",
		"2024-03-15T08:30:00Z",
		"2024-03-15T08:30:00",
		"2024-03-15",
		"3/15/2024 08:30",
	}

	for _, value := range layouts {
		t.Run(value, func(t *testing.T) {
			table := canonicalTable([][]string{
				{value, "content here", "4", "0", "1.0", "1.0"},
			})
			records, err := c.Clean(table, "chatgpt")
			require.NoError(t, err)
			require.Len(t, records, 1)
			assert.Equal(t, time.March, records[0].CreatedDate.Month())
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	c := newTestCleaner(true)

	table := canonicalTable([][]string{
		{"2024-01-01 10:00:00", "First review", "5", "2", "1.0", "1.0"},
		{"2024-01-02 11:00:00", "Second review", "3", "8", "1.1", "1.1"},
		{"2024-01-03 12:00:00", "Third review", "1", "4", "1.2", "1.2"},
	})

	first, err := c.Clean(table, "netflix")
	require.NoError(t, err)

	// Rebuild a table from the cleaned records and clean again.
	rebuilt := canonicalTable(nil)
	for _, rec := range first {
		rebuilt.Rows = append(rebuilt.Rows, []string{
			rec.CreatedDate.Format("2006-01-02 15:04:05"),
			rec.Content,
			fmt.Sprintf("%g", rec.Score),
			fmt.Sprintf("%d", rec.Likes),
			rec.ReviewVersion,
			rec.Version,
		})
	}

	second, err := c.Clean(rebuilt, "netflix")
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Content, second[i].Content)
		assert.Equal(t, first[i].Weekday, second[i].Weekday)
		assert.Equal(t, first[i].LikesWeighted, second[i].LikesWeighted)
	}
}
