package answer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviews-engine/internal/llm"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

func seedCountStore(t *testing.T, total int) *store.MemoryStore {
	t.Helper()

	s := store.NewMemoryStore()
	docs := make([]store.Document, total)
	for i := range docs {
		docs[i] = store.Document{
			Content:  "solid app",
			Vector:   []float32{1, 0},
			Metadata: map[string]string{"score": "5", "likes": "20"},
		}
	}
	require.NoError(t, s.WriteBatch(context.Background(), "reviews", docs, store.ReviewSchema()))
	return s
}

func newQuantitative(oracle Oracle, st store.Store) *Quantitative {
	rephraser := NewRephraser(oracle)
	return NewQuantitative(observability.Nop(), oracle, st, rephraser, "reviews", "")
}

func TestQuantitative_CountPlumbedIntoRephrase(t *testing.T) {
	st := seedCountStore(t, 42)
	oracle := &stubOracle{
		completions: []string{"@score:[5 5]"},
		streams:     [][]string{{"There are ", "42 such reviews."}},
	}

	q := newQuantitative(oracle, st)
	ans, err := q.Answer(context.Background(), "How many 5-star reviews are there?")
	require.NoError(t, err)

	text, err := llm.Collect(ans.Stream)
	require.NoError(t, err)
	assert.Equal(t, "There are 42 such reviews.", text)

	require.Len(t, oracle.streamCalls, 1)
	assert.Contains(t, oracle.streamCalls[0].user, "Short answer: 42")
	assert.Empty(t, ans.Context)
}

func TestQuantitative_NormalizesSynthesizedQuery(t *testing.T) {
	st := seedCountStore(t, 3)
	oracle := &stubOracle{
		completions: []string{" `@likes:(10 +inf)` "},
		streams:     [][]string{{"3"}},
	}

	q := newQuantitative(oracle, st)
	_, err := q.Answer(context.Background(), "How many reviews have at least 10 likes?")
	require.NoError(t, err)

	require.Len(t, oracle.streamCalls, 1)
	assert.Contains(t, oracle.streamCalls[0].user, "Short answer: 3")
}

func TestQuantitative_SentinelSkipsStore(t *testing.T) {
	oracle := &stubOracle{
		completions: []string{"na"},
		streams:     [][]string{{"Sorry, I could not answer that."}},
	}

	// A nil-safe empty store: any query against it would change Total.
	st := store.NewMemoryStore()

	q := newQuantitative(oracle, st)
	ans, err := q.Answer(context.Background(), "Why do people complain?")
	require.NoError(t, err)

	require.Len(t, oracle.streamCalls, 1)
	assert.Contains(t, oracle.streamCalls[0].user, "Short answer: na")

	text, err := llm.Collect(ans.Stream)
	require.NoError(t, err)
	assert.NotContains(t, text, "na")
}

func TestQuantitative_RejectedQueryDegradesToSentinel(t *testing.T) {
	st := seedCountStore(t, 5)
	oracle := &stubOracle{
		completions: []string{"@sentiment:positive"},
		streams:     [][]string{{"apology"}},
	}

	q := newQuantitative(oracle, st)
	_, err := q.Answer(context.Background(), "How many positive reviews?")
	require.NoError(t, err)

	require.Len(t, oracle.streamCalls, 1)
	assert.Contains(t, oracle.streamCalls[0].user, "Short answer: na")
}

func TestQuantitative_ZeroIsAValidCount(t *testing.T) {
	st := seedCountStore(t, 4)
	oracle := &stubOracle{
		completions: []string{"@score:[1 1]"},
		streams:     [][]string{{"none"}},
	}

	q := newQuantitative(oracle, st)
	_, err := q.Answer(context.Background(), "How many 1-star reviews are there?")
	require.NoError(t, err)

	require.Len(t, oracle.streamCalls, 1)
	assert.Contains(t, oracle.streamCalls[0].user, "Short answer: 0")
}

func TestQuantitative_SynthesisSeesPersistedSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	schema := store.Schema{Fields: []store.Field{
		{Name: "content", Kind: store.FieldText},
		{Name: "stars", Kind: store.FieldNumeric},
	}}
	require.NoError(t, schema.Save(path))

	st := store.NewMemoryStore()
	oracle := &stubOracle{
		completions: []string{"na"},
		streams:     [][]string{{"ok"}},
	}

	rephraser := NewRephraser(oracle)
	q := NewQuantitative(observability.Nop(), oracle, st, rephraser, "reviews", path)

	_, err := q.Answer(context.Background(), "anything")
	require.NoError(t, err)

	require.Len(t, oracle.completeCalls, 1)
	assert.Contains(t, oracle.completeCalls[0].system, "stars (numeric)")
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"@score:[5 5]", "@score:[5 5]"},
		{"  @score:[5 5]\n", "@score:[5 5]"},
		{"`@likes:[10 +inf]`", "@likes:[10 +inf]"},
		{"@likes:(10 +inf)", "@likes:[10 +inf]"},
		{"na", "na"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeQuery(tc.in))
		})
	}
}
