package answer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/llm"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

func seedRAGStore(t *testing.T, embedder embedding.Embedder, contents ...string) *store.MemoryStore {
	t.Helper()

	s := store.NewMemoryStore()
	docs := make([]store.Document, len(contents))
	for i, content := range contents {
		vec, err := embedder.EmbedSingle(context.Background(), content)
		require.NoError(t, err)
		docs[i] = store.Document{
			Content:  content,
			Vector:   vec,
			Metadata: map[string]string{"source": "netflix", "score": "4"},
		}
	}
	require.NoError(t, s.WriteBatch(context.Background(), "reviews", docs, store.ReviewSchema()))
	return s
}

func TestQualitative_RetrievedPassagesGroundThePrompt(t *testing.T) {
	embedder := embedding.NewMockClient(64)
	st := seedRAGStore(t, embedder,
		"The interface is clean and easy to use",
		"Buffering ruins every movie night",
	)

	oracle := &stubOracle{streams: [][]string{{"People mention ", "the interface."}}}
	q := NewQualitative(observability.Nop(), oracle, embedder, st, "reviews", 2)

	ans, err := q.Answer(context.Background(), "What do people think of the interface?")
	require.NoError(t, err)

	text, err := llm.Collect(ans.Stream)
	require.NoError(t, err)
	assert.Equal(t, "People mention the interface.", text)

	require.Len(t, ans.Context, 2)

	require.Len(t, oracle.streamCalls, 1)
	system := oracle.streamCalls[0].system
	assert.Contains(t, system, "The interface is clean and easy to use")
	assert.Contains(t, system, "Buffering ruins every movie night")
	assert.Contains(t, system, "Do not make up an answer")
}

func TestQualitative_IdenticalTextRetrievedFirst(t *testing.T) {
	embedder := embedding.NewMockClient(64)
	st := seedRAGStore(t, embedder,
		"I love the playlists",
		"The ads are too frequent",
		"Crashes on my phone daily",
	)

	oracle := &stubOracle{streams: [][]string{{"ok"}}}
	q := NewQualitative(observability.Nop(), oracle, embedder, st, "reviews", 1)

	ans, err := q.Answer(context.Background(), "The ads are too frequent")
	require.NoError(t, err)
	defer ans.Stream.Close()

	require.Len(t, ans.Context, 1)
	assert.Equal(t, "The ads are too frequent", ans.Context[0].Content)
}

func TestQualitative_EmptyIndexStillAnswers(t *testing.T) {
	embedder := embedding.NewMockClient(64)
	st := store.NewMemoryStore()

	oracle := &stubOracle{streams: [][]string{{"The reviews do not cover that."}}}
	q := NewQualitative(observability.Nop(), oracle, embedder, st, "reviews", 5)

	ans, err := q.Answer(context.Background(), "What do people say about pricing?")
	require.NoError(t, err)

	assert.Empty(t, ans.Context)

	text, err := llm.Collect(ans.Stream)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
