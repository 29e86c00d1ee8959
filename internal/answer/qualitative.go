package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// Qualitative answers opinion questions by retrieval-augmented generation:
// the question is embedded, the nearest review passages are retrieved, and
// the oracle generates an answer grounded in them. Retrieval and generation
// both run per request; nothing is cached.
type Qualitative struct {
	logger   *observability.Logger
	oracle   Oracle
	embedder embedding.Embedder
	store    store.Store
	index    string
	topK     int
}

// NewQualitative creates the RAG strategy.
func NewQualitative(logger *observability.Logger, oracle Oracle, embedder embedding.Embedder, st store.Store, index string, topK int) *Qualitative {
	if topK <= 0 {
		topK = 10
	}
	return &Qualitative{
		logger:   logger,
		oracle:   oracle,
		embedder: embedder,
		store:    st,
		index:    index,
		topK:     topK,
	}
}

// Answer retrieves supporting passages and streams a grounded reply. The
// retrieved documents are returned as context even when empty; with no
// context the instruction tells the oracle to decline rather than invent.
func (q *Qualitative) Answer(ctx context.Context, question string) (*Answer, error) {
	vector, err := q.embedder.EmbedSingle(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	docs, err := q.store.VectorSearch(ctx, q.index, vector, q.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	q.logger.Debug().Int("retrieved", len(docs)).Msg("Context retrieved")

	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	contextBlock := strings.Join(contents, "\n\n")

	stream, err := q.oracle.CompleteStream(ctx, ragPrompt(contextBlock), question)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &Answer{Stream: stream, Context: docs}, nil
}

var _ Strategy = (*Qualitative)(nil)
