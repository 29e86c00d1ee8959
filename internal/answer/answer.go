// Package answer implements the question-routing and hybrid-answering
// pipeline: a question is classified into one of three categories, each
// backed by its own strategy (retrieval-augmented generation, structured
// count queries, compound-question rejection).
package answer

import (
	"context"

	"github.com/reviewpilot/reviews-engine/internal/llm"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// Oracle is the generative-text model behind every strategy, reached in
// plain request/response mode or as a token stream.
type Oracle interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteStream(ctx context.Context, system, user string) (llm.Stream, error)
}

// Answer is one produced reply: a lazy token stream plus, for qualitative
// answers only, the retrieved documents supporting it.
type Answer struct {
	Stream  llm.Stream
	Context []store.Document
}

// Strategy answers one question. Each classification label has exactly one
// strategy behind it.
type Strategy interface {
	Answer(ctx context.Context, question string) (*Answer, error)
}
