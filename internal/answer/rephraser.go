package answer

import (
	"context"
	"fmt"

	"github.com/reviewpilot/reviews-engine/internal/llm"
)

// Rephraser turns a (question, short answer) pair into a fluent sentence
// stream. Shared helper used by the quantitative strategy.
type Rephraser struct {
	oracle Oracle
}

// NewRephraser creates a Rephraser.
func NewRephraser(oracle Oracle) *Rephraser {
	return &Rephraser{oracle: oracle}
}

// Rephrase streams a natural-language rendering of the short answer. The
// sentinel short answer "na" yields an apology inviting the user to
// rephrase, never the token itself.
func (r *Rephraser) Rephrase(ctx context.Context, question, shortAnswer string) (llm.Stream, error) {
	stream, err := r.oracle.CompleteStream(ctx, rephraseInstruction, rephraseMessage(question, shortAnswer))
	if err != nil {
		return nil, fmt.Errorf("rephrase answer: %w", err)
	}
	return stream, nil
}
