package answer

import (
	"context"
	"fmt"
)

// Compound handles the degenerate multiple-questions-in-one case: no
// retrieval and no structured query, only a templated suggestion to split
// the message, streamed verbatim from the oracle.
type Compound struct {
	oracle Oracle
}

// NewCompound creates the compound-question strategy.
func NewCompound(oracle Oracle) *Compound {
	return &Compound{oracle: oracle}
}

// Answer streams the oracle's split suggestion.
func (c *Compound) Answer(ctx context.Context, question string) (*Answer, error) {
	stream, err := c.oracle.CompleteStream(ctx, compoundInstruction, question)
	if err != nil {
		return nil, fmt.Errorf("compound reply: %w", err)
	}
	return &Answer{Stream: stream}, nil
}

var _ Strategy = (*Compound)(nil)
