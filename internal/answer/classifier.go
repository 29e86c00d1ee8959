package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/reviewpilot/reviews-engine/internal/observability"
)

// Label is the classification of a question.
type Label string

const (
	LabelQuantitative Label = "quantitative"
	LabelQualitative  Label = "qualitative"
	LabelCompound     Label = "compound"
)

// ClassificationError indicates the oracle replied with something outside
// the closed label enumeration.
type ClassificationError struct {
	Reply string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unrecognized question classification %q", e.Reply)
}

// Classifier labels questions by asking the oracle for a one-word category.
type Classifier struct {
	logger *observability.Logger
	oracle Oracle
}

// NewClassifier creates a Classifier.
func NewClassifier(logger *observability.Logger, oracle Oracle) *Classifier {
	return &Classifier{logger: logger, oracle: oracle}
}

// Classify returns exactly one of the three labels. The oracle's reply is
// normalized before matching because the one-word instruction is not always
// obeyed; anything that still fails to match is a ClassificationError.
func (c *Classifier) Classify(ctx context.Context, question string) (Label, error) {
	reply, err := c.oracle.Complete(ctx, classifyInstruction, question)
	if err != nil {
		return "", fmt.Errorf("classify question: %w", err)
	}

	label := normalizeLabel(reply)

	switch label {
	case LabelQuantitative, LabelQualitative, LabelCompound:
		c.logger.Debug().Str("label", string(label)).Msg("Question classified")
		return label, nil
	}

	return "", &ClassificationError{Reply: reply}
}

// normalizeLabel lower-cases the reply, keeps its first word and strips
// trailing punctuation.
func normalizeLabel(reply string) Label {
	s := strings.ToLower(strings.TrimSpace(reply))
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	s = strings.TrimRight(s, ".,!?:;\"'")
	return Label(s)
}
