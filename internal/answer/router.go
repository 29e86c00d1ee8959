package answer

import (
	"context"
	"time"

	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// Router orchestrates one user turn: classify the question, dispatch to the
// strategy behind the label, and hand back a uniform stream-plus-context
// answer.
type Router struct {
	logger       *observability.Logger
	classifier   *Classifier
	quantitative Strategy
	qualitative  Strategy
	compound     Strategy
}

// RouterConfig holds router assembly settings.
type RouterConfig struct {
	Index      string
	SchemaPath string
	TopK       int
}

// NewRouter wires the classifier and the three strategies.
func NewRouter(logger *observability.Logger, oracle Oracle, embedder embedding.Embedder, st store.Store, cfg RouterConfig) *Router {
	rephraser := NewRephraser(oracle)

	return &Router{
		logger:       logger,
		classifier:   NewClassifier(logger, oracle),
		quantitative: NewQuantitative(logger, oracle, st, rephraser, cfg.Index, cfg.SchemaPath),
		qualitative:  NewQualitative(logger, oracle, embedder, st, cfg.Index, cfg.TopK),
		compound:     NewCompound(oracle),
	}
}

// Ask processes one question end to end. The label switch is exhaustive
// over the closed enumeration; an unrecognized label is a terminal
// ClassificationError, never a silent default. When conv is non-nil the
// turn is recorded into it as the stream is drained.
func (r *Router) Ask(ctx context.Context, conv *Conversation, question string) (*Answer, error) {
	start := time.Now()

	label, err := r.classifier.Classify(ctx, question)
	if err != nil {
		return nil, err
	}

	var ans *Answer
	switch label {
	case LabelQuantitative:
		ans, err = r.quantitative.Answer(ctx, question)
	case LabelQualitative:
		ans, err = r.qualitative.Answer(ctx, question)
	case LabelCompound:
		ans, err = r.compound.Answer(ctx, question)
	default:
		return nil, &ClassificationError{Reply: string(label)}
	}
	if err != nil {
		return nil, err
	}

	if conv != nil {
		conv.add("user", question)
		ans.Stream = conv.recordStream(ans.Stream)
	}

	r.logger.Info().
		Str("label", string(label)).
		Int("context_docs", len(ans.Context)).
		Dur("routing", time.Since(start)).
		Msg("Question routed")

	return ans, nil
}
