package answer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// The sentinel reply meaning no structured query can express the question.
// It is a valid terminal state, not an error: the rephraser turns it into a
// graceful apology.
const sentinelNA = "na"

// Quantitative answers counting questions by synthesizing a filter query
// from the question, executing it for its total match count, and rephrasing
// the count into natural language.
type Quantitative struct {
	logger     *observability.Logger
	oracle     Oracle
	store      store.Store
	rephraser  *Rephraser
	index      string
	schemaPath string
}

// NewQuantitative creates the structured-count strategy. schemaPath points
// at the descriptor written during indexing; it is re-read per request so
// the synthesis prompt always reflects the current schema.
func NewQuantitative(logger *observability.Logger, oracle Oracle, st store.Store, rephraser *Rephraser, index, schemaPath string) *Quantitative {
	return &Quantitative{
		logger:     logger,
		oracle:     oracle,
		store:      st,
		rephraser:  rephraser,
		index:      index,
		schemaPath: schemaPath,
	}
}

// Answer synthesizes, executes and rephrases. A query the store rejects is
// degraded to the na case rather than surfaced as a fault.
func (q *Quantitative) Answer(ctx context.Context, question string) (*Answer, error) {
	reply, err := q.oracle.Complete(ctx, synthesisInstruction(q.schema()), question)
	if err != nil {
		return nil, fmt.Errorf("synthesize query: %w", err)
	}

	query := NormalizeQuery(reply)
	shortAnswer := sentinelNA

	if !strings.EqualFold(query, sentinelNA) {
		result, err := q.store.StructuredQuery(ctx, q.index, query)
		if err != nil {
			q.logger.Warn().Str("query", query).Err(err).Msg("Store rejected synthesized query")
		} else {
			shortAnswer = strconv.FormatInt(result.Total, 10)
			q.logger.Debug().Str("query", query).Int64("count", result.Total).Msg("Structured query executed")
		}
	}

	stream, err := q.rephraser.Rephrase(ctx, question, shortAnswer)
	if err != nil {
		return nil, err
	}

	// No supporting passages on this path.
	return &Answer{Stream: stream}, nil
}

// schema loads the persisted descriptor, falling back to the canonical
// review schema when no descriptor has been written yet.
func (q *Quantitative) schema() store.Schema {
	if q.schemaPath != "" {
		if s, err := store.LoadSchema(q.schemaPath); err == nil {
			return s
		}
	}
	return store.ReviewSchema()
}

// NormalizeQuery cleans up a synthesized filter query. The oracle sometimes
// writes numeric ranges with parentheses despite the instruction; those are
// rewritten to the store's bracket syntax.
func NormalizeQuery(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.Trim(s, "`")
	s = strings.NewReplacer("(", "[", ")", "]").Replace(s)
	return strings.TrimSpace(s)
}

var _ Strategy = (*Quantitative)(nil)
