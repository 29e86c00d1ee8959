// Package ingest provides the review ingestion pipeline: raw CSV exports
// are mapped to the canonical layout, cleaned, embedded and written into
// the search index.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/observability"
	"github.com/reviewpilot/reviews-engine/internal/review"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// Pipeline orchestrates the multi-source ingestion process.
type Pipeline struct {
	logger   *observability.Logger
	cleaner  *review.Cleaner
	embedder embedding.Embedder
	store    store.Store
	config   PipelineConfig
}

// PipelineConfig holds pipeline configuration.
type PipelineConfig struct {
	DataRoot     string
	Sources      []string
	IndexName    string
	SchemaPath   string
	MaxDocuments int
	BatchSize    int
	WeightLikes  bool
}

// SourceResult holds per-source ingestion counts.
type SourceResult struct {
	Source      string
	RowsRead    int
	RowsCleaned int
	DocsIndexed int
	RowsDropped int
}

// Result represents the outcome of an ingestion job.
type Result struct {
	JobID       uuid.UUID
	Sources     []SourceResult
	DocsIndexed int
	Errors      []string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(logger *observability.Logger, cfg PipelineConfig, embedder embedding.Embedder, st store.Store) *Pipeline {
	return &Pipeline{
		logger:   logger,
		cleaner:  review.NewCleaner(logger, review.CleanOptions{WeightLikes: cfg.WeightLikes}),
		embedder: embedder,
		store:    st,
		config:   cfg,
	}
}

// Run ingests every configured source. A source that fails is recorded and
// skipped; the job only errors when no source succeeds. onProgress, when
// set, is invoked with (source, embedded, total) as embedding batches
// complete.
func (p *Pipeline) Run(ctx context.Context, onProgress func(source string, done, total int)) (*Result, error) {
	jobID := uuid.New()
	start := time.Now()

	result := &Result{
		JobID:     jobID,
		StartedAt: start,
	}

	p.logger.Info().
		Str("job_id", jobID.String()).
		Str("index", p.config.IndexName).
		Int("sources", len(p.config.Sources)).
		Msg("Starting ingestion job")

	succeeded := 0
	for _, source := range p.config.Sources {
		src, err := p.ingestSource(ctx, source, onProgress)
		if err != nil {
			p.logger.Warn().Str("source", source).Err(err).Msg("Source ingestion failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", source, err))
			continue
		}
		result.Sources = append(result.Sources, *src)
		result.DocsIndexed += src.DocsIndexed
		succeeded++
	}

	if succeeded == 0 && len(p.config.Sources) > 0 {
		return result, fmt.Errorf("all %d sources failed", len(p.config.Sources))
	}

	// Persist the schema descriptor so query synthesis sees the indexed
	// fields, including any source-specific extras.
	if p.config.SchemaPath != "" {
		if err := store.ReviewSchema().Save(p.config.SchemaPath); err != nil {
			p.logger.Warn().Str("path", p.config.SchemaPath).Err(err).Msg("Failed to persist schema descriptor")
			result.Errors = append(result.Errors, fmt.Sprintf("save schema: %v", err))
		}
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	p.logger.Info().
		Str("job_id", jobID.String()).
		Int("docs_indexed", result.DocsIndexed).
		Int("errors", len(result.Errors)).
		Dur("duration", result.Duration).
		Msg("Ingestion job completed")

	return result, nil
}

// ingestSource runs the full pipeline for one source export.
func (p *Pipeline) ingestSource(ctx context.Context, source string, onProgress func(source string, done, total int)) (*SourceResult, error) {
	raw, err := ReadSourceCSV(p.config.DataRoot, source)
	if err != nil {
		return nil, err
	}

	mapped, err := review.Map(source, raw)
	if err != nil {
		return nil, fmt.Errorf("map columns: %w", err)
	}

	records, err := p.cleaner.Clean(mapped, source)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	res := &SourceResult{
		Source:      source,
		RowsRead:    len(raw.Rows),
		RowsCleaned: len(records),
		RowsDropped: len(raw.Rows) - len(records),
	}

	if max := p.config.MaxDocuments; max > 0 && len(records) > max {
		p.logger.Info().
			Str("source", source).
			Int("cleaned", len(records)).
			Int("cap", max).
			Msg("Capping documents for indexing")
		records = records[:max]
	}

	if len(records) == 0 {
		p.logger.Warn().Str("source", source).Msg("No records survived cleaning")
		return res, nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Content
	}

	vectors, err := embedding.Batch(ctx, p.embedder, texts, p.config.BatchSize, func(done int) {
		if onProgress != nil {
			onProgress(source, done, len(texts))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	docs := make([]store.Document, len(records))
	for i, rec := range records {
		docs[i] = store.Document{
			ID:       uuid.NewString(),
			Content:  rec.Content,
			Vector:   vectors[i],
			Metadata: documentMetadata(source, rec),
		}
	}

	if err := p.store.WriteBatch(ctx, p.config.IndexName, docs, store.ReviewSchema()); err != nil {
		return nil, fmt.Errorf("write batch: %w", err)
	}
	res.DocsIndexed = len(docs)

	p.logger.Info().
		Str("source", source).
		Int("rows_read", res.RowsRead).
		Int("rows_cleaned", res.RowsCleaned).
		Int("docs_indexed", res.DocsIndexed).
		Msg("Source ingested")

	return res, nil
}

// documentMetadata flattens a cleaned record into index fields.
func documentMetadata(source string, rec review.Record) map[string]string {
	meta := map[string]string{
		"source":               source,
		"score":                strconv.FormatFloat(rec.Score, 'f', -1, 64),
		"likes":                strconv.Itoa(rec.Likes),
		"likes_weighted":       strconv.FormatFloat(rec.LikesWeighted, 'f', -1, 64),
		"created_date":         rec.CreatedDate.Format("2006-01-02 15:04:05"),
		"weekday":              rec.Weekday,
		"contains_source_word": strconv.FormatBool(rec.ContainsSourceWord),
	}
	if rec.ReviewVersion != "" {
		meta["review_version"] = rec.ReviewVersion
	}
	if rec.Version != "" {
		meta["version"] = rec.Version
	}
	for k, v := range rec.Extra {
		if v != "" {
			meta[k] = v
		}
	}
	return meta
}
