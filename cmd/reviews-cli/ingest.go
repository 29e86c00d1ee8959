package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/ingest"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// newIngestCmd creates the ingest subcommand.
func newIngestCmd() *cobra.Command {
	var (
		dataRoot string
		sources  []string
		maxDocs  int
		mock     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest review CSV exports into the search index",
		Long: `Ingest reads the per-source CSV exports under the data root, maps
them to the canonical column layout, cleans the rows, embeds the review
text, and writes the documents into the search index.

Each source expects a file named <source>_reviews.csv.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			if dataRoot != "" {
				cfg.Ingest.DataRoot = dataRoot
			}
			if len(sources) > 0 {
				cfg.Ingest.Sources = sources
			}
			if maxDocs > 0 {
				cfg.Ingest.MaxDocuments = maxDocs
			}

			var embedder embedding.Embedder
			if mock {
				embedder = embedding.NewMockClient(cfg.Embedding.Dimension)
			} else {
				client, err := embedding.NewClient(embedding.Config{
					BaseURL:   cfg.Embedding.BaseURL,
					APIKey:    cfg.Embedding.APIKey,
					Model:     cfg.Embedding.Model,
					Dimension: cfg.Embedding.Dimension,
					Timeout:   cfg.Embedding.Timeout,
				})
				if err != nil {
					return fmt.Errorf("create embedding client: %w", err)
				}
				embedder = client
			}

			st, err := store.NewRedisStore(store.RedisConfig{
				Addr:     cfg.Store.Addr,
				Password: cfg.Store.Password,
				DB:       cfg.Store.DB,
				PoolSize: cfg.Store.PoolSize,
			})
			if err != nil {
				return fmt.Errorf("connect to store: %w", err)
			}

			pipeline := ingest.NewPipeline(logger, ingest.PipelineConfig{
				DataRoot:     cfg.Ingest.DataRoot,
				Sources:      cfg.Ingest.Sources,
				IndexName:    cfg.Store.IndexName,
				SchemaPath:   cfg.Store.SchemaPath,
				MaxDocuments: cfg.Ingest.MaxDocuments,
				BatchSize:    cfg.Embedding.BatchSize,
				WeightLikes:  cfg.Ingest.WeightLikes,
			}, embedder, st)

			var bar *progressbar.ProgressBar
			barSource := ""
			onProgress := func(source string, done, total int) {
				if outputJSON {
					return
				}
				if bar == nil || barSource != source {
					bar = progressbar.NewOptions(total,
						progressbar.OptionSetDescription(fmt.Sprintf("embedding %s", source)),
						progressbar.OptionShowCount(),
						progressbar.OptionClearOnFinish(),
					)
					barSource = source
				}
				_ = bar.Set(done)
			}

			result, err := pipeline.Run(ctx, onProgress)
			if err != nil {
				color.New(color.FgRed).Fprintf(os.Stderr, "✗ ingestion failed: %v\n", err)
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}

			for _, src := range result.Sources {
				color.New(color.FgGreen).Printf("✓ %s: %d read, %d cleaned, %d indexed\n",
					src.Source, src.RowsRead, src.RowsCleaned, src.DocsIndexed)
			}
			for _, msg := range result.Errors {
				color.New(color.FgYellow).Printf("⚠ %s\n", msg)
			}
			fmt.Printf("Indexed %d documents into %q in %s\n",
				result.DocsIndexed, cfg.Store.IndexName, result.Duration.Round(time.Millisecond))

			return nil
		},
	}

	cmd.Flags().StringVar(&dataRoot, "data-root", "", "directory holding <source>_reviews.csv files")
	cmd.Flags().StringSliceVar(&sources, "source", nil, "sources to ingest (default: configured sources)")
	cmd.Flags().IntVar(&maxDocs, "max-docs", 0, "cap on documents indexed per source")
	cmd.Flags().BoolVar(&mock, "mock-embeddings", false, "use deterministic mock embeddings (no embedding service required)")

	return cmd
}
