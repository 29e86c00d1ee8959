package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviews-engine/internal/answer"
	"github.com/reviewpilot/reviews-engine/internal/embedding"
	"github.com/reviewpilot/reviews-engine/internal/llm"
	"github.com/reviewpilot/reviews-engine/internal/store"
)

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var (
		interactive bool
		showContext bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the indexed reviews",
		Long: `Ask routes a question through the answering engine: counting
questions run a structured query against the index, open-ended questions
retrieve similar reviews and answer from them.

With --interactive the command runs a REPL that keeps conversation
history for the session.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine()
			if err != nil {
				return err
			}

			if interactive {
				return runREPL(engine, showContext)
			}

			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("a question is required (or use --interactive)")
			}

			conv := answer.NewConversation()
			return askOnce(engine, conv, question, showContext)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "start an interactive session")
	cmd.Flags().BoolVar(&showContext, "show-context", false, "print the retrieved passages before the answer")

	return cmd
}

// buildEngine wires the answering engine from the loaded configuration.
func buildEngine() (*answer.Router, error) {
	oracle, err := llm.NewClient(llm.Config{
		BaseURL: cfg.Oracle.BaseURL,
		APIKey:  cfg.Oracle.APIKey,
		Model:   cfg.Oracle.Model,
		Timeout: cfg.Oracle.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create oracle client: %w", err)
	}

	embedder, err := embedding.NewClient(embedding.Config{
		BaseURL:   cfg.Embedding.BaseURL,
		APIKey:    cfg.Embedding.APIKey,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	st, err := store.NewRedisStore(store.RedisConfig{
		Addr:     cfg.Store.Addr,
		Password: cfg.Store.Password,
		DB:       cfg.Store.DB,
		PoolSize: cfg.Store.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}

	return answer.NewRouter(logger, oracle, embedder, st, answer.RouterConfig{
		Index:      cfg.Store.IndexName,
		SchemaPath: cfg.Store.SchemaPath,
		TopK:       cfg.Answer.TopK,
	}), nil
}

// askOnce streams one answer to stdout.
func askOnce(engine *answer.Router, conv *answer.Conversation, question string, showContext bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ans, err := engine.Ask(ctx, conv, question)
	if err != nil {
		return err
	}
	defer ans.Stream.Close()

	if showContext && len(ans.Context) > 0 {
		color.New(color.FgCyan).Printf("Context (%d passages):\n", len(ans.Context))
		for i, doc := range ans.Context {
			fmt.Printf("  %d. [%.3f] %s\n", i+1, doc.Score, truncate(doc.Content, 120))
		}
		fmt.Println()
	}

	if outputJSON {
		text, err := llm.Collect(ans.Stream)
		if err != nil {
			return err
		}
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"question": question,
			"answer":   text,
			"context":  len(ans.Context),
		})
	}

	for {
		frag, err := ans.Stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("stream answer: %w", err)
		}
		fmt.Print(frag)
	}
	fmt.Println()

	return nil
}

// runREPL runs an interactive session with shared conversation history.
func runREPL(engine *answer.Router, showContext bool) error {
	conv := answer.NewConversation()
	scanner := bufio.NewScanner(os.Stdin)

	color.New(color.FgCyan).Println("Ask about the indexed reviews. Type 'exit' to quit.")
	for {
		color.New(color.FgGreen).Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		if err := askOnce(engine, conv, question, showContext); err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "✗ %v\n", err)
		}
	}
	return scanner.Err()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
