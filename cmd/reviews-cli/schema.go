package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reviewpilot/reviews-engine/internal/store"
)

// newSchemaCmd creates the schema subcommand.
func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show the index schema used for structured queries",
		Long: `Schema prints the persisted index schema descriptor, falling back
to the built-in review schema when no descriptor has been written yet.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := store.LoadSchema(cfg.Store.SchemaPath)
			persisted := err == nil
			if !persisted {
				schema = store.ReviewSchema()
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(schema)
			}

			if persisted {
				color.New(color.FgCyan).Printf("Schema from %s:\n", cfg.Store.SchemaPath)
			} else {
				color.New(color.FgYellow).Println("No persisted descriptor, showing built-in schema:")
			}
			for _, f := range schema.Fields {
				flags := ""
				if f.Sortable {
					flags += " sortable"
				}
				if f.NoStem {
					flags += " nostem"
				}
				fmt.Printf("  %-22s %s%s\n", f.Name, f.Kind, flags)
			}

			return nil
		},
	}

	return cmd
}
