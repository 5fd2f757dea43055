package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/hazemfarra/argus/internal/index"
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Semantically search the intelligence store",
	Long:  `Searches stored intelligence records with a natural language query and returns the most relevant ones with similarity scores.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().String("owner", "", "limit results to this owner's records plus shared ones")
	queryCmd.Flags().Bool("json", false, "output results as JSON")
	queryCmd.Flags().Bool("context", false, "print the assembled context block instead of a result list")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	owner, _ := cmd.Flags().GetString("owner")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	asContext, _ := cmd.Flags().GetBool("context")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, database, err := openEngine(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer database.Close()

	if asContext {
		contextBlock, hits := eng.GetContext(ctx, queryText, owner)
		fmt.Println(contextBlock)
		if verbose {
			fmt.Fprintf(os.Stderr, "%d record(s) used\n", hits)
		}
		return nil
	}

	results, err := eng.Search(ctx, queryText, owner)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		return printQueryResultsJSON(results)
	}

	printQueryResultsTable(results)
	return nil
}

type queryResultJSON struct {
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Owner string  `json:"owner,omitempty"`
	Text  string  `json:"text"`
}

func printQueryResultsJSON(results []index.Result) error {
	var out []queryResultJSON
	for i, r := range results {
		out = append(out, queryResultJSON{
			Rank:  i + 1,
			Score: r.Score,
			ID:    r.Record.ID,
			Kind:  string(r.Record.Kind),
			Owner: r.Record.Owner,
			Text:  truncate(r.Record.SearchableText, 200),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printQueryResultsTable(results []index.Result) {
	fmt.Printf("Found %d results:\n\n", len(results))
	for i, r := range results {
		owner := r.Record.Owner
		if owner == "" {
			owner = "shared"
		}
		fmt.Printf("  %d. [%.1f%%] %s (%s)\n", i+1, r.Score*100, r.Record.Kind, owner)
		fmt.Printf("     %s\n\n", truncate(r.Record.SearchableText, 120))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max] + "..."
}
