package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"staffrag/internal/adapter/encoder"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the nearest employees for a query",
	Long: `Embed the query and print the closest employee profiles with their
squared L2 distances, without calling the language model.

Examples:
  staffrag query -q "machine learning engineer"
  staffrag query -q "go backend" --top-k 5 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	topK := cfg.Retrieve.SearchTopK
	if cmd.Flags().Changed("top-k") {
		topK = queryTopK
	}

	deps, err := loadDependencies(cmd, false)
	if err != nil {
		return err
	}

	hits, err := deps.Pipeline.Retrieve(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if queryJSON {
		output, _ := json.MarshalIndent(hits, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(hits) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	enc := encoder.New()
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(hits), queryText)
	for i, h := range hits {
		fmt.Fprintf(out, "--- [%d] %s (distance: %.4f) ---\n", i+1, h.Employee.Name, h.Distance)
		doc, err := enc.Render(h.Employee)
		if err != nil {
			doc = err.Error()
		}
		fmt.Fprintln(out, doc)
		fmt.Fprintln(out)
	}
	return nil
}
