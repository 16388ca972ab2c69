package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"staffrag/internal/adapter/encoder"
)

var (
	searchText string
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Filter employees by text",
	Long: `List employees whose profile text contains the filter, ignoring case.
Without a filter every record is listed. No index is built.

Examples:
  staffrag search -q python
  staffrag search --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchText, "query", "q", "", "substring filter")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies(cmd, true)
	if err != nil {
		return err
	}

	matches := deps.Pipeline.Search(searchText)

	out := cmd.OutOrStdout()
	if searchJSON {
		output, _ := json.MarshalIndent(matches, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(matches) == 0 {
		fmt.Fprintln(out, "No employees matched.")
		return nil
	}

	enc := encoder.New()
	for _, m := range matches {
		doc, err := enc.Render(m)
		if err != nil {
			fmt.Fprintf(out, "%s (incomplete record: %v)\n", m.Name, err)
			continue
		}
		fmt.Fprintln(out, doc)
	}
	fmt.Fprintf(out, "\n%d employee(s)\n", len(matches))
	return nil
}
