package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askQuery string

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask for a staffing recommendation",
	Long: `Run one query through retrieval and generation and print the answer.
The answer is always a single text, also when no employee matches or the
model server cannot be reached.

Examples:
  staffrag ask -q "Who can lead a React storefront rewrite?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question (required)")
	askCmd.MarkFlagRequired("query")
}

func runAsk(cmd *cobra.Command, args []string) error {
	deps, err := loadDependencies(cmd, false)
	if err != nil {
		return err
	}

	answer := deps.Pipeline.ProcessQuery(cmd.Context(), askQuery)
	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	return nil
}
