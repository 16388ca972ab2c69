package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"staffrag/internal/adapter/records"
	"staffrag/internal/adapter/store"
	"staffrag/internal/domain"
	"staffrag/internal/usecase"
)

const importBatchSize = 100

var (
	importInput  string
	importOutput string
	importAppend bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Validate JSON records and store them in a bbolt file",
	Long: `Read employee records from a JSON file or glob pattern, validate every
record and write them to a bbolt database usable as data.source.

Any invalid record aborts the import before anything is written.

Examples:
  staffrag import -i employees.json -o employees.db
  staffrag import -i "data/**/*.json" -o employees.db --append`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVarP(&importInput, "input", "i", "", "JSON file or pattern (required)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "employees.db", "bbolt database to write")
	importCmd.Flags().BoolVar(&importAppend, "append", false, "keep records already in the database")
	importCmd.MarkFlagRequired("input")
}

func runImport(cmd *cobra.Command, args []string) error {
	input := resolvePath(importInput)
	output := resolvePath(importOutput)

	res, err := importRecords(cmd.Context(), input, output, GetConfig().Data.Excludes, importAppend, newProgress("Importing"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nImported %d records into %s (%d total)\n", res.Written, output, res.Total)
	return nil
}

type importResult struct {
	Written int // records written by this import
	Total   int // records in the database afterwards
}

// importRecords validates every record of input and writes them to the
// database at output.
func importRecords(ctx context.Context, input, output string, excludes []string, appendMode bool, progress usecase.ProgressFunc) (importResult, error) {
	var res importResult
	recs, err := records.NewJSONSource(input, excludes).Records(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to read records: %w", err)
	}

	var invalid []error
	for i, rec := range recs {
		if err := rec.Validate(); err != nil {
			invalid = append(invalid, fmt.Errorf("record %d: %w", i, err))
		}
	}
	if len(invalid) > 0 {
		return res, fmt.Errorf("%d invalid record(s): %w", len(invalid), errors.Join(invalid...))
	}
	if len(recs) == 0 {
		return res, domain.ErrEmptyCorpus
	}

	st, err := store.NewBoltRecordStore(output)
	if err != nil {
		return res, err
	}
	defer st.Close()

	if !appendMode {
		if err := st.Reset(); err != nil {
			return res, fmt.Errorf("failed to reset %s: %w", output, err)
		}
	}

	for i := 0; i < len(recs); i += importBatchSize {
		end := i + importBatchSize
		if end > len(recs) {
			end = len(recs)
		}
		if err := st.Put(recs[i:end]); err != nil {
			return res, fmt.Errorf("failed to write records: %w", err)
		}
		res.Written = end
		if progress != nil {
			progress(end, len(recs))
		}
	}

	if res.Total, err = st.Count(); err != nil {
		return res, fmt.Errorf("failed to count records: %w", err)
	}
	return res, nil
}

func resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GetRootDir(), p)
}
