package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"staffrag/config"
	"staffrag/internal/app"
	"staffrag/internal/observability"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logger   *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "staffrag",
	Short: "Staffing assistant - find the best employees for a project",
	Long: `staffrag answers staffing questions over a small employee dataset.
Each query is embedded, matched against a vector index of employee profiles,
and the closest candidates are handed to a language model for a recommendation.

Example usage:
  staffrag serve                          # Start the HTTP API on :8000
  staffrag ask -q "python dev for ML"     # One recommendation
  staffrag query -q "kubernetes" -k 5     # Nearest employees with distances
  staffrag search -q "part-time"          # Substring filter
  staffrag import -i employees.json -o employees.db`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := config.LoadEnv(rootDir); err != nil {
			return err
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return fmt.Errorf("failed to apply environment: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./staffrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// loadDependencies builds the pipeline for a command. The index build
// reports progress on stderr unless skipIndex is set.
func loadDependencies(cmd *cobra.Command, skipIndex bool) (*app.Dependencies, error) {
	opts := app.Options{
		RootDir:   GetRootDir(),
		SkipIndex: skipIndex,
	}
	if !skipIndex {
		opts.Progress = newProgress("Indexing")
	}

	deps, err := app.New(cmd.Context(), GetConfig(), logger, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return deps, nil
}
