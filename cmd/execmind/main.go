package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	workspace   string
	timeout     time.Duration
	metricsAddr string

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "execmind",
	Short: "execmind - idea framing, novelty research and scoring",
	Long: `execmind takes a raw product idea, typed or recorded, and walks it through:
  1. Framing: the model restates the idea until you confirm it
  2. Research: recent internal ideas and the web are checked for prior art
  3. Structuring: the idea is saved as problem, solution, users and assumptions
  4. Scoring: five ratings and a deterministic final score

Run without arguments to start the interactive session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			logger = zap.NewNop()
			return nil
		}
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runInteractive,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent ideas, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [idea-id]",
	Short: "Show one idea and every evaluation of it",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [idea-id]",
	Short: "Score an existing idea again",
	Long: `Runs the scoring step against a stored idea and records a new evaluation.
Earlier evaluations are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

var tracesCmd = &cobra.Command{
	Use:   "traces",
	Short: "Show recent gateway calls",
	Args:  cobra.NoArgs,
	RunE:  runTraces,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/.execmind/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-call gateway timeout (default: llm.timeout from config)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	listCmd.Flags().Int("limit", 20, "Maximum ideas to list")
	tracesCmd.Flags().Int("limit", 10, "Maximum traces to show")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
