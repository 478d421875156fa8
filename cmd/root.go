package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/splitwatch/internal/config"
	"github.com/fakeyudi/splitwatch/internal/logging"
)

var (
	// cfg holds the merged configuration, populated in PersistentPreRunE.
	cfg config.Config

	logger = zap.NewNop()

	logFileFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "splitwatch",
	Short: "Time a document review page by page and keep notes as you go",
	Long: `splitwatch is a stopwatch for reading. Start the clock, press space each
time you finish a page, and jot a note against any page. Every stop writes a
report with the total time, one split per page and your notes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-file") {
			c.LogFile = logFileFlag
		}
		if cmd.Flags().Changed("log-level") {
			c.LogLevel = logLevelFlag
		}
		cfg = c

		l, err := logging.New(logging.Options{Path: cfg.LogFile, Level: cfg.LogLevel})
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("config resolved",
			zap.String("command", cmd.Name()),
			zap.String("output_dir", cfg.OutputDir),
			zap.String("format", cfg.DefaultFormat))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "splitwatch:", err)
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", `log file path ("-" disables logging)`)
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
}
