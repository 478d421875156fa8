package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fakeyudi/splitwatch/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure splitwatch (re-run anytime to edit settings)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		// The global file alone seeds the prompts; project and env overrides
		// are not written back.
		existing, err := config.LoadGlobal()
		if err != nil {
			return fmt.Errorf("loading global config: %w", err)
		}

		c, err := config.RunSetup(existing, cmd.InOrStdin(), out)
		if err != nil {
			return fmt.Errorf("setup cancelled: %w", err)
		}
		c.LogFile = existing.LogFile

		path, err := config.Save(c)
		if err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		logger.Info("config saved", zap.String("path", path))

		fmt.Fprintf(out, "  ✓ Saved %s\n", path)
		fmt.Fprintln(out, "  Run 'splitwatch run <document>' to start a review.")
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
