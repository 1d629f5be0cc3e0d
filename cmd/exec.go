package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/spencertipping/pipesh/core"
	"github.com/spencertipping/pipesh/core/logger"
	"github.com/spencertipping/pipesh/core/proc"
)

// execCmd dispatches one line without entering the interactive loop.
var execCmd = &cobra.Command{
	Use:   "exec WORD...",
	Short: "Dispatch a single command line and exit.",
	Long: `Dispatches the given words exactly as if they had been typed as one
line in the interactive loop, including "|" pipeline handling.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		logFd, err := configuration.OpenEventLog()
		if err != nil {
			return err
		}
		defer logFd.Close()

		shell := core.NewDispatcher(configuration, logger.NewJSONLinesRecorder(logFd), proc.Stdio{})
		shell.Dispatch(strings.Join(args, " "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(execCmd)
}
