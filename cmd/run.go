package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/spencertipping/pipesh/core"
	"github.com/spencertipping/pipesh/core/logger"
	"github.com/spencertipping/pipesh/core/proc"
)

// runCmd starts the interactive read-dispatch-report loop.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive loop on the current terminal.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd)
	},
}

func runShell(cmd *cobra.Command) error {
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

	shell, err := core.NewShell(configuration, logger.NewJSONLinesRecorder(logFd), proc.Stdio{})
	if err != nil {
		return err
	}
	defer func() {
		if err := shell.Close(); err != nil {
			log.Printf("closing shell: %v", err)
		}
	}()

	return shell.Run()
}

func init() {
	rootCmd.AddCommand(runCmd)
}
