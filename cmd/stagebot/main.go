// Package main provides the stagebot command: a webhook server and a one-shot
// CI action that keep pull request review stages in sync.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appConfig "github.com/festy23/stagebot/internal/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stagebot",
		Short: "Keeps an \"awaiting <stage>\" label on every pull request",
		Long: `stagebot tracks where each pull request stands in review and keeps exactly one
"awaiting ..." label on it, driven by forge webhook events.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return appConfig.LoadDotEnv(envFile)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional .env file; real environment variables take precedence")

	cmd.AddCommand(newServeCmd(), newActionCmd())
	return cmd
}
