package commands

import (
	"github.com/spf13/cobra"

	"github.com/envforge/envforge/cmd/envforge/handlers"
)

// Deploy returns the command for deploying the environment.
//
// This command renders and publishes the template hierarchy to the
// configured bucket, submits the root stack with an ephemeral notification
// channel attached, and watches status events until the stack reaches a
// terminal state. The notification channel is always removed afterwards.
//
// Optional flags:
//
//	--config, -c: Path to configuration file (default: envforge.yaml)
func Deploy() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the environment and watch it to completion",
		Long: `Deploy the environment root stack and watch its progress.

The rendered templates are published to the configured bucket first, so
the deployment service fetches exactly the tree that was composed. Status
notifications stream through a run-scoped channel pair that is created
before submission and deleted when the watch ends, whatever the outcome.

Examples:
  # Deploy using envforge.yaml in the current directory
  envforge deploy

  # Deploy a specific config
  envforge deploy -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	return cmd
}
