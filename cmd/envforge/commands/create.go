package commands

import (
	"github.com/spf13/cobra"

	"github.com/envforge/envforge/cmd/envforge/handlers"
)

// Create returns the command for rendering the template hierarchy locally.
//
// This command plans the address space, builds and composes the template
// tree, and writes the rendered artifacts to the configured output
// directory. Nothing touches the cloud provider.
//
// Optional flags:
//
//	--config, -c: Path to configuration file (default: envforge.yaml)
//	--output, -o: Output directory, overriding the configured one
func Create() *cobra.Command {
	var (
		configPath string
		outputDir  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Render the environment templates to a local directory",
		Long: `Render the whole environment template hierarchy locally.

This runs every step of a deployment except deployment itself:

  1. Allocates subnet address blocks across availability zones
  2. Builds the root and base network templates
  3. Resolves every child parameter to its binding source
  4. Renders and writes the content-addressed template files

Examples:
  # Render using envforge.yaml in the current directory
  envforge create

  # Render a specific config to a specific directory
  envforge create -c production.yaml -o /tmp/templates`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), configPath, outputDir)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for rendered templates")

	return cmd
}
