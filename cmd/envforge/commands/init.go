package commands

import (
	"github.com/spf13/cobra"

	"github.com/envforge/envforge/cmd/envforge/handlers"
	"github.com/envforge/envforge/internal/config"
)

// Init returns the command for writing a starter environment configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "envforge.yaml")
//	--name, -n: Environment name embedded in the generated config
//	--force: Overwrite an existing file
func Init() *cobra.Command {
	var (
		outputPath string
		name       string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter environment configuration",
		Long: `Write a commented starter configuration file.

The generated file declares the environment name, the network address
space and its subnet layers, and the deployment timeouts. Edit it, then
run 'envforge create' to render the templates locally or
'envforge deploy' to deploy the environment.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath, name, force)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")
	cmd.Flags().StringVarP(&name, "name", "n", "myenv", "Environment name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}
