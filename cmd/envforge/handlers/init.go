package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/envforge/envforge/internal/config"
)

// Init handles the init command. It writes a commented starter
// configuration to outputPath and refuses to overwrite an existing file
// unless force is set.
func Init(_ context.Context, outputPath, name string, force bool) error {
	if name == "" {
		return fmt.Errorf("environment name must not be empty")
	}

	if _, err := os.Stat(outputPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", outputPath)
	}

	if err := config.WriteDefault(outputPath, name); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", outputPath)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Review and edit the configuration\n")
	fmt.Printf("  2. Run 'envforge create' to render the templates locally\n")
	fmt.Printf("  3. Run 'envforge deploy' to deploy the environment\n")
	return nil
}
