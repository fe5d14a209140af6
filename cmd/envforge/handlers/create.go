package handlers

import (
	"context"
	"fmt"

	"github.com/envforge/envforge/internal/compose"
	"github.com/envforge/envforge/internal/pipeline"
)

// Create handles the create command. It runs the render phases against a
// local directory publisher: the address space is planned, the template
// tree is built and composed, and every rendered artifact is written under
// the output directory. Nothing is submitted anywhere.
func Create(ctx context.Context, configPath, outputDir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if outputDir == "" {
		outputDir = cfg.Environment.OutputDir
	}

	publisher := &compose.DirPublisher{Dir: outputDir}
	pctx := pipeline.NewContext(ctx, cfg, publisher, nil)

	if err := pipeline.RunPhases(pctx, pipeline.RenderPhases()); err != nil {
		return err
	}

	fmt.Printf("\nRendered %d templates to %s\n", len(pctx.State.Plan.Stacks)+1, outputDir)
	for _, stack := range pctx.State.Plan.Stacks {
		fmt.Printf("  %s\n", stack.Location)
	}
	fmt.Printf("  %s\n", pctx.State.RootLocation)
	return nil
}
