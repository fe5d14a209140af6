// Package pipeline sequences the phases that turn a validated environment
// configuration into deployed infrastructure: plan the address space, build
// the template tree, compose and publish it, then submit and watch the root
// stack. Render-only runs stop after composition.
package pipeline

import (
	"fmt"
	"time"
)

// Phase is one step of a run. Phases communicate through the shared Context
// and its State; a failing phase aborts the run.
type Phase interface {
	Name() string
	Run(ctx *Context) error
}

// RunPhases executes all phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting run with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Run(ctx); err != nil {
			ctx.Observer.Printf("[%s] failed: %v", name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
	}

	ctx.Observer.Printf("Run completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// RenderPhases returns the phases of a render-only run: the templates are
// planned, built, composed and published, but nothing is submitted.
func RenderPhases() []Phase {
	return []Phase{
		&PlanAddresses{},
		&BuildTemplates{},
		&ComposeGraph{},
	}
}

// DeployPhases returns the phases of a full deployment run.
func DeployPhases() []Phase {
	return append(RenderPhases(), &SubmitAndWatch{})
}
