package pipeline

import (
	"context"
	"time"

	"github.com/envforge/envforge/internal/compose"
	"github.com/envforge/envforge/internal/config"
	"github.com/envforge/envforge/internal/monitor"
	"github.com/envforge/envforge/internal/platform/cloudformation"
)

// Submitter hands fully rendered root templates to the deployment service.
type Submitter interface {
	Submit(ctx context.Context, sub cloudformation.Submission) (string, error)
}

// Context carries all shared dependencies and state through a run.
type Context struct {
	context.Context

	// Config is the validated environment configuration.
	Config *config.Config

	// State accumulates the products of each phase.
	State *State

	// Publisher stores rendered template bodies and returns their locations.
	Publisher compose.Publisher

	// Submitter submits the root stack. Nil for render-only runs.
	Submitter Submitter

	// Transport provides the notification channel pair. Nil for
	// render-only runs.
	Transport monitor.Transport

	// Observer receives structured run events.
	Observer Observer

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// NewContext creates a run context with the given dependencies.
func NewContext(ctx context.Context, cfg *config.Config, publisher compose.Publisher, observer Observer) *Context {
	if observer == nil {
		observer = NewConsoleObserver()
	}
	return &Context{
		Context:   ctx,
		Config:    cfg,
		State:     &State{},
		Publisher: publisher,
		Observer:  observer,
		Clock:     time.Now,
	}
}

func (c *Context) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
