package compose

import (
	"fmt"
	"strings"
)

// BindingResolutionError reports a declared child parameter with no
// resolvable source. Composition of the child and its ancestors-in-progress
// is aborted; no artifact is published for any of them.
type BindingResolutionError struct {
	Parameter string
	Child     string
}

func (e *BindingResolutionError) Error() string {
	return fmt.Sprintf("no binding source for parameter %q of template %q", e.Parameter, e.Child)
}

// CompositionCycleError reports a template hierarchy that lists one of its
// ancestors as a descendant.
type CompositionCycleError struct {
	// Chain is the active ancestor-name chain ending in the repeated name.
	Chain []string
}

func (e *CompositionCycleError) Error() string {
	return fmt.Sprintf("template composition cycle: %s", strings.Join(e.Chain, " -> "))
}
