package compose

import (
	"context"
	"fmt"
	"time"

	"github.com/envforge/envforge/internal/template"
)

// Publisher stores a rendered template artifact and returns the location the
// deployed stack will fetch it from. Implementations are content-addressed:
// the location embeds the artifact hash so a stale upload can never be
// mistaken for the rendered tree.
type Publisher interface {
	Publish(ctx context.Context, name string, body []byte) (string, error)
}

// StackPlan is one deployable stack in the composed tree.
type StackPlan struct {
	Name      string
	Node      *template.Node
	Bindings  *BindingMap
	DependsOn []string
	Location  string
	Hash      string
}

// Plan is the dependency-ordered deployment plan: every stack appears after
// the stacks it embeds, so iterating in order always visits children first.
type Plan struct {
	Stacks []*StackPlan
}

// defaultStackTimeoutMinutes bounds how long the provider waits for one
// nested stack before rolling it back.
const defaultStackTimeoutMinutes = 60

// GraphBuilder drives recursive composition: resolve a child's bindings,
// recurse into its own children, then render and publish the child and
// declare its stack resource on the parent.
type GraphBuilder struct {
	Resolver  *Resolver
	Publisher Publisher

	// TimeoutMinutes is applied to every nested stack resource; zero means
	// the default.
	TimeoutMinutes int

	// Now supplies render timestamps; nil means time.Now. Tests inject a
	// fixed clock for byte-identical artifacts.
	Now func() time.Time
}

// Compose walks root's subtree, binds and publishes every descendant, and
// returns the deployment plan. On any error no further artifact is
// published: a failing subtree aborts its ancestors-in-progress before they
// render.
func (b *GraphBuilder) Compose(ctx context.Context, root *template.Node) (*Plan, error) {
	plan := &Plan{}
	chain := []string{root.Name}
	for _, child := range root.Children {
		if err := b.composeChild(ctx, root, child, chain, plan); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (b *GraphBuilder) composeChild(ctx context.Context, parent, child *template.Node, chain []string, plan *Plan) error {
	for _, ancestor := range chain {
		if ancestor == child.Name {
			return &CompositionCycleError{Chain: append(append([]string{}, chain...), child.Name)}
		}
	}

	// Pre-order: the child's bindings (including any parameters propagated
	// onto the parent) are established before its own children resolve, so
	// a grandchild can reference them.
	bindings, err := b.Resolver.Resolve(parent, child)
	if err != nil {
		return err
	}

	childChain := append(append([]string{}, chain...), child.Name)
	for _, grandchild := range child.Children {
		if err := b.composeChild(ctx, child, grandchild, childChain, plan); err != nil {
			return err
		}
	}

	// Grandchildren may have propagated parameters onto the child after its
	// own bindings were resolved. Bind those against the parent now so the
	// stack resource below passes them through, or climb another level.
	if err := b.Resolver.resolvePropagated(parent, child, bindings); err != nil {
		return err
	}

	// Post-order publication: the child's artifact must already contain the
	// stack resources of its own children.
	body, hash, err := template.Render(child, b.now())
	if err != nil {
		return err
	}
	location, err := b.Publisher.Publish(ctx, child.Name, body)
	if err != nil {
		return fmt.Errorf("failed to publish template %s: %w", child.Name, err)
	}
	child.Hash = hash
	child.Location = location

	parent.AddResource(template.Resource{
		ID:   StackResourceID(child.Name),
		Kind: StackResourceKind,
		Properties: map[string]any{
			"TemplateURL":      template.String(location),
			"Parameters":       bindings.Values(),
			"TimeoutInMinutes": b.timeoutMinutes(),
		},
		DependsOn: bindings.DependsOn,
	})

	plan.Stacks = append(plan.Stacks, &StackPlan{
		Name:      child.Name,
		Node:      child,
		Bindings:  bindings,
		DependsOn: bindings.DependsOn,
		Location:  location,
		Hash:      hash,
	})
	return nil
}

func (b *GraphBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *GraphBuilder) timeoutMinutes() int {
	if b.TimeoutMinutes > 0 {
		return b.TimeoutMinutes
	}
	return defaultStackTimeoutMinutes
}
