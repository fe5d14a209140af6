// Package compose wires a tree of independently built templates together.
// The binding resolver maps every declared input parameter of a child
// template to exactly one concrete source; the graph builder drives the
// recursive composition and publication of the bound tree.
package compose

import (
	"strconv"
	"strings"

	"github.com/envforge/envforge/internal/template"
)

// SourceKind tags where a binding's value comes from. The kinds mirror the
// fixed resolution precedence: manual override, AZ naming convention, parent
// parameter, parent resource, sibling output, and finally propagation of the
// parameter up to the parent.
type SourceKind string

const (
	SourceManualOverride  SourceKind = "manual-override"
	SourceConventionAZ    SourceKind = "convention-az"
	SourceParentParameter SourceKind = "parent-parameter"
	SourceParentResource  SourceKind = "parent-resource"
	SourceSiblingOutput   SourceKind = "sibling-output"
	SourcePropagated      SourceKind = "propagated-parameter"
)

// BindingSource describes the resolved origin of one bound parameter.
type BindingSource struct {
	Kind SourceKind

	// AZIndex is set for SourceConventionAZ.
	AZIndex int

	// Ref names the parent parameter or resource backing the binding for
	// SourceParentParameter, SourceParentResource and SourcePropagated.
	Ref string

	// StackName and OutputName identify the published sibling output for
	// SourceSiblingOutput.
	StackName  string
	OutputName string
}

// Binding pairs one declared child parameter with its source and the
// concrete value passed to the child stack.
type Binding struct {
	Parameter string
	Source    BindingSource
	Value     template.Value
}

// BindingMap is the ordered result of resolving one child template, in the
// child's parameter declaration order.
type BindingMap struct {
	Bindings []Binding

	// DependsOn lists the stack resources of siblings referenced via
	// published outputs; the provider must provision those first.
	DependsOn []string
}

// Lookup returns the binding for a parameter name.
func (m *BindingMap) Lookup(name string) (Binding, bool) {
	for _, b := range m.Bindings {
		if b.Parameter == name {
			return b, true
		}
	}
	return Binding{}, false
}

// add appends one binding and records the sibling stack dependency it
// introduces, deduplicated.
func (m *BindingMap) add(b Binding) {
	m.Bindings = append(m.Bindings, b)
	if b.Source.Kind != SourceSiblingOutput {
		return
	}
	id := StackResourceID(b.Source.StackName)
	for _, existing := range m.DependsOn {
		if existing == id {
			return
		}
	}
	m.DependsOn = append(m.DependsOn, id)
}

// Values returns the parameter-name-to-value map passed to the child stack.
func (m *BindingMap) Values() map[string]template.Value {
	values := make(map[string]template.Value, len(m.Bindings))
	for _, b := range m.Bindings {
		values[b.Parameter] = b.Value
	}
	return values
}

// StackResourceID returns the logical id of the nested stack resource
// declared for a child template.
func StackResourceID(templateName string) string {
	return templateName + "Stack"
}

// StackResourceKind is the resource kind of a nested stack.
const StackResourceKind = "AWS::CloudFormation::Stack"

// DefaultAZRole is the subnet role backing the availabilityZone<N> naming
// convention unless configuration overrides it.
const DefaultAZRole = "private"

// Resolver resolves child parameters against a parent context. It carries
// the per-run state the resolution rules need: manual overrides, the AZ
// reference role, and the outputs published by already-resolved siblings.
type Resolver struct {
	overrides map[string]template.Value
	azRole    string

	published  map[string]map[string]template.Value
	stackOrder []string
}

// NewResolver creates a resolver with the given manual overrides. azRole
// selects the subnet role backing the availabilityZone<N> convention; empty
// means DefaultAZRole.
func NewResolver(overrides map[string]template.Value, azRole string) *Resolver {
	if azRole == "" {
		azRole = DefaultAZRole
	}
	return &Resolver{
		overrides: overrides,
		azRole:    azRole,
		published: make(map[string]map[string]template.Value),
	}
}

// Resolve binds every declared parameter of child to exactly one source,
// first match in precedence order winning. As a side effect it may declare
// propagated parameters on parent, and it registers child's outputs so that
// later siblings can reference them. A parameter with no applicable source
// fails the whole resolution; no partial binding map is returned.
func (r *Resolver) Resolve(parent, child *template.Node) (*BindingMap, error) {
	result := &BindingMap{}

	for _, param := range child.Parameters() {
		binding, err := r.resolveOne(parent, child, param)
		if err != nil {
			return nil, err
		}
		result.add(binding)
	}

	child.BoundParams = result.Values()
	r.registerOutputs(child)
	return result, nil
}

// resolvePropagated binds parameters that descendants declared on child
// after its own Resolve ran. Each one goes through the same precedence
// against child's parent, so a propagated parameter either finds a source
// here or climbs another level; at the root there is nowhere left to climb
// and resolution fails.
func (r *Resolver) resolvePropagated(parent, child *template.Node, resolved *BindingMap) error {
	for _, param := range child.Parameters() {
		if _, ok := resolved.Lookup(param.Name); ok {
			continue
		}
		binding, err := r.resolveOne(parent, child, param)
		if err != nil {
			return err
		}
		resolved.add(binding)
	}
	child.BoundParams = resolved.Values()
	return nil
}

func (r *Resolver) resolveOne(parent, child *template.Node, param template.Parameter) (Binding, error) {
	name := param.Name

	if value, ok := r.overrides[name]; ok {
		return Binding{
			Parameter: name,
			Source:    BindingSource{Kind: SourceManualOverride},
			Value:     value,
		}, nil
	}

	if az, ok := azConventionIndex(name); ok {
		subnet := template.SubnetParameterName(r.azRole, az)
		return Binding{
			Parameter: name,
			Source:    BindingSource{Kind: SourceConventionAZ, AZIndex: az, Ref: subnet},
			Value:     template.GetAtt{Target: subnet, Attribute: "AvailabilityZone"},
		}, nil
	}

	if parent.HasParameter(name) {
		return Binding{
			Parameter: name,
			Source:    BindingSource{Kind: SourceParentParameter, Ref: name},
			Value:     template.Ref(name),
		}, nil
	}

	if parent.HasResource(name) {
		return Binding{
			Parameter: name,
			Source:    BindingSource{Kind: SourceParentResource, Ref: name},
			Value:     template.Ref(name),
		}, nil
	}

	// Published outputs of siblings composed strictly before this child, in
	// registration order.
	for _, stack := range r.stackOrder {
		if value, ok := r.published[stack][name]; ok {
			return Binding{
				Parameter: name,
				Source:    BindingSource{Kind: SourceSiblingOutput, StackName: stack, OutputName: name},
				Value:     value,
			}, nil
		}
	}

	// Propagate the parameter up so a grandparent can satisfy it when the
	// parent itself is bound. The deployment root has no grandparent, so an
	// unsatisfied parameter there is a hard failure rather than a latent
	// unbound input at submission time.
	if parent.Parent != nil {
		parent.AddParameterIdempotent(param)
		return Binding{
			Parameter: name,
			Source:    BindingSource{Kind: SourcePropagated, Ref: name},
			Value:     template.Ref(name),
		}, nil
	}

	return Binding{}, &BindingResolutionError{Parameter: name, Child: child.Name}
}

// registerOutputs publishes the child's declared outputs under its stack
// name. Only siblings resolved after this call can see them, which pins the
// strict left-to-right composition order.
func (r *Resolver) registerOutputs(child *template.Node) {
	outputs := child.Outputs()
	if len(outputs) == 0 {
		return
	}
	if _, seen := r.published[child.Name]; !seen {
		r.stackOrder = append(r.stackOrder, child.Name)
	}
	values := make(map[string]template.Value, len(outputs))
	for _, out := range outputs {
		values[out.Name] = template.GetAtt{
			Target:    StackResourceID(child.Name),
			Attribute: "Outputs." + out.Name,
		}
	}
	r.published[child.Name] = values
}

// azConventionIndex reports whether a parameter name follows the
// availabilityZone<N> convention and returns N.
func azConventionIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, template.AZParameterPrefix) {
		return 0, false
	}
	suffix := strings.TrimPrefix(name, template.AZParameterPrefix)
	if suffix == "" {
		return 0, false
	}
	index, err := strconv.Atoi(suffix)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}
