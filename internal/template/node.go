// Package template models composable infrastructure templates: declared
// parameters, resources, outputs and mappings, plus deterministic JSON
// rendering with an embedded content hash.
package template

// Parameter is a declared template input.
type Parameter struct {
	Name                  string
	Type                  string
	Description           string
	Default               string
	AllowedPattern        string
	ConstraintDescription string
	MinLength             int
	MaxLength             int
}

// Resource is a declared resource body. Properties values may be plain Go
// values or template Values.
type Resource struct {
	ID         string
	Kind       string
	Properties map[string]any
	DependsOn  []string
}

// Output publishes a value to parent stacks and later siblings.
type Output struct {
	Name        string
	Value       Value
	Description string
}

// Node is one template in the composition tree. Parameters, resources and
// outputs keep their insertion order so rendering and binding resolution are
// deterministic.
type Node struct {
	Name        string
	Description string

	params        map[string]Parameter
	paramOrder    []string
	resources     map[string]Resource
	resourceOrder []string
	outputs       map[string]Output
	outputOrder   []string

	// Mappings is mapName -> topKey -> secondKey -> value.
	Mappings map[string]map[string]map[string]string

	Children []*Node
	// Parent is a back-pointer only; the parent owns the child, never the
	// other way around.
	Parent *Node

	// BoundParams is set during composition: the concrete value the parent
	// passes for each declared parameter.
	BoundParams map[string]Value

	// Hash and Location are recorded once the rendered artifact has been
	// published.
	Hash     string
	Location string
}

// NewNode creates an empty template node.
func NewNode(name string) *Node {
	return &Node{
		Name:        name,
		params:      make(map[string]Parameter),
		resources:   make(map[string]Resource),
		outputs:     make(map[string]Output),
		Mappings:    make(map[string]map[string]map[string]string),
		BoundParams: make(map[string]Value),
	}
}

// AddParameter declares a parameter, replacing any previous declaration of
// the same name.
func (n *Node) AddParameter(p Parameter) {
	if _, exists := n.params[p.Name]; !exists {
		n.paramOrder = append(n.paramOrder, p.Name)
	}
	n.params[p.Name] = p
}

// AddParameterIdempotent declares a parameter only if the name is not taken.
// It reports whether the parameter was added.
func (n *Node) AddParameterIdempotent(p Parameter) bool {
	if _, exists := n.params[p.Name]; exists {
		return false
	}
	n.AddParameter(p)
	return true
}

// RemoveParameter drops a declared parameter. Used by builders that declare
// the common child parameters and then satisfy some of them locally.
func (n *Node) RemoveParameter(name string) {
	if _, exists := n.params[name]; !exists {
		return
	}
	delete(n.params, name)
	for i, existing := range n.paramOrder {
		if existing == name {
			n.paramOrder = append(n.paramOrder[:i], n.paramOrder[i+1:]...)
			break
		}
	}
}

// HasParameter reports whether a parameter is declared.
func (n *Node) HasParameter(name string) bool {
	_, ok := n.params[name]
	return ok
}

// Parameter returns a declared parameter by name.
func (n *Node) Parameter(name string) (Parameter, bool) {
	p, ok := n.params[name]
	return p, ok
}

// Parameters returns the declared parameters in declaration order.
func (n *Node) Parameters() []Parameter {
	out := make([]Parameter, 0, len(n.paramOrder))
	for _, name := range n.paramOrder {
		out = append(out, n.params[name])
	}
	return out
}

// AddResource declares a resource, replacing any previous declaration with
// the same logical id.
func (n *Node) AddResource(r Resource) {
	if _, exists := n.resources[r.ID]; !exists {
		n.resourceOrder = append(n.resourceOrder, r.ID)
	}
	n.resources[r.ID] = r
}

// HasResource reports whether a resource with the logical id is declared.
func (n *Node) HasResource(id string) bool {
	_, ok := n.resources[id]
	return ok
}

// Resource returns a declared resource by logical id.
func (n *Node) Resource(id string) (Resource, bool) {
	r, ok := n.resources[id]
	return r, ok
}

// Resources returns the declared resources in declaration order.
func (n *Node) Resources() []Resource {
	out := make([]Resource, 0, len(n.resourceOrder))
	for _, id := range n.resourceOrder {
		out = append(out, n.resources[id])
	}
	return out
}

// AddOutput declares an output, replacing any previous declaration of the
// same name.
func (n *Node) AddOutput(o Output) {
	if _, exists := n.outputs[o.Name]; !exists {
		n.outputOrder = append(n.outputOrder, o.Name)
	}
	n.outputs[o.Name] = o
}

// RemoveOutput drops a declared output.
func (n *Node) RemoveOutput(name string) {
	if _, exists := n.outputs[name]; !exists {
		return
	}
	delete(n.outputs, name)
	for i, existing := range n.outputOrder {
		if existing == name {
			n.outputOrder = append(n.outputOrder[:i], n.outputOrder[i+1:]...)
			break
		}
	}
}

// Output returns a declared output by name.
func (n *Node) Output(name string) (Output, bool) {
	o, ok := n.outputs[name]
	return o, ok
}

// Outputs returns the declared outputs in declaration order.
func (n *Node) Outputs() []Output {
	out := make([]Output, 0, len(n.outputOrder))
	for _, name := range n.outputOrder {
		out = append(out, n.outputs[name])
	}
	return out
}

// AddMapping sets a template mapping, replacing any previous mapping with
// the same name.
func (n *Node) AddMapping(name string, values map[string]map[string]string) {
	n.Mappings[name] = values
}

// AddChild attaches a child template and sets its parent back-pointer.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Merge folds another template's declarations into this one, skipping
// parameters, resources and outputs that are already declared. Mappings are
// merged key by key.
func (n *Node) Merge(other *Node) {
	for _, p := range other.Parameters() {
		n.AddParameterIdempotent(p)
	}
	for _, r := range other.Resources() {
		if !n.HasResource(r.ID) {
			n.AddResource(r)
		}
	}
	for _, o := range other.Outputs() {
		if _, exists := n.outputs[o.Name]; !exists {
			n.AddOutput(o)
		}
	}
	for name, values := range other.Mappings {
		if _, exists := n.Mappings[name]; !exists {
			n.Mappings[name] = values
		}
	}
}
