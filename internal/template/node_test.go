package template

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddParameterIdempotent(t *testing.T) {
	t.Parallel()

	n := NewNode("t")
	assert.True(t, n.AddParameterIdempotent(Parameter{Name: "vpcId", Type: "String"}))
	assert.False(t, n.AddParameterIdempotent(Parameter{Name: "vpcId", Type: "Number"}))

	p, ok := n.Parameter("vpcId")
	require.True(t, ok)
	assert.Equal(t, "String", p.Type, "second declaration must not overwrite the first")
}

func TestParameterOrderIsStable(t *testing.T) {
	t.Parallel()

	n := NewNode("t")
	names := []string{"zeta", "alpha", "mu", "beta"}
	for _, name := range names {
		n.AddParameter(Parameter{Name: name, Type: "String"})
	}

	got := make([]string, 0, len(names))
	for _, p := range n.Parameters() {
		got = append(got, p.Name)
	}
	assert.Equal(t, names, got)
}

func TestRemoveParameter(t *testing.T) {
	t.Parallel()

	n := NewNode("t")
	n.AddParameter(Parameter{Name: "a", Type: "String"})
	n.AddParameter(Parameter{Name: "b", Type: "String"})
	n.RemoveParameter("a")

	assert.False(t, n.HasParameter("a"))
	require.Len(t, n.Parameters(), 1)
	assert.Equal(t, "b", n.Parameters()[0].Name)

	// Removing an undeclared parameter is a no-op.
	n.RemoveParameter("missing")
	assert.Len(t, n.Parameters(), 1)
}

func TestAddChildSetsParent(t *testing.T) {
	t.Parallel()

	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	require.Len(t, parent.Children, 1)
	assert.Same(t, parent, child.Parent)
}

func TestMergeSkipsExistingDeclarations(t *testing.T) {
	t.Parallel()

	dst := NewNode("dst")
	dst.AddParameter(Parameter{Name: "shared", Type: "String"})
	dst.AddResource(Resource{ID: "kept", Kind: "AWS::EC2::Route"})

	src := NewNode("src")
	src.AddParameter(Parameter{Name: "shared", Type: "Number"})
	src.AddParameter(Parameter{Name: "extra", Type: "String"})
	src.AddResource(Resource{ID: "kept", Kind: "AWS::EC2::Subnet"})
	src.AddResource(Resource{ID: "nat", Kind: "AWS::EC2::Instance"})
	src.AddOutput(Output{Name: "natId", Value: Ref("nat")})

	dst.Merge(src)

	p, _ := dst.Parameter("shared")
	assert.Equal(t, "String", p.Type)
	assert.True(t, dst.HasParameter("extra"))

	r, _ := dst.Resource("kept")
	assert.Equal(t, "AWS::EC2::Route", r.Kind)
	assert.True(t, dst.HasResource("nat"))

	_, ok := dst.Output("natId")
	assert.True(t, ok)
}

func TestValueMarshaling(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"literal", String("hello"), `"hello"`},
		{"ref", Ref("vpc"), `{"Ref":"vpc"}`},
		{"getatt", GetAtt{Target: "ChildStack", Attribute: "Outputs.vpcId"}, `{"Fn::GetAtt":["ChildStack","Outputs.vpcId"]}`},
		{"findinmap", FindInMap{Map: "networkAddresses", TopKey: "vpcBase", SecondKey: "cidr"}, `{"Fn::FindInMap":["networkAddresses","vpcBase","cidr"]}`},
		{"selectaz", SelectAZ(2), `{"Fn::Select":["2",{"Fn::GetAZs":""}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestAddCommonChildParameters(t *testing.T) {
	t.Parallel()

	n := NewNode("child")
	AddCommonChildParameters(n, []string{"public", "private"}, 2)

	for _, name := range []string{
		"vpcCidr", "vpcId", "commonSecurityGroup", "utilityBucket",
		"publicSubnet0", "publicSubnet1", "privateSubnet0", "privateSubnet1",
		"availabilityZone0", "availabilityZone1",
	} {
		assert.True(t, n.HasParameter(name), "missing %s", name)
	}
}
