package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envforge/envforge/internal/template"
)

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	parent := template.NewNode("Root")
	parent.AddParameter(template.Parameter{Name: "vpcId", Type: "String"})
	parent.AddParameter(template.Parameter{Name: "sharedKey", Type: "String"})
	parent.AddResource(template.Resource{ID: "commonSecurityGroup", Kind: "AWS::EC2::SecurityGroup"})

	// An earlier sibling that already published an output.
	sibling := template.NewNode("Database")
	sibling.AddOutput(template.Output{Name: "dbEndpoint", Value: template.Ref("db")})

	child := template.NewNode("App")
	// sharedKey is overridden manually even though the parent declares it.
	child.AddParameter(template.Parameter{Name: "sharedKey", Type: "String"})
	child.AddParameter(template.Parameter{Name: "availabilityZone1", Type: "String"})
	child.AddParameter(template.Parameter{Name: "vpcId", Type: "String"})
	child.AddParameter(template.Parameter{Name: "commonSecurityGroup", Type: "String"})
	child.AddParameter(template.Parameter{Name: "dbEndpoint", Type: "String"})

	resolver := NewResolver(map[string]template.Value{"sharedKey": template.String("override")}, "")
	_, err := resolver.Resolve(parent, sibling)
	require.NoError(t, err)

	bindings, err := resolver.Resolve(parent, child)
	require.NoError(t, err)
	require.Len(t, bindings.Bindings, 5)

	byName := map[string]Binding{}
	for _, b := range bindings.Bindings {
		byName[b.Parameter] = b
	}

	assert.Equal(t, SourceManualOverride, byName["sharedKey"].Source.Kind)
	assert.Equal(t, template.String("override"), byName["sharedKey"].Value)

	az := byName["availabilityZone1"]
	assert.Equal(t, SourceConventionAZ, az.Source.Kind)
	assert.Equal(t, 1, az.Source.AZIndex)
	assert.Equal(t, template.GetAtt{Target: "privateSubnet1", Attribute: "AvailabilityZone"}, az.Value)

	assert.Equal(t, SourceParentParameter, byName["vpcId"].Source.Kind)
	assert.Equal(t, template.Ref("vpcId"), byName["vpcId"].Value)

	assert.Equal(t, SourceParentResource, byName["commonSecurityGroup"].Source.Kind)

	db := byName["dbEndpoint"]
	assert.Equal(t, SourceSiblingOutput, db.Source.Kind)
	assert.Equal(t, "Database", db.Source.StackName)
	assert.Equal(t, template.GetAtt{Target: "DatabaseStack", Attribute: "Outputs.dbEndpoint"}, db.Value)
	assert.Equal(t, []string{"DatabaseStack"}, bindings.DependsOn)
}

func TestResolveAZRoleConfigurable(t *testing.T) {
	t.Parallel()

	parent := template.NewNode("Root")
	child := template.NewNode("App")
	child.AddParameter(template.Parameter{Name: "availabilityZone0", Type: "String"})

	resolver := NewResolver(nil, "public")
	bindings, err := resolver.Resolve(parent, child)
	require.NoError(t, err)

	b, ok := bindings.Lookup("availabilityZone0")
	require.True(t, ok)
	assert.Equal(t, template.GetAtt{Target: "publicSubnet0", Attribute: "AvailabilityZone"}, b.Value)
}

func TestResolveAZConventionRequiresNumericSuffix(t *testing.T) {
	t.Parallel()

	// "availabilityZones" is not the convention; with no other source and a
	// root parent, it must fail instead of being misread as an AZ binding.
	parent := template.NewNode("Root")
	child := template.NewNode("App")
	child.AddParameter(template.Parameter{Name: "availabilityZones", Type: "String"})

	_, err := NewResolver(nil, "").Resolve(parent, child)
	var bindErr *BindingResolutionError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "availabilityZones", bindErr.Parameter)
}

func TestResolvePropagatesToNonRootParent(t *testing.T) {
	t.Parallel()

	root := template.NewNode("Root")
	mid := template.NewNode("Mid")
	root.AddChild(mid)

	child := template.NewNode("Leaf")
	child.AddParameter(template.Parameter{Name: "ec2Key", Type: "String", Description: "ssh key"})

	bindings, err := NewResolver(nil, "").Resolve(mid, child)
	require.NoError(t, err)

	b, ok := bindings.Lookup("ec2Key")
	require.True(t, ok)
	assert.Equal(t, SourcePropagated, b.Source.Kind)
	assert.Equal(t, template.Ref("ec2Key"), b.Value)

	// The parameter is now declared on the parent, description intact, so a
	// grandparent can satisfy it later.
	declared, ok := mid.Parameter("ec2Key")
	require.True(t, ok)
	assert.Equal(t, "ssh key", declared.Description)
}

func TestResolveFailsAtDeploymentRoot(t *testing.T) {
	t.Parallel()

	root := template.NewNode("Root")
	child := template.NewNode("App")
	child.AddParameter(template.Parameter{Name: "mysteryInput", Type: "String"})

	_, err := NewResolver(nil, "").Resolve(root, child)

	var bindErr *BindingResolutionError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "mysteryInput", bindErr.Parameter)
	assert.Equal(t, "App", bindErr.Child)
}

func TestResolveLaterSiblingOutputIsInvisible(t *testing.T) {
	t.Parallel()

	// App is composed before Database, so Database's output cannot satisfy
	// App's parameter: left-to-right order is a hard precondition.
	parent := template.NewNode("Root")

	app := template.NewNode("App")
	app.AddParameter(template.Parameter{Name: "dbEndpoint", Type: "String"})

	database := template.NewNode("Database")
	database.AddOutput(template.Output{Name: "dbEndpoint", Value: template.Ref("db")})

	resolver := NewResolver(nil, "")
	_, err := resolver.Resolve(parent, app)

	var bindErr *BindingResolutionError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "dbEndpoint", bindErr.Parameter)
}

func TestResolveDependsOnDeduplicated(t *testing.T) {
	t.Parallel()

	parent := template.NewNode("Root")

	database := template.NewNode("Database")
	database.AddOutput(template.Output{Name: "dbEndpoint", Value: template.Ref("db")})
	database.AddOutput(template.Output{Name: "dbPort", Value: template.Ref("db")})

	app := template.NewNode("App")
	app.AddParameter(template.Parameter{Name: "dbEndpoint", Type: "String"})
	app.AddParameter(template.Parameter{Name: "dbPort", Type: "String"})

	resolver := NewResolver(nil, "")
	_, err := resolver.Resolve(parent, database)
	require.NoError(t, err)

	bindings, err := resolver.Resolve(parent, app)
	require.NoError(t, err)
	assert.Equal(t, []string{"DatabaseStack"}, bindings.DependsOn)
}

func TestResolveSetsBoundParams(t *testing.T) {
	t.Parallel()

	parent := template.NewNode("Root")
	parent.AddParameter(template.Parameter{Name: "vpcId", Type: "String"})

	child := template.NewNode("App")
	child.AddParameter(template.Parameter{Name: "vpcId", Type: "String"})

	_, err := NewResolver(nil, "").Resolve(parent, child)
	require.NoError(t, err)
	assert.Equal(t, template.Ref("vpcId"), child.BoundParams["vpcId"])
}
