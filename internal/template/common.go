package template

import "fmt"

const (
	// AZParameterPrefix is the naming convention for availability-zone
	// parameters; the binding resolver gives it special treatment.
	AZParameterPrefix = "availabilityZone"

	// CIDRPattern constrains CIDR-valued string parameters.
	CIDRPattern = `(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})/(\d{1,2})`

	// CIDRConstraint is the human-readable constraint for CIDRPattern.
	CIDRConstraint = "must be a valid IP CIDR range of the form x.x.x.x/x."
)

// AZParameterName returns the conventional parameter name for the Nth
// availability zone.
func AZParameterName(index int) string {
	return fmt.Sprintf("%s%d", AZParameterPrefix, index)
}

// SubnetParameterName returns the conventional parameter name for the Nth
// subnet of a role, e.g. "privateSubnet0".
func SubnetParameterName(role string, index int) string {
	return fmt.Sprintf("%sSubnet%d", role, index)
}

// SubnetResourceName returns the conventional logical id for the subnet
// resource of a layer in one availability zone, e.g. "myPrivateAZ0".
func SubnetResourceName(layer string, az int) string {
	return fmt.Sprintf("%sAZ%d", layer, az)
}

// AddCommonChildParameters declares the parameter surface every child
// template shares: the network identity, the common security group, the
// utility bucket, one subnet id per role and zone, and one availability-zone
// name per zone.
func AddCommonChildParameters(n *Node, roles []string, subnetCount int) {
	n.AddParameterIdempotent(Parameter{
		Name:                  "vpcCidr",
		Type:                  "String",
		Description:           "CIDR of the VPC network",
		AllowedPattern:        CIDRPattern,
		ConstraintDescription: CIDRConstraint,
	})
	n.AddParameterIdempotent(Parameter{
		Name:        "vpcId",
		Type:        "String",
		Description: "ID of the VPC network",
	})
	n.AddParameterIdempotent(Parameter{
		Name:        "commonSecurityGroup",
		Type:        "String",
		Description: "Security Group ID of the common security group for this environment",
	})
	n.AddParameterIdempotent(Parameter{
		Name:        "utilityBucket",
		Type:        "String",
		Description: "Name of the S3 bucket used for infrastructure utility",
	})

	for _, role := range roles {
		for i := 0; i < subnetCount; i++ {
			n.AddParameterIdempotent(Parameter{
				Name:        SubnetParameterName(role, i),
				Type:        "String",
				Description: fmt.Sprintf("ID of %s subnet %d", role, i),
			})
		}
	}
	for i := 0; i < subnetCount; i++ {
		n.AddParameterIdempotent(Parameter{
			Name:        AZParameterName(i),
			Type:        "String",
			Description: fmt.Sprintf("Availability Zone %d", i),
		})
	}
}
