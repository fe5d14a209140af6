package builders

import (
	"github.com/envforge/envforge/internal/template"
)

// BuildRoot constructs the root environment template. It declares the
// environment-wide inputs with their configured defaults; everything else
// children need is satisfied by the network template's outputs during
// composition.
func BuildRoot(envName, vpcCidr, bucket string) *template.Node {
	n := template.NewNode(envName)
	n.Description = "Environment root stack for " + envName

	n.AddParameter(template.Parameter{
		Name:                  "vpcCidr",
		Type:                  "String",
		Description:           "CIDR of the VPC network",
		Default:               vpcCidr,
		AllowedPattern:        template.CIDRPattern,
		ConstraintDescription: template.CIDRConstraint,
	})
	n.AddParameter(template.Parameter{
		Name:        "utilityBucket",
		Type:        "String",
		Description: "Name of the S3 bucket used for infrastructure utility",
		Default:     bucket,
	})

	n.AddOutput(template.Output{
		Name:  "environmentName",
		Value: template.String(envName),
	})

	return n
}
