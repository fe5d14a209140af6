// Package builders constructs the template nodes for an environment: the
// root template and the base network template its children hang off.
package builders

import (
	"fmt"

	"github.com/envforge/envforge/internal/netplan"
	"github.com/envforge/envforge/internal/template"
)

// NetworkTemplateName is the name of the base network child template.
const NetworkTemplateName = "Network"

// networkAddressesMapping is the mapping embedding the planned allocation.
const networkAddressesMapping = "networkAddresses"

// BuildNetwork constructs the base network template: the VPC, an internet
// gateway, one subnet with routing per allocated block, NAT instances for
// private egress, and the environment's common security group. The planned
// allocation is embedded verbatim in the networkAddresses mapping so the
// rendered template is self-describing.
//
// azRole picks the subnet layer whose zone placement is exported through the
// availabilityZone<N> outputs.
func BuildNetwork(space netplan.NetworkSpace, subnets []netplan.AllocatedSubnet, azCount int, azRole string) *template.Node {
	n := template.NewNode(NetworkTemplateName)
	n.Description = "Base network infrastructure for this environment"

	roles := subnetRoles(subnets)
	template.AddCommonChildParameters(n, roles, azCount)
	// This template produces the network itself, so the common parameters it
	// satisfies for everyone else must not remain declared as inputs here.
	n.RemoveParameter("vpcCidr")
	n.RemoveParameter("vpcId")
	n.RemoveParameter("commonSecurityGroup")
	for _, role := range roles {
		for az := 0; az < azCount; az++ {
			n.RemoveParameter(template.SubnetParameterName(role, az))
		}
	}
	for az := 0; az < azCount; az++ {
		n.RemoveParameter(template.AZParameterName(az))
	}

	addNetworkAddresses(n, space, subnets)

	vpcCidr := template.FindInMap{Map: networkAddressesMapping, TopKey: "vpcBase", SecondKey: "cidr"}

	n.AddResource(template.Resource{
		ID:   "vpc",
		Kind: "AWS::EC2::VPC",
		Properties: map[string]any{
			"CidrBlock":          vpcCidr,
			"EnableDnsSupport":   true,
			"EnableDnsHostnames": true,
			"Tags":               []map[string]any{{"Key": "Name", "Value": template.String(n.Name)}},
		},
	})
	n.AddResource(template.Resource{
		ID:         "vpcIgw",
		Kind:       "AWS::EC2::InternetGateway",
		Properties: map[string]any{},
	})
	n.AddResource(template.Resource{
		ID:   "igwVpcAttachment",
		Kind: "AWS::EC2::VPCGatewayAttachment",
		Properties: map[string]any{
			"InternetGatewayId": template.Ref("vpcIgw"),
			"VpcId":             template.Ref("vpc"),
		},
	})

	addSubnets(n, subnets)
	addCommonSecurityGroup(n, vpcCidr)
	addOutputs(n, subnets, azCount, azRole, vpcCidr)

	return n
}

// addNetworkAddresses embeds the allocation map: vpcBase/cidr plus one
// AZ<n> row per zone with the layer-name to block assignments.
func addNetworkAddresses(n *template.Node, space netplan.NetworkSpace, subnets []netplan.AllocatedSubnet) {
	values := map[string]map[string]string{
		"vpcBase": {"cidr": space.CIDR},
	}
	for _, s := range subnets {
		azKey := fmt.Sprintf("AZ%d", s.AZ)
		if values[azKey] == nil {
			values[azKey] = make(map[string]string)
		}
		values[azKey][s.Name] = s.CIDR
	}
	n.AddMapping(networkAddressesMapping, values)
}

func addSubnets(n *template.Node, subnets []netplan.AllocatedSubnet) {
	// One NAT per zone serves every private subnet in that zone.
	natByAZ := make(map[int]string)

	for _, s := range subnets {
		subnetName := template.SubnetResourceName(s.Name, s.AZ)
		n.AddResource(template.Resource{
			ID:   subnetName,
			Kind: "AWS::EC2::Subnet",
			Properties: map[string]any{
				"AvailabilityZone": template.SelectAZ(s.AZ),
				"VpcId":            template.Ref("vpc"),
				"CidrBlock": template.FindInMap{
					Map:       networkAddressesMapping,
					TopKey:    fmt.Sprintf("AZ%d", s.AZ),
					SecondKey: s.Name,
				},
				"Tags": []map[string]any{
					{"Key": "network", "Value": template.String(s.Role)},
					{"Key": "Name", "Value": template.String(subnetName)},
				},
			},
		})

		routeTable := subnetName + "RouteTable"
		n.AddResource(template.Resource{
			ID:   routeTable,
			Kind: "AWS::EC2::RouteTable",
			Properties: map[string]any{
				"VpcId": template.Ref("vpc"),
			},
		})

		addSubnetEgress(n, s, subnets, routeTable, natByAZ)

		n.AddResource(template.Resource{
			ID:   subnetName + "EgressRouteTableAssociation",
			Kind: "AWS::EC2::SubnetRouteTableAssociation",
			Properties: map[string]any{
				"RouteTableId": template.Ref(routeTable),
				"SubnetId":     template.Ref(subnetName),
			},
		})
	}
}

// addSubnetEgress routes public subnets straight to the internet gateway and
// private subnets through a per-zone NAT instance placed in a public subnet
// of the same zone. Private subnets in a zone without a public subnet get no
// default route.
func addSubnetEgress(n *template.Node, s netplan.AllocatedSubnet, all []netplan.AllocatedSubnet, routeTable string, natByAZ map[int]string) {
	subnetName := template.SubnetResourceName(s.Name, s.AZ)

	switch s.Role {
	case "public":
		n.AddResource(template.Resource{
			ID:        subnetName + "EgressRoute",
			Kind:      "AWS::EC2::Route",
			DependsOn: []string{"igwVpcAttachment"},
			Properties: map[string]any{
				"DestinationCidrBlock": template.String("0.0.0.0/0"),
				"GatewayId":            template.Ref("vpcIgw"),
				"RouteTableId":         template.Ref(routeTable),
			},
		})

	case "private":
		natName, ok := natByAZ[s.AZ]
		if !ok {
			public, found := publicSubnetInAZ(all, s.AZ)
			if !found {
				return
			}
			natName = fmt.Sprintf("haNat%d", s.AZ)
			natByAZ[s.AZ] = natName
			n.AddResource(template.Resource{
				ID:   natName,
				Kind: "AWS::EC2::Instance",
				Properties: map[string]any{
					"SubnetId":        template.Ref(public),
					"SourceDestCheck": false,
					"Tags":            []map[string]any{{"Key": "Name", "Value": template.String(natName)}},
				},
			})
		}
		n.AddResource(template.Resource{
			ID:   subnetName + "EgressRoute",
			Kind: "AWS::EC2::Route",
			Properties: map[string]any{
				"DestinationCidrBlock": template.String("0.0.0.0/0"),
				"InstanceId":           template.Ref(natName),
				"RouteTableId":         template.Ref(routeTable),
			},
		})
	}
}

func addCommonSecurityGroup(n *template.Node, vpcCidr template.Value) {
	egress := []map[string]any{
		{"IpProtocol": template.String("tcp"), "FromPort": template.String("80"), "ToPort": template.String("80"), "CidrIp": template.String("0.0.0.0/0")},
		{"IpProtocol": template.String("tcp"), "FromPort": template.String("443"), "ToPort": template.String("443"), "CidrIp": template.String("0.0.0.0/0")},
		{"IpProtocol": template.String("udp"), "FromPort": template.String("123"), "ToPort": template.String("123"), "CidrIp": template.String("0.0.0.0/0")},
	}
	ingress := []map[string]any{
		{"IpProtocol": template.String("tcp"), "FromPort": template.String("22"), "ToPort": template.String("22"), "CidrIp": vpcCidr},
	}
	n.AddResource(template.Resource{
		ID:   "commonSecurityGroup",
		Kind: "AWS::EC2::SecurityGroup",
		Properties: map[string]any{
			"GroupDescription":     template.String("Security Group allows ingress and egress for common usage patterns throughout this deployed infrastructure."),
			"VpcId":                template.Ref("vpc"),
			"SecurityGroupEgress":  egress,
			"SecurityGroupIngress": ingress,
		},
	})
}

// addOutputs publishes everything later siblings bind: the network identity,
// one output per subnet under both its resource name and its conventional
// parameter name, and the zone placement of the reference layer.
func addOutputs(n *template.Node, subnets []netplan.AllocatedSubnet, azCount int, azRole string, vpcCidr template.Value) {
	n.AddOutput(template.Output{Name: "vpcId", Value: template.Ref("vpc")})
	n.AddOutput(template.Output{Name: "vpcCidr", Value: vpcCidr})
	n.AddOutput(template.Output{Name: "internetGateway", Value: template.Ref("vpcIgw")})
	n.AddOutput(template.Output{Name: "igwVpcAttachment", Value: template.Ref("igwVpcAttachment")})
	n.AddOutput(template.Output{Name: "commonSecurityGroup", Value: template.Ref("commonSecurityGroup")})

	roleIndex := make(map[string]int)
	for _, s := range subnets {
		subnetName := template.SubnetResourceName(s.Name, s.AZ)
		n.AddOutput(template.Output{Name: subnetName, Value: template.Ref(subnetName)})
		n.AddOutput(template.Output{
			Name:  template.SubnetParameterName(s.Role, roleIndex[s.Role]),
			Value: template.Ref(subnetName),
		})
		roleIndex[s.Role]++

		if s.Role == azRole && s.AZ < azCount {
			n.AddOutput(template.Output{
				Name:  template.AZParameterName(s.AZ),
				Value: template.GetAtt{Target: subnetName, Attribute: "AvailabilityZone"},
			})
		}
	}
}

func subnetRoles(subnets []netplan.AllocatedSubnet) []string {
	seen := make(map[string]bool)
	var roles []string
	for _, s := range subnets {
		if !seen[s.Role] {
			seen[s.Role] = true
			roles = append(roles, s.Role)
		}
	}
	return roles
}

func publicSubnetInAZ(subnets []netplan.AllocatedSubnet, az int) (string, bool) {
	for _, s := range subnets {
		if s.Role == "public" && s.AZ == az {
			return template.SubnetResourceName(s.Name, s.AZ), true
		}
	}
	return "", false
}
