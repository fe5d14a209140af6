package netplan

// NetworkSpace is the base address range that subnets are carved from.
// It must not change once allocation begins; Plan never mutates it.
type NetworkSpace struct {
	// CIDR of the whole network, e.g. "10.0.0.0/16".
	CIDR string
}

// SubnetSpec describes one subnet layer as declared in configuration,
// before per-AZ expansion.
type SubnetSpec struct {
	Name      string // layer name, e.g. "myPrivate"
	Role      string // role tag, e.g. "public" or "private"
	PrefixLen int    // desired prefix length of each allocated block
}

// SubnetRequest asks for one block for one layer in one availability zone.
type SubnetRequest struct {
	Name      string
	Role      string
	PrefixLen int
	AZ        int // zero-based availability zone index
}

// AllocatedSubnet is a resolved, non-overlapping block inside the
// NetworkSpace.
type AllocatedSubnet struct {
	CIDR string
	Name string
	Role string
	AZ   int
}

// ExpandPerAZ expands each subnet spec into one request per availability
// zone, preserving spec order with the AZ index varying fastest.
func ExpandPerAZ(specs []SubnetSpec, azCount int) []SubnetRequest {
	requests := make([]SubnetRequest, 0, len(specs)*azCount)
	for _, spec := range specs {
		for az := 0; az < azCount; az++ {
			requests = append(requests, SubnetRequest{
				Name:      spec.Name,
				Role:      spec.Role,
				PrefixLen: spec.PrefixLen,
				AZ:        az,
			})
		}
	}
	return requests
}
