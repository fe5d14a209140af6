// Package netplan partitions a base network range into non-overlapping,
// AZ-aware subnet blocks without an external IPAM service.
//
// Requests are grouped by requested prefix length and the groups are
// satisfied from largest block size to smallest, carving big blocks out of
// the free space first so that later, smaller requests can subdivide what
// remains. The result is a pure function of its inputs: the same network
// space and request list always produce the identical allocation, which is
// required because the allocation map is embedded verbatim in the rendered
// network template.
package netplan

import (
	"fmt"
	"sort"
)

// AllocationError reports a subnet request that could not be placed inside
// the network space.
type AllocationError struct {
	RequestIndex int    // index into the caller-supplied request slice
	RequestName  string // layer name of the failing request
	Attempt      int    // allocation try, counting from 1 across the free run and fallback blocks
	Reason       string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate subnet %q (request %d, attempt %d): %s",
		e.RequestName, e.RequestIndex, e.Attempt, e.Reason)
}

// region is a contiguous run of free address space.
type region struct {
	start     uint32
	prefixLen int
}

// carver yields consecutive, aligned blocks of a fixed prefix length out of
// a region. Arithmetic is done in uint64 so the end of the IPv4 space does
// not wrap.
type carver struct {
	subPrefix int
	next      uint64
	limit     uint64 // exclusive end of the parent region
}

func newCarver(r region, subPrefix int) *carver {
	return &carver{
		subPrefix: subPrefix,
		next:      uint64(r.start),
		limit:     uint64(r.start) + blockSize(r.prefixLen),
	}
}

// take returns the next untouched block, or false when the region is
// exhausted or the requested block is larger than the region.
func (c *carver) take() (uint32, bool) {
	if c.next+blockSize(c.subPrefix) > c.limit {
		return 0, false
	}
	start := uint32(c.next)
	c.next += blockSize(c.subPrefix)
	return start, true
}

// Plan allocates one block per request inside the network space.
//
// Groups of equal prefix length are processed from smallest prefix number
// (largest block) to largest; within a group the caller-supplied order is
// preserved. When the current free run is exhausted mid-group, the planner
// falls back to the most recently reserved-but-unused larger block and
// re-subdivides it. Every block is validated for containment and alignment
// before the result is returned.
func Plan(space NetworkSpace, requests []SubnetRequest) ([]AllocatedSubnet, error) {
	baseStart, basePrefix, err := parseIPv4CIDR(space.CIDR)
	if err != nil {
		return nil, fmt.Errorf("network space: %w", err)
	}

	if len(requests) == 0 {
		return []AllocatedSubnet{}, nil
	}

	// A request for a block larger than the whole space can never fit.
	for i, req := range requests {
		if req.PrefixLen < basePrefix || req.PrefixLen > 32 {
			return nil, &AllocationError{
				RequestIndex: i,
				RequestName:  req.Name,
				Reason:       fmt.Sprintf("requested /%d does not fit inside %s", req.PrefixLen, space.CIDR),
			}
		}
	}

	// Group request indices by prefix length, keeping caller order within
	// each group.
	groups := make(map[int][]int)
	for i, req := range requests {
		groups[req.PrefixLen] = append(groups[req.PrefixLen], i)
	}
	prefixLens := make([]int, 0, len(groups))
	for l := range groups {
		prefixLens = append(prefixLens, l)
	}
	sort.Ints(prefixLens)

	baseEnd := uint64(baseStart) + blockSize(basePrefix)
	result := make([]AllocatedSubnet, len(requests))

	// cur is the free run the current group carves from; reserved holds
	// partially consumed larger runs kept for fallback, most recent last.
	cur := &region{start: baseStart, prefixLen: basePrefix}
	var reserved []*carver

	for _, prefixLen := range prefixLens {
		var c *carver
		if cur != nil {
			c = newCarver(*cur, prefixLen)
			cur = nil
		}

		for _, idx := range groups[prefixLen] {
			req := requests[idx]

			attempt := 0
			var block uint32
			ok := false
			if c != nil {
				attempt++
				block, ok = c.take()
			}
			for !ok {
				// The counter advances for the try about to be made, so a
				// group that starts with no free run still reports its first
				// fallback as attempt 1.
				attempt++
				r, found := popReserved(&reserved)
				if !found {
					return nil, &AllocationError{
						RequestIndex: idx,
						RequestName:  req.Name,
						Attempt:      attempt,
						Reason:       "address space exhausted",
					}
				}
				c = newCarver(r, prefixLen)
				block, ok = c.take()
			}

			if reason, valid := checkBlock(block, prefixLen, baseStart, baseEnd); !valid {
				return nil, &AllocationError{
					RequestIndex: idx,
					RequestName:  req.Name,
					Attempt:      attempt,
					Reason:       reason,
				}
			}

			result[idx] = AllocatedSubnet{
				CIDR: formatCIDR(block, prefixLen),
				Name: req.Name,
				Role: req.Role,
				AZ:   req.AZ,
			}
		}

		// The next untouched block becomes the free run for the following
		// group; whatever remains after it stays reserved for fallback.
		if next, ok := c.take(); ok {
			cur = &region{start: next, prefixLen: prefixLen}
			reserved = append(reserved, c)
		}
	}

	return result, nil
}

// popReserved takes the next free block from the most recently reserved
// run that still has capacity, dropping exhausted runs along the way.
func popReserved(reserved *[]*carver) (region, bool) {
	s := *reserved
	for len(s) > 0 {
		last := s[len(s)-1]
		if block, ok := last.take(); ok {
			*reserved = s
			return region{start: block, prefixLen: last.subPrefix}, true
		}
		s = s[:len(s)-1]
	}
	*reserved = s
	return region{}, false
}

// checkBlock validates containment inside the parent space and alignment of
// the block start to its own size.
func checkBlock(start uint32, prefixLen int, baseStart uint32, baseEnd uint64) (string, bool) {
	size := blockSize(prefixLen)
	if start < baseStart || uint64(start)+size > baseEnd {
		return fmt.Sprintf("block %s lies outside the network space", formatCIDR(start, prefixLen)), false
	}
	if uint64(start)%size != 0 {
		return fmt.Sprintf("block %s is not aligned to /%d", formatCIDR(start, prefixLen), prefixLen), false
	}
	return "", true
}
