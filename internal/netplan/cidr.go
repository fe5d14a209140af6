package netplan

import (
	"encoding/binary"
	"fmt"
	"net"
)

// parseIPv4CIDR parses an IPv4 CIDR string into its network address (as a
// uint32) and prefix length. IPv6 addresses are rejected.
func parseIPv4CIDR(cidr string) (uint32, int, error) {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid CIDR: %w", err)
	}

	if network.IP.To4() == nil {
		return 0, 0, fmt.Errorf("only IPv4 addresses are supported, got IPv6: %s", cidr)
	}

	prefixLen, _ := network.Mask.Size()
	return uintFromIP(network.IP), prefixLen, nil
}

// formatCIDR renders a network address and prefix length as a CIDR string.
func formatCIDR(addr uint32, prefixLen int) string {
	return fmt.Sprintf("%s/%d", ipFromUint(addr).String(), prefixLen)
}

// blockSize returns the number of addresses covered by a prefix length.
// Returned as uint64 so a /0 does not overflow.
func blockSize(prefixLen int) uint64 {
	return uint64(1) << (32 - prefixLen)
}

// uintFromIP converts an IPv4 address to its numeric representation.
// Only IPv4 addresses are supported.
func uintFromIP(ip net.IP) uint32 {
	if ip4 := ip.To4(); ip4 != nil {
		return binary.BigEndian.Uint32(ip4)
	}
	return 0
}

// ipFromUint converts a numeric value back to an IPv4 address.
func ipFromUint(val uint32) net.IP {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, val)
	return ip
}
