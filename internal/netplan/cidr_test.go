package netplan

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPv4CIDR(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		cidr       string
		wantStart  uint32
		wantPrefix int
		wantErr    bool
	}{
		{
			name:       "class A private /16",
			cidr:       "10.0.0.0/16",
			wantStart:  10 << 24,
			wantPrefix: 16,
		},
		{
			name:       "host bits are masked off",
			cidr:       "192.168.1.57/24",
			wantStart:  192<<24 | 168<<16 | 1<<8,
			wantPrefix: 24,
		},
		{
			name:    "IPv6 rejected",
			cidr:    "2001:db8::/32",
			wantErr: true,
		},
		{
			name:    "garbage rejected",
			cidr:    "not-a-cidr",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			start, prefix, err := parseIPv4CIDR(tt.cidr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestFormatCIDR(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "10.0.192.0/22", formatCIDR(10<<24|192<<8, 22))
	assert.Equal(t, "0.0.0.0/0", formatCIDR(0, 0))
}

func TestBlockSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(1), blockSize(32))
	assert.Equal(t, uint64(256), blockSize(24))
	assert.Equal(t, uint64(1)<<32, blockSize(0))
}

func TestIPRoundTrip(t *testing.T) {
	t.Parallel()
	ip := net.ParseIP("172.16.4.1")
	assert.Equal(t, "172.16.4.1", ipFromUint(uintFromIP(ip)).String())
}
