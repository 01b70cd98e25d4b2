package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestEntryAddress(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantOK   bool
		wantAddr string
	}{
		{
			name: "AxeOS web UI on port 80",
			entry: &zeroconf.ServiceEntry{
				HostName: "bitaxe.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
			},
			wantOK:   true,
			wantAddr: "192.168.4.16",
		},
		{
			name: "port not set",
			entry: &zeroconf.ServiceEntry{
				AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
			},
			wantOK:   true,
			wantAddr: "10.0.0.5",
		},
		{
			name: "custom port is kept",
			entry: &zeroconf.ServiceEntry{
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantOK:   true,
			wantAddr: "192.168.1.100:8080",
		},
		{
			name: "first IPv4 wins",
			entry: &zeroconf.ServiceEntry{
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.7"), net.ParseIP("10.0.0.7")},
			},
			wantOK:   true,
			wantAddr: "192.168.1.7",
		},
		{
			name: "IPv6 only is skipped",
			entry: &zeroconf.ServiceEntry{
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantOK: false,
		},
		{
			name:   "no addresses",
			entry:  &zeroconf.ServiceEntry{Port: 80},
			wantOK: false,
		},
		{
			name:   "nil entry",
			entry:  nil,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, ok := entryAddress(tt.entry)
			if ok != tt.wantOK {
				t.Fatalf("entryAddress() ok = %v, want %v", ok, tt.wantOK)
			}
			if addr != tt.wantAddr {
				t.Errorf("entryAddress() = %s, want %s", addr, tt.wantAddr)
			}
		})
	}
}
