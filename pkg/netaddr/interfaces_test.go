package netaddr

import (
	"net"
	"testing"
)

func ipNet(cidr string) net.Addr {
	ip, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	network.IP = ip
	return network
}

func TestInterfaceAddresses(t *testing.T) {
	tests := []struct {
		name      string
		addrs     []net.Addr
		ipv4      string
		linkLocal string
	}{
		{
			name:      "prefers routable ipv4",
			addrs:     []net.Addr{ipNet("169.254.10.1/16"), ipNet("fe80::1/64"), ipNet("192.168.1.5/24"), ipNet("2001:db8::5/64")},
			ipv4:      "192.168.1.5",
			linkLocal: "fe80::1",
		},
		{
			name:      "falls back to link-local ipv4",
			addrs:     []net.Addr{ipNet("169.254.10.1/16")},
			ipv4:      "169.254.10.1",
			linkLocal: "invalid IP",
		},
		{
			name:      "ipv6 only",
			addrs:     []net.Addr{ipNet("2001:db8::5/64"), ipNet("fe80::abcd/64")},
			ipv4:      "invalid IP",
			linkLocal: "fe80::abcd",
		},
		{
			name:      "ignores non prefix addresses",
			addrs:     []net.Addr{&net.IPAddr{IP: net.ParseIP("10.0.0.1")}},
			ipv4:      "invalid IP",
			linkLocal: "invalid IP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interfaceIPv4(tt.addrs).String(); got != tt.ipv4 {
				t.Errorf("interfaceIPv4() = %s, want %s", got, tt.ipv4)
			}
			if got := interfaceLinkLocal(tt.addrs).String(); got != tt.linkLocal {
				t.Errorf("interfaceLinkLocal() = %s, want %s", got, tt.linkLocal)
			}
		})
	}
}

func TestLookupInterfaceMissing(t *testing.T) {
	if _, err := LookupInterface("lancomm-missing0"); err == nil {
		t.Error("LookupInterface() found a missing interface")
	}
}

func TestInterfaceScopeID(t *testing.T) {
	iface := &Interface{Name: "eth0", Index: 7}
	if iface.ScopeID() != 7 {
		t.Errorf("ScopeID() = %d, want 7", iface.ScopeID())
	}
}
