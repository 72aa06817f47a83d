package netaddr

import (
	"net"
	"net/netip"
	"strconv"
)

// ScopeType describes whether an IPv6 destination needs a scope id
type ScopeType uint8

const (
	ScopeNull ScopeType = iota
	// ScopeInvalidLinkLocal is a link-local address without a scope id
	ScopeInvalidLinkLocal
	ScopeLinkLocal
	ScopeGlobal
)

const multicastScopeLinkLocal = 0x2

func (s ScopeType) String() string {
	switch s {
	case ScopeNull:
		return "null"
	case ScopeInvalidLinkLocal:
		return "invalid-link-local"
	case ScopeLinkLocal:
		return "link-local"
	case ScopeGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ClassifyIPv6Scope checks that link-local destinations carry a scope id.
// Multicast scopes other than link-local are reported as global, only the
// presence of the scope id matters to the caller.
func ClassifyIPv6Scope(addr netip.Addr, scopeID uint32) ScopeType {
	if !addr.IsValid() || addr.Is4() || addr.IsUnspecified() {
		return ScopeNull
	}

	a16 := addr.As16()
	if a16[0] == 0xFF {
		if a16[1]&0x0F != multicastScopeLinkLocal {
			return ScopeGlobal
		}
		return linkLocalScope(scopeID)
	}

	// fe80::/10
	if a16[0] == 0xFE && a16[1]&0xC0 == 0x80 {
		return linkLocalScope(scopeID)
	}
	return ScopeGlobal
}

func linkLocalScope(scopeID uint32) ScopeType {
	if scopeID == 0 {
		return ScopeInvalidLinkLocal
	}
	return ScopeLinkLocal
}

// ScopeID resolves an address zone, either a numeric interface index or an
// interface name, into a scope id. Unknown zones resolve to 0.
func ScopeID(zone string) uint32 {
	if zone == "" {
		return 0
	}
	if index, err := strconv.ParseUint(zone, 10, 32); err == nil {
		return uint32(index)
	}
	iface, err := net.InterfaceByName(zone)
	if err != nil {
		return 0
	}
	return uint32(iface.Index)
}

// FromUDPAddr converts a socket address into a zone-less netip.Addr and
// its scope id. A nil address yields the zero netip.Addr.
func FromUDPAddr(addr *net.UDPAddr) (netip.Addr, uint32) {
	if addr == nil {
		return netip.Addr{}, 0
	}
	ip, ok := netip.AddrFromSlice(addr.IP)
	if !ok {
		return netip.Addr{}, 0
	}
	return ip, ScopeID(addr.Zone)
}

// Unzoned strips the zone and any IPv4-in-IPv6 mapping so that addresses
// compare equal regardless of how the socket reported them.
func Unzoned(addr netip.Addr) netip.Addr {
	return addr.WithZone("").Unmap()
}
