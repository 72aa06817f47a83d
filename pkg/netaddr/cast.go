package netaddr

import (
	"encoding/binary"
	"net/netip"
)

// CastType describes how a destination address is routed
type CastType uint8

const (
	CastNull CastType = iota
	CastInvalid
	CastUnicast
	CastMulticast
)

const (
	ipv4MulticastStart = 0xE0000000
	ipv4MulticastEnd   = 0xF0000000
)

func (c CastType) String() string {
	switch c {
	case CastNull:
		return "null"
	case CastInvalid:
		return "invalid"
	case CastUnicast:
		return "unicast"
	case CastMulticast:
		return "multicast"
	default:
		return "unknown"
	}
}

// ClassifyIPv4 returns CastNull for a zero netip.Addr. Nonzero addresses
// below 224.0.0.0 are unicast, 224.0.0.0/4 is multicast and everything
// else (0.0.0.0, class E, broadcast) is invalid.
func ClassifyIPv4(addr netip.Addr) CastType {
	if !addr.IsValid() {
		return CastNull
	}
	addr = addr.Unmap()
	if !addr.Is4() {
		return CastInvalid
	}

	a4 := addr.As4()
	value := binary.BigEndian.Uint32(a4[:])
	switch {
	case value > 0 && value < ipv4MulticastStart:
		return CastUnicast
	case value >= ipv4MulticastStart && value < ipv4MulticastEnd:
		return CastMulticast
	default:
		return CastInvalid
	}
}

// ClassifyIPv6Cast returns CastMulticast for ff00::/8, CastInvalid for the
// unspecified address and CastUnicast otherwise. Anycast addresses are
// indistinguishable from unicast and are reported as such.
func ClassifyIPv6Cast(addr netip.Addr) CastType {
	if !addr.IsValid() {
		return CastNull
	}
	if addr.Is4() {
		return CastInvalid
	}

	a16 := addr.As16()
	if a16[0] == 0xFF {
		return CastMulticast
	}
	if addr.IsUnspecified() {
		return CastInvalid
	}
	return CastUnicast
}
