package peers

import (
	"net/netip"
	"time"
)

// Family selects the IPv4 or IPv6 sighting of a peer. Values can be OR-ed
// together where an operation accepts several families.
type Family uint8

const (
	FamilyIPv4 Family = 1 << iota
	FamilyIPv6

	familyAll = FamilyIPv4 | FamilyIPv6
)

func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	case familyAll:
		return "ipv4+ipv6"
	default:
		return "none"
	}
}

// FamilyOf returns the family of addr, IPv4-mapped IPv6 addresses count as
// IPv4. The zero Family is returned for an invalid address.
func FamilyOf(addr netip.Addr) Family {
	switch {
	case !addr.IsValid():
		return 0
	case addr.Unmap().Is4():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// Sighting is the last address a peer was seen at on one family
type Sighting struct {
	Addr     netip.Addr
	LastSeen time.Time
}

// Present reports whether the sighting holds an address
func (s Sighting) Present() bool {
	return s.Addr.IsValid()
}

// Peer is a single directory slot
type Peer struct {
	Identifier string
	IPv4       Sighting
	IPv6       Sighting
}

// Live reports whether the slot is in use
func (p Peer) Live() bool {
	return p.Identifier != "" && (p.IPv4.Present() || p.IPv6.Present())
}

// Sighting returns the sighting for a single family
func (p Peer) Sighting(family Family) Sighting {
	if family == FamilyIPv6 {
		return p.IPv6
	}
	return p.IPv4
}

// LastSeen returns the most recent sighting time across both families
func (p Peer) LastSeen() time.Time {
	if p.IPv6.LastSeen.After(p.IPv4.LastSeen) {
		return p.IPv6.LastSeen
	}
	return p.IPv4.LastSeen
}

func (p *Peer) sighting(family Family) *Sighting {
	if family == FamilyIPv6 {
		return &p.IPv6
	}
	return &p.IPv4
}

// Entry is a live peer together with its slot index
type Entry struct {
	Slot int
	Peer
}
