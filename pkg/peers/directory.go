package peers

import (
	"errors"
	"net/netip"
	"time"

	"github.com/projectdiscovery/lancomm/pkg/netaddr"
)

const (
	// DefaultCapacity is the number of slots used when none is configured
	DefaultCapacity = 32
	// MaxIdentifierLength is the longest identifier accepted, in bytes
	MaxIdentifierLength = 319
)

var (
	ErrInvalidAddress    = errors.New("invalid peer address")
	ErrInvalidIdentifier = errors.New("empty peer identifier")
	ErrIdentifierTooLong = errors.New("peer identifier too long")
	ErrDirectoryFull     = errors.New("peer directory is full")
	ErrInvalidSlot       = errors.New("peer slot out of range")
	ErrInvalidFamily     = errors.New("invalid address family")
)

// Directory is a fixed-capacity table of peers. Slots are allocated
// first-fit and a slot without any sighting is zeroed immediately.
//
// A Directory is not safe for concurrent use.
type Directory struct {
	slots []Peer
	now   func() time.Time
}

// Option configures a Directory
type Option func(*Directory)

// WithClock overrides the time source used for sightings
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// New returns an empty directory with the given number of slots
func New(capacity int, opts ...Option) *Directory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	d := &Directory{
		slots: make([]Peer, capacity),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Upsert records that identifier was seen at addr and returns its slot.
//
// The address is owned by at most one identifier: when another slot holds
// it on the same family, that sighting is revoked first and the slot is
// reclaimed if nothing else is left in it.
func (d *Directory) Upsert(family Family, addr netip.Addr, identifier string) (int, error) {
	if family != FamilyIPv4 && family != FamilyIPv6 {
		return -1, ErrInvalidFamily
	}
	addr = netaddr.Unzoned(addr)
	if !addr.IsValid() || addr.IsUnspecified() || FamilyOf(addr) != family {
		return -1, ErrInvalidAddress
	}
	if identifier == "" {
		return -1, ErrInvalidIdentifier
	}
	if len(identifier) > MaxIdentifierLength {
		return -1, ErrIdentifierTooLong
	}

	byIdentifier, byAddress, free := -1, -1, -1
	for i := range d.slots {
		peer := &d.slots[i]
		if !peer.Live() {
			if free < 0 {
				free = i
			}
			continue
		}
		if byIdentifier < 0 && peer.Identifier == identifier {
			byIdentifier = i
		}
		if byAddress < 0 {
			if s := peer.sighting(family); s.Present() && s.Addr == addr {
				byAddress = i
			}
		}
	}

	now := d.now()
	if byIdentifier >= 0 {
		if byAddress >= 0 && byAddress != byIdentifier {
			d.revoke(byAddress, family)
		}
		*d.slots[byIdentifier].sighting(family) = Sighting{Addr: addr, LastSeen: now}
		return byIdentifier, nil
	}

	if free < 0 {
		// the only slot that can open up is the one losing the address
		if byAddress < 0 || d.slots[byAddress].sighting(otherFamily(family)).Present() {
			return -1, ErrDirectoryFull
		}
		free = byAddress
	}
	if byAddress >= 0 {
		d.revoke(byAddress, family)
	}

	d.slots[free] = Peer{Identifier: identifier}
	*d.slots[free].sighting(family) = Sighting{Addr: addr, LastSeen: now}
	return free, nil
}

// revoke drops one family from a slot and reclaims it when it is empty
func (d *Directory) revoke(slot int, family Family) {
	peer := &d.slots[slot]
	*peer.sighting(family) = Sighting{}
	if !peer.Live() {
		*peer = Peer{}
	}
}

func otherFamily(family Family) Family {
	return familyAll &^ family
}

// RemoveFamily clears the sightings selected by families. The slot is freed
// once neither family is present.
func (d *Directory) RemoveFamily(slot int, families Family) error {
	if slot < 0 || slot >= len(d.slots) {
		return ErrInvalidSlot
	}
	if families&familyAll == 0 {
		return ErrInvalidFamily
	}
	if families&FamilyIPv4 != 0 {
		d.revoke(slot, FamilyIPv4)
	}
	if families&FamilyIPv6 != 0 {
		d.revoke(slot, FamilyIPv6)
	}
	return nil
}

// ClearAll frees every slot
func (d *Directory) ClearAll() {
	for i := range d.slots {
		d.slots[i] = Peer{}
	}
}

// FindByAddress returns the slot owning addr on family
func (d *Directory) FindByAddress(family Family, addr netip.Addr) (int, bool) {
	if family != FamilyIPv4 && family != FamilyIPv6 {
		return -1, false
	}
	addr = netaddr.Unzoned(addr)
	if !addr.IsValid() {
		return -1, false
	}
	for i := range d.slots {
		if !d.slots[i].Live() {
			continue
		}
		if s := d.slots[i].sighting(family); s.Present() && s.Addr == addr {
			return i, true
		}
	}
	return -1, false
}

// FindByIdentifier returns the slot of identifier
func (d *Directory) FindByIdentifier(identifier string) (int, bool) {
	if identifier == "" {
		return -1, false
	}
	for i := range d.slots {
		if d.slots[i].Live() && d.slots[i].Identifier == identifier {
			return i, true
		}
	}
	return -1, false
}

// Get returns a copy of the peer in slot
func (d *Directory) Get(slot int) (Peer, bool) {
	if slot < 0 || slot >= len(d.slots) || !d.slots[slot].Live() {
		return Peer{}, false
	}
	return d.slots[slot], true
}

// Live returns a snapshot of every live slot in slot order
func (d *Directory) Live() []Entry {
	var entries []Entry
	for i, peer := range d.slots {
		if peer.Live() {
			entries = append(entries, Entry{Slot: i, Peer: peer})
		}
	}
	return entries
}

// Len returns the number of live slots
func (d *Directory) Len() int {
	n := 0
	for _, peer := range d.slots {
		if peer.Live() {
			n++
		}
	}
	return n
}

// Cap returns the number of slots
func (d *Directory) Cap() int {
	return len(d.slots)
}
