package discovery

import (
	"net"
	"net/netip"
	"strconv"

	"github.com/projectdiscovery/lancomm/pkg/delivery"
)

const (
	// DefaultPort is the UDP port both groups are joined on
	DefaultPort = 8192
)

var (
	// DefaultGroup4 is the IPv4 multicast group scans are sent to
	DefaultGroup4 = netip.MustParseAddr("224.0.0.192")
	// DefaultGroup6 is the link-local IPv6 multicast group scans are sent to
	DefaultGroup6 = netip.MustParseAddr("ff02::c0")
)

// Behaviours holds the send behaviour used for each kind of outbound
// message.
type Behaviours struct {
	// Scan is used for multicast scans
	Scan delivery.SendBehaviour
	// Message is used for unicast text and disconnect messages
	Message delivery.SendBehaviour
}

// DefaultBehaviours scans on both stacks and prefers IPv6 for messages
var DefaultBehaviours = Behaviours{
	Scan:    delivery.SendBoth,
	Message: delivery.SendIPv6First,
}

// Context is the per-node state every dispatcher operation works with. A
// nil Conn4 or Conn6 means that stack is disabled.
type Context struct {
	Identifier string
	Conn4      net.PacketConn
	Conn6      net.PacketConn
	Group4     netip.Addr
	Group6     netip.Addr
	Port       int
	// Ifindex scopes link-local IPv6 destinations
	Ifindex    int
	Behaviours Behaviours
}

// narrow restricts behaviour to the stacks that have a socket
func (c *Context) narrow(behaviour delivery.SendBehaviour) delivery.SendBehaviour {
	switch {
	case c.Conn4 == nil && c.Conn6 != nil:
		return delivery.SendIPv6Only
	case c.Conn6 == nil && c.Conn4 != nil:
		return delivery.SendIPv4Only
	default:
		return behaviour
	}
}

func (c *Context) endpoint4(addr netip.Addr) delivery.Endpoint {
	if c.Conn4 == nil || !addr.IsValid() {
		return delivery.Endpoint{Conn: c.Conn4}
	}
	return delivery.Endpoint{
		Conn: c.Conn4,
		Addr: net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr.Unmap(), uint16(c.Port))),
	}
}

func (c *Context) endpoint6(addr netip.Addr) delivery.Endpoint {
	if c.Conn6 == nil || !addr.IsValid() {
		return delivery.Endpoint{Conn: c.Conn6}
	}
	if addr.Zone() == "" && c.Ifindex > 0 && needsScope(addr) {
		addr = addr.WithZone(strconv.Itoa(c.Ifindex))
	}
	return delivery.Endpoint{
		Conn: c.Conn6,
		Addr: net.UDPAddrFromAddrPort(netip.AddrPortFrom(addr, uint16(c.Port))),
	}
}

func needsScope(addr netip.Addr) bool {
	return addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() || addr.IsInterfaceLocalMulticast()
}
