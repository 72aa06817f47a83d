package netaddr

import (
	"fmt"
	"net"
	"net/netip"
)

// Interface is the local network interface a node is bound to
type Interface struct {
	Name  string
	Index int
	// IPv4 is the interface address used for multicast membership
	IPv4 netip.Addr
	// LinkLocal is the fe80::/10 address of the interface, if any
	LinkLocal netip.Addr
}

// ScopeID returns the interface index as an IPv6 scope id
func (i *Interface) ScopeID() uint32 {
	return uint32(i.Index)
}

// LookupInterface resolves an interface by name. The interface must be up
// and multicast capable.
func LookupInterface(name string) (*Interface, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %s: %w", name, err)
	}
	if !isUsable(iface) {
		return nil, fmt.Errorf("interface %s is down or not multicast capable", name)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses of %s: %w", name, err)
	}

	result := &Interface{Name: iface.Name, Index: iface.Index}
	result.IPv4 = interfaceIPv4(addrs)
	result.LinkLocal = interfaceLinkLocal(addrs)
	return result, nil
}

// DefaultInterface returns the first interface that is up, multicast
// capable, not a loopback and carries at least one address.
func DefaultInterface() (*Interface, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	for i := range interfaces {
		iface := &interfaces[i]
		if iface.Flags&net.FlagLoopback != 0 || !isUsable(iface) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return &Interface{
			Name:      iface.Name,
			Index:     iface.Index,
			IPv4:      interfaceIPv4(addrs),
			LinkLocal: interfaceLinkLocal(addrs),
		}, nil
	}
	return nil, fmt.Errorf("no suitable network interfaces found")
}

func isUsable(iface *net.Interface) bool {
	return iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagMulticast != 0
}

// interfaceIPv4 prefers a non link-local IPv4 address and falls back to any
// IPv4 address
func interfaceIPv4(addrs []net.Addr) netip.Addr {
	var fallback netip.Addr
	for _, addr := range addrs {
		ip, ok := prefixAddr(addr)
		if !ok || !ip.Is4() {
			continue
		}
		if !ip.IsLinkLocalUnicast() {
			return ip
		}
		if !fallback.IsValid() {
			fallback = ip
		}
	}
	return fallback
}

func interfaceLinkLocal(addrs []net.Addr) netip.Addr {
	for _, addr := range addrs {
		ip, ok := prefixAddr(addr)
		if ok && ip.Is6() && ip.IsLinkLocalUnicast() {
			return ip
		}
	}
	return netip.Addr{}
}

func prefixAddr(addr net.Addr) (netip.Addr, bool) {
	ipNet, ok := addr.(*net.IPNet)
	if !ok {
		return netip.Addr{}, false
	}
	ip, ok := netip.AddrFromSlice(ipNet.IP)
	if !ok {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}
