package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/projectdiscovery/gologger"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// ErrNoTransport is returned by Open when neither stack could be opened
var ErrNoTransport = errors.New("neither IPv4 nor IPv6 transport could be opened")

// Config selects the interface, port and groups the sockets use
type Config struct {
	// Interface is the name of the interface to bind to
	Interface string
	Port      int
	Group4    netip.Addr
	Group6    netip.Addr

	DisableIPv4 bool
	DisableIPv6 bool
}

// Sockets holds the opened sockets. A nil connection means the stack is
// disabled or failed to open.
type Sockets struct {
	Conn4 net.PacketConn
	Conn6 net.PacketConn
}

// Open opens every enabled stack. A stack that fails is logged and left
// nil, an error is only returned when no stack could be opened.
func Open(ctx context.Context, cfg Config) (*Sockets, error) {
	iface, err := net.InterfaceByName(cfg.Interface)
	if err != nil {
		return nil, fmt.Errorf("failed to find interface %s: %w", cfg.Interface, err)
	}

	sockets := &Sockets{}
	if !cfg.DisableIPv4 {
		conn, err := Listen4(ctx, iface, cfg.Port, cfg.Group4)
		if err != nil {
			gologger.Warning().Msgf("IPv4 transport unavailable: %s", err)
		} else {
			sockets.Conn4 = conn
		}
	}
	if !cfg.DisableIPv6 {
		conn, err := Listen6(ctx, iface, cfg.Port, cfg.Group6)
		if err != nil {
			gologger.Warning().Msgf("IPv6 transport unavailable: %s", err)
		} else {
			sockets.Conn6 = conn
		}
	}

	if sockets.Conn4 == nil && sockets.Conn6 == nil {
		return nil, ErrNoTransport
	}
	return sockets, nil
}

// Listen4 opens the IPv4 socket and joins group on iface
func Listen4(ctx context.Context, iface *net.Interface, port int, group netip.Addr) (net.PacketConn, error) {
	if !group.Is4() || !group.IsMulticast() {
		return nil, fmt.Errorf("invalid IPv4 multicast group %s", group)
	}
	lc := net.ListenConfig{Control: control(iface.Name, false)}
	conn, err := lc.ListenPacket(ctx, "udp4", net.JoinHostPort("0.0.0.0", strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to bind IPv4 socket: %w", err)
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetMulticastInterface(iface); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set IPv4 multicast interface: %w", err)
	}
	if err := pc.JoinGroup(iface, &net.UDPAddr{IP: group.AsSlice()}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to join %s on %s: %w", group, iface.Name, err)
	}
	if err := pc.SetMulticastLoopback(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to disable IPv4 multicast loopback: %w", err)
	}
	if err := pc.SetMulticastTTL(1); err != nil {
		gologger.Verbose().Msgf("could not set IPv4 multicast TTL: %s", err)
	}

	gologger.Verbose().Msgf("IPv4 transport joined %s on %s port %d", group, iface.Name, port)
	return conn, nil
}

// Listen6 opens the IPv6 socket and joins group on iface
func Listen6(ctx context.Context, iface *net.Interface, port int, group netip.Addr) (net.PacketConn, error) {
	if !group.Is6() || group.Is4In6() || !group.IsMulticast() {
		return nil, fmt.Errorf("invalid IPv6 multicast group %s", group)
	}
	lc := net.ListenConfig{Control: control(iface.Name, true)}
	conn, err := lc.ListenPacket(ctx, "udp6", net.JoinHostPort("::", strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("failed to bind IPv6 socket: %w", err)
	}

	pc := ipv6.NewPacketConn(conn)
	if err := pc.SetMulticastInterface(iface); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set IPv6 multicast interface: %w", err)
	}
	if err := pc.JoinGroup(iface, &net.UDPAddr{IP: group.AsSlice()}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to join %s on %s: %w", group, iface.Name, err)
	}
	if err := pc.SetMulticastLoopback(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to disable IPv6 multicast loopback: %w", err)
	}
	if err := pc.SetMulticastHopLimit(1); err != nil {
		gologger.Verbose().Msgf("could not set IPv6 multicast hop limit: %s", err)
	}

	gologger.Verbose().Msgf("IPv6 transport joined %s on %s port %d", group, iface.Name, port)
	return conn, nil
}

// Close closes every open socket
func (s *Sockets) Close() error {
	var errs []error
	if s.Conn4 != nil {
		errs = append(errs, s.Conn4.Close())
	}
	if s.Conn6 != nil {
		errs = append(errs, s.Conn6.Close())
	}
	return errors.Join(errs...)
}
