// Package delivery sends and receives lancomm datagrams over independent
// IPv4 and IPv6 sockets.
//
// A single Send call encodes the message once and writes it to one or both
// stacks according to a SendBehaviour. The outcome of both stacks is packed
// into one SendStatus byte: the low nibble reports IPv4, the high nibble
// reports IPv6, so callers can inspect each stack independently.
//
// Receive performs a single datagram read and decodes it. Datagrams that
// fail to decode are dropped silently; only socket failures are returned
// as errors.
//
// Example usage:
//
//	engine := delivery.New(nil)
//	status := engine.Send(protocol.MessageScan, []byte(identifier),
//		delivery.Endpoint{Conn: udp4, Addr: group4},
//		delivery.Endpoint{Conn: udp6, Addr: group6},
//		delivery.SendBoth)
//	if !status.Succeeded(delivery.SendBoth) {
//		gologger.Warning().Msgf("scan: %s", status)
//	}
package delivery
