// Package transport opens the IPv4 and IPv6 UDP sockets a node talks on.
//
// Each socket is bound to the wildcard address on the configured port,
// restricted to one interface, joined to its multicast group and has
// multicast loopback disabled so a node never hears its own scans. The
// IPv6 socket only carries IPv6 traffic.
package transport
