// Package netaddr classifies destination addresses before anything is
// written to a socket.
//
// IPv4 destinations are split into unicast, multicast and invalid ranges.
// IPv6 destinations are classified twice: by cast type, and by scope, since
// link-local unicast and link-local multicast are only routable together
// with a scope id (the interface index).
//
// The package also resolves the local interface a node is bound to, which
// provides the scope id for link-local sends and the addresses used when
// joining the multicast groups.
package netaddr
