package discovery

import (
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
)

// Scan multicasts a Scan carrying the local identifier to both groups
func (d *Dispatcher) Scan() (delivery.SendStatus, error) {
	if d.ctx.Identifier == "" {
		return 0, ErrUnknownIdentity
	}
	to4 := d.ctx.endpoint4(d.ctx.Group4)
	to6 := d.ctx.endpoint6(d.ctx.Group6)
	behaviour := d.ctx.narrow(d.ctx.Behaviours.Scan)

	status := d.sender.Send(protocol.MessageScan, []byte(d.ctx.Identifier), to4, to6, behaviour)
	gologger.Verbose().Msgf("scan sent with %s: %s", behaviour, status)
	return status, nil
}

// SendText sends a Cleartext message to the peer in slot
func (d *Dispatcher) SendText(slot int, text string) (delivery.SendStatus, error) {
	peer, ok := d.directory.Get(slot)
	if !ok {
		return 0, ErrUnknownPeer
	}
	if len(text) > protocol.MaxPayloadSize {
		return 0, ErrMessageTooLong
	}
	to4, to6 := d.peerEndpoints(peer)
	return d.sender.Send(protocol.MessageCleartext, []byte(text), to4, to6, d.ctx.narrow(d.ctx.Behaviours.Message)), nil
}

// Disconnect tells the peer in slot that this node is leaving and forgets
// it.
func (d *Dispatcher) Disconnect(slot int) (delivery.SendStatus, error) {
	peer, ok := d.directory.Get(slot)
	if !ok {
		return 0, ErrUnknownPeer
	}
	to4, to6 := d.peerEndpoints(peer)
	status := d.sender.Send(protocol.MessageDisconnect, []byte(d.ctx.Identifier), to4, to6, d.ctx.narrow(disconnectBehaviour(peer)))
	if err := d.directory.RemoveFamily(slot, peers.FamilyIPv4|peers.FamilyIPv6); err != nil {
		return status, err
	}
	return status, nil
}

// DisconnectAll sends a Disconnect to every live peer and clears the
// directory. It returns the number of peers reached.
func (d *Dispatcher) DisconnectAll() int {
	reached := 0
	for _, entry := range d.directory.Live() {
		status, err := d.Disconnect(entry.Slot)
		if err != nil {
			gologger.Verbose().Msgf("could not disconnect from %s: %s", entry.Identifier, err)
			continue
		}
		if status.IPv4() == delivery.OutcomeOK || status.IPv6() == delivery.OutcomeOK {
			reached++
		} else {
			gologger.Verbose().Msgf("could not disconnect from %s: %s", entry.Identifier, status)
		}
	}
	d.directory.ClearAll()
	return reached
}

func (d *Dispatcher) peerEndpoints(peer peers.Peer) (delivery.Endpoint, delivery.Endpoint) {
	return d.ctx.endpoint4(peer.IPv4.Addr), d.ctx.endpoint6(peer.IPv6.Addr)
}

// disconnectBehaviour reaches the peer on every family it is known on
func disconnectBehaviour(peer peers.Peer) delivery.SendBehaviour {
	switch {
	case peer.IPv4.Present() && peer.IPv6.Present():
		return delivery.SendBoth
	case peer.IPv6.Present():
		return delivery.SendIPv6Only
	default:
		return delivery.SendIPv4Only
	}
}
