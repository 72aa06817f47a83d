package discovery

import (
	"errors"
	"net"
	"net/netip"
	"strconv"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/netaddr"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
)

var (
	ErrUnknownPeer     = errors.New("no peer in slot")
	ErrMessageTooLong  = errors.New("message does not fit in a datagram")
	ErrInvalidSource   = errors.New("datagram without usable source address")
	ErrUnknownIdentity = errors.New("local identifier not configured")
)

// Action is what Dispatch did with a message
type Action uint8

const (
	ActionNone Action = iota
	// ActionAnswered means a ScanResponse was sent and the sender recorded
	ActionAnswered
	ActionRecorded
	ActionRemoved
	ActionDelivered
	ActionUnhandled
)

func (a Action) String() string {
	switch a {
	case ActionAnswered:
		return "answered"
	case ActionRecorded:
		return "recorded"
	case ActionRemoved:
		return "removed"
	case ActionDelivered:
		return "delivered"
	case ActionUnhandled:
		return "unhandled"
	default:
		return "none"
	}
}

// Sender writes a message over one or both stacks. *delivery.Engine
// implements it.
type Sender interface {
	Send(msgType protocol.MessageType, payload []byte, to4, to6 delivery.Endpoint, behaviour delivery.SendBehaviour) delivery.SendStatus
}

// Message is a Cleartext message handed to the application
type Message struct {
	// From is the sender's identifier, or its address when unknown
	From string
	// Slot is the sender's directory slot, -1 when unknown
	Slot   int
	Source netip.Addr
	Text   string
}

// MessageHandler receives Cleartext messages
type MessageHandler func(Message)

// Dispatcher routes decoded messages to the directory and the handler
type Dispatcher struct {
	ctx       *Context
	sender    Sender
	directory *peers.Directory
	handler   MessageHandler
}

// New returns a dispatcher. handler may be nil.
func New(ctx *Context, sender Sender, directory *peers.Directory, handler MessageHandler) *Dispatcher {
	return &Dispatcher{
		ctx:       ctx,
		sender:    sender,
		directory: directory,
		handler:   handler,
	}
}

// Directory returns the peer directory driven by the dispatcher
func (d *Dispatcher) Directory() *peers.Directory {
	return d.directory
}

// Context returns the node context
func (d *Dispatcher) Context() *Context {
	return d.ctx
}

// Dispatch handles one decoded message received from src
func (d *Dispatcher) Dispatch(msg protocol.Message, src *net.UDPAddr) (Action, error) {
	addr, _ := netaddr.FromUDPAddr(src)
	family := peers.FamilyOf(addr)
	if family == 0 {
		return ActionNone, ErrInvalidSource
	}

	switch msg.Type {
	case protocol.MessageScan:
		d.answer(family, addr, src)
		if _, err := d.directory.Upsert(family, addr, string(msg.Payload)); err != nil {
			return ActionAnswered, err
		}
		return ActionAnswered, nil

	case protocol.MessageScanResponse:
		if _, err := d.directory.Upsert(family, addr, string(msg.Payload)); err != nil {
			return ActionNone, err
		}
		return ActionRecorded, nil

	case protocol.MessageDisconnect:
		slot, ok := d.directory.FindByAddress(family, addr)
		if !ok {
			return ActionNone, nil
		}
		if err := d.directory.RemoveFamily(slot, family); err != nil {
			return ActionNone, err
		}
		return ActionRemoved, nil

	case protocol.MessageCleartext:
		delivered := Message{
			From:   netaddr.Unzoned(addr).String(),
			Slot:   -1,
			Source: addr,
			Text:   string(msg.Payload),
		}
		if slot, ok := d.directory.FindByAddress(family, addr); ok {
			peer, _ := d.directory.Get(slot)
			delivered.From = peer.Identifier
			delivered.Slot = slot
		}
		if d.handler != nil {
			d.handler(delivered)
		}
		return ActionDelivered, nil

	default:
		gologger.Verbose().Msgf("unhandled message type %s from %s", msg.Type, src)
		return ActionUnhandled, nil
	}
}

// answer sends a ScanResponse straight back to the sender on the family the
// scan arrived on
func (d *Dispatcher) answer(family peers.Family, addr netip.Addr, src *net.UDPAddr) {
	payload := []byte(d.ctx.Identifier)
	to4 := delivery.Endpoint{Conn: d.ctx.Conn4}
	to6 := delivery.Endpoint{Conn: d.ctx.Conn6}
	behaviour := delivery.SendIPv4Only
	if family == peers.FamilyIPv4 {
		to4.Addr = src
	} else {
		to6.Addr = d.scoped(src)
		behaviour = delivery.SendIPv6Only
	}

	status := d.sender.Send(protocol.MessageScanResponse, payload, to4, to6, behaviour)
	if !status.Succeeded(behaviour) {
		gologger.Verbose().Msgf("could not answer scan from %s: %s", addr, status)
	}
}

// scoped fills in the interface zone for link-local sources read without one
func (d *Dispatcher) scoped(src *net.UDPAddr) *net.UDPAddr {
	if src.Zone != "" || d.ctx.Ifindex <= 0 {
		return src
	}
	addr, _ := netaddr.FromUDPAddr(src)
	if !needsScope(addr) {
		return src
	}
	scoped := *src
	scoped.Zone = strconv.Itoa(d.ctx.Ifindex)
	return &scoped
}
