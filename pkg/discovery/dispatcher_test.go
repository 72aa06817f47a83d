package discovery

import (
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/peers"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
)

type sendCall struct {
	msgType   protocol.MessageType
	payload   string
	to4       delivery.Endpoint
	to6       delivery.Endpoint
	behaviour delivery.SendBehaviour
}

// recordingSender records every send and reports success on both stacks
type recordingSender struct {
	calls  []sendCall
	status delivery.SendStatus
}

func (s *recordingSender) Send(msgType protocol.MessageType, payload []byte, to4, to6 delivery.Endpoint, behaviour delivery.SendBehaviour) delivery.SendStatus {
	s.calls = append(s.calls, sendCall{msgType: msgType, payload: string(payload), to4: to4, to6: to6, behaviour: behaviour})
	return s.status
}

// stubConn only needs to be non-nil, the recording sender never writes
type stubConn struct {
	net.PacketConn
}

func newTestDispatcher(handler MessageHandler) (*Dispatcher, *recordingSender) {
	ctx := &Context{
		Identifier: "me@host",
		Conn4:      stubConn{},
		Conn6:      stubConn{},
		Group4:     DefaultGroup4,
		Group6:     DefaultGroup6,
		Port:       DefaultPort,
		Ifindex:    3,
		Behaviours: DefaultBehaviours,
	}
	sender := &recordingSender{}
	return New(ctx, sender, peers.New(peers.DefaultCapacity), handler), sender
}

var (
	alice4 = &net.UDPAddr{IP: net.ParseIP("192.168.1.10"), Port: DefaultPort}
	alice6 = &net.UDPAddr{IP: net.ParseIP("fe80::10"), Port: DefaultPort, Zone: "3"}
)

func TestDispatchScanAnswersOnce(t *testing.T) {
	d, sender := newTestDispatcher(nil)

	action, err := d.Dispatch(protocol.Message{Type: protocol.MessageScan, Payload: []byte("alice@host")}, alice4)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if action != ActionAnswered {
		t.Errorf("Dispatch() action = %s, want %s", action, ActionAnswered)
	}

	if len(sender.calls) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.calls))
	}
	call := sender.calls[0]
	if call.msgType != protocol.MessageScanResponse || call.payload != "me@host" {
		t.Errorf("sent %s %q", call.msgType, call.payload)
	}
	if call.behaviour != delivery.SendIPv4Only || call.to4.Addr != alice4 || call.to6.Addr != nil {
		t.Errorf("reply not unicast to the sender over IPv4: %+v", call)
	}

	if d.Directory().Len() != 1 {
		t.Fatalf("directory Len() = %d, want 1", d.Directory().Len())
	}
	slot, ok := d.Directory().FindByIdentifier("alice@host")
	if !ok {
		t.Fatal("scanner not recorded")
	}
	peer, _ := d.Directory().Get(slot)
	if peer.IPv4.Addr != netip.MustParseAddr("192.168.1.10") {
		t.Errorf("recorded address = %s", peer.IPv4.Addr)
	}
}

func TestDispatchScanOverIPv6(t *testing.T) {
	d, sender := newTestDispatcher(nil)
	unscoped := &net.UDPAddr{IP: net.ParseIP("fe80::10"), Port: DefaultPort}

	if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScan, Payload: []byte("alice@host")}, unscoped); err != nil {
		t.Fatal(err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.calls))
	}
	call := sender.calls[0]
	if call.behaviour != delivery.SendIPv6Only || call.to4.Addr != nil {
		t.Errorf("reply not sent over IPv6 only: %+v", call)
	}
	if call.to6.Addr == nil || call.to6.Addr.Zone != "3" {
		t.Errorf("reply to %v, want zone 3", call.to6.Addr)
	}
	if unscoped.Zone != "" {
		t.Error("source address was modified")
	}
	if _, ok := d.Directory().FindByAddress(peers.FamilyIPv6, netip.MustParseAddr("fe80::10")); !ok {
		t.Error("scanner not recorded under IPv6")
	}
}

func TestDispatchScanResponseNeverAnswered(t *testing.T) {
	d, sender := newTestDispatcher(nil)

	action, err := d.Dispatch(protocol.Message{Type: protocol.MessageScanResponse, Payload: []byte("bob@host")}, alice4)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if action != ActionRecorded {
		t.Errorf("Dispatch() action = %s, want %s", action, ActionRecorded)
	}
	if len(sender.calls) != 0 {
		t.Errorf("sends = %d, want 0", len(sender.calls))
	}
	if _, ok := d.Directory().FindByIdentifier("bob@host"); !ok {
		t.Error("responder not recorded")
	}
}

func TestDispatchDisconnectRemovesFamily(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	for _, src := range []*net.UDPAddr{alice4, alice6} {
		if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScanResponse, Payload: []byte("alice@host")}, src); err != nil {
			t.Fatal(err)
		}
	}

	action, err := d.Dispatch(protocol.Message{Type: protocol.MessageDisconnect}, alice4)
	if err != nil || action != ActionRemoved {
		t.Fatalf("Dispatch() = (%s, %v)", action, err)
	}
	slot, ok := d.Directory().FindByIdentifier("alice@host")
	if !ok {
		t.Fatal("peer forgotten while still live on IPv6")
	}
	peer, _ := d.Directory().Get(slot)
	if peer.IPv4.Present() || !peer.IPv6.Present() {
		t.Errorf("after IPv4 disconnect: %+v", peer)
	}

	if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageDisconnect}, alice6); err != nil {
		t.Fatal(err)
	}
	if d.Directory().Len() != 0 {
		t.Errorf("directory Len() = %d, want 0", d.Directory().Len())
	}

	action, err = d.Dispatch(protocol.Message{Type: protocol.MessageDisconnect}, alice4)
	if err != nil || action != ActionNone {
		t.Errorf("disconnect from unknown peer = (%s, %v)", action, err)
	}
}

func TestDispatchCleartext(t *testing.T) {
	var got []Message
	d, sender := newTestDispatcher(func(m Message) {
		got = append(got, m)
	})

	text := protocol.Message{Type: protocol.MessageCleartext, Payload: []byte("hello")}
	if _, err := d.Dispatch(text, alice4); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScanResponse, Payload: []byte("alice@host")}, alice4); err != nil {
		t.Fatal(err)
	}
	action, err := d.Dispatch(text, alice4)
	if err != nil || action != ActionDelivered {
		t.Fatalf("Dispatch() = (%s, %v)", action, err)
	}

	if len(got) != 2 {
		t.Fatalf("handler calls = %d, want 2", len(got))
	}
	if got[0].From != "192.168.1.10" || got[0].Slot != -1 {
		t.Errorf("unknown sender = %+v", got[0])
	}
	if got[1].From != "alice@host" || got[1].Slot != 0 || got[1].Text != "hello" {
		t.Errorf("known sender = %+v", got[1])
	}
	if len(sender.calls) != 0 {
		t.Errorf("cleartext triggered %d sends", len(sender.calls))
	}
}

func TestDispatchReservedTypes(t *testing.T) {
	d, sender := newTestDispatcher(nil)
	for msgType := protocol.MessageType(4); msgType <= protocol.MaxMessageType; msgType++ {
		action, err := d.Dispatch(protocol.Message{Type: msgType, Payload: []byte("x")}, alice4)
		if err != nil || action != ActionUnhandled {
			t.Errorf("Dispatch(type %d) = (%s, %v)", msgType, action, err)
		}
	}
	if len(sender.calls) != 0 || d.Directory().Len() != 0 {
		t.Error("reserved types changed state")
	}
}

func TestDispatchRejects(t *testing.T) {
	d, sender := newTestDispatcher(nil)

	if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScan}, nil); !errors.Is(err, ErrInvalidSource) {
		t.Errorf("nil source error = %v", err)
	}
	if len(sender.calls) != 0 {
		t.Error("nil source triggered a send")
	}

	// empty identifier is answered but not recorded
	action, err := d.Dispatch(protocol.Message{Type: protocol.MessageScan}, alice4)
	if action != ActionAnswered || !errors.Is(err, peers.ErrInvalidIdentifier) {
		t.Errorf("empty scan = (%s, %v)", action, err)
	}
	if d.Directory().Len() != 0 {
		t.Error("empty identifier recorded")
	}
}
