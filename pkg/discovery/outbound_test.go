package discovery

import (
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/projectdiscovery/lancomm/pkg/delivery"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
)

func TestScan(t *testing.T) {
	d, sender := newTestDispatcher(nil)

	if _, err := d.Scan(); err != nil {
		t.Fatal(err)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("sends = %d, want 1", len(sender.calls))
	}
	call := sender.calls[0]
	if call.msgType != protocol.MessageScan || call.payload != "me@host" || call.behaviour != delivery.SendBoth {
		t.Errorf("scan = %+v", call)
	}
	if got := call.to4.Addr.String(); got != "224.0.0.192:8192" {
		t.Errorf("IPv4 group = %s", got)
	}
	if got := call.to6.Addr.String(); got != "[ff02::c0%3]:8192" {
		t.Errorf("IPv6 group = %s", got)
	}
}

func TestScanSingleStack(t *testing.T) {
	d, sender := newTestDispatcher(nil)
	d.Context().Conn6 = nil

	if _, err := d.Scan(); err != nil {
		t.Fatal(err)
	}
	call := sender.calls[0]
	if call.behaviour != delivery.SendIPv4Only {
		t.Errorf("behaviour = %s, want %s", call.behaviour, delivery.SendIPv4Only)
	}
	if call.to6.Addr != nil {
		t.Errorf("IPv6 destination set without a socket: %s", call.to6.Addr)
	}

	d.Context().Identifier = ""
	if _, err := d.Scan(); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("Scan() error = %v, want %v", err, ErrUnknownIdentity)
	}
}

func TestSendText(t *testing.T) {
	d, sender := newTestDispatcher(nil)
	for _, src := range []*net.UDPAddr{alice4, alice6} {
		if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScanResponse, Payload: []byte("alice@host")}, src); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := d.SendText(0, "hi alice"); err != nil {
		t.Fatal(err)
	}
	call := sender.calls[0]
	if call.msgType != protocol.MessageCleartext || call.payload != "hi alice" || call.behaviour != delivery.SendIPv6First {
		t.Errorf("text = %+v", call)
	}
	if got := call.to4.Addr.String(); got != "192.168.1.10:8192" {
		t.Errorf("IPv4 destination = %s", got)
	}
	if got := call.to6.Addr.String(); got != "[fe80::10%3]:8192" {
		t.Errorf("IPv6 destination = %s", got)
	}

	if _, err := d.SendText(5, "hi"); !errors.Is(err, ErrUnknownPeer) {
		t.Errorf("SendText(empty slot) error = %v", err)
	}
	if _, err := d.SendText(0, strings.Repeat("x", protocol.MaxPayloadSize+1)); !errors.Is(err, ErrMessageTooLong) {
		t.Errorf("SendText(long) error = %v", err)
	}
}

func TestDisconnectAll(t *testing.T) {
	d, sender := newTestDispatcher(nil)
	sources := map[string]*net.UDPAddr{
		"alice@host": alice4,
		"bob@host":   alice6,
	}
	for id, src := range sources {
		if _, err := d.Dispatch(protocol.Message{Type: protocol.MessageScanResponse, Payload: []byte(id)}, src); err != nil {
			t.Fatal(err)
		}
	}

	if reached := d.DisconnectAll(); reached != 2 {
		t.Errorf("DisconnectAll() = %d, want 2", reached)
	}
	if len(sender.calls) != 2 {
		t.Fatalf("sends = %d, want 2", len(sender.calls))
	}
	for _, call := range sender.calls {
		if call.msgType != protocol.MessageDisconnect || call.payload != "me@host" {
			t.Errorf("disconnect = %+v", call)
		}
		if call.to4.Addr != nil && call.behaviour != delivery.SendIPv4Only {
			t.Errorf("IPv4 peer reached with %s", call.behaviour)
		}
		if call.to6.Addr != nil && call.behaviour != delivery.SendIPv6Only {
			t.Errorf("IPv6 peer reached with %s", call.behaviour)
		}
	}
	if d.Directory().Len() != 0 {
		t.Errorf("directory Len() = %d after DisconnectAll", d.Directory().Len())
	}
}

func TestDisconnectUnknown(t *testing.T) {
	d, _ := newTestDispatcher(nil)
	if _, err := d.Disconnect(0); !errors.Is(err, ErrUnknownPeer) {
		t.Errorf("Disconnect() error = %v, want %v", err, ErrUnknownPeer)
	}
}
