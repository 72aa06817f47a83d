package delivery

import (
	"errors"
	"net"
	"net/netip"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/lancomm/pkg/netaddr"
	"github.com/projectdiscovery/lancomm/pkg/protocol"
)

// receiveBufferSize is one byte larger than the largest valid datagram so
// that oversized datagrams are detected instead of silently truncated
const receiveBufferSize = protocol.MaxMessageSize + 1

// ErrNoConn is returned by Receive when called without a socket
var ErrNoConn = errors.New("no socket to receive from")

// Endpoint is a socket paired with the destination to write to. A nil Conn
// marks the stack as unavailable, a nil Addr marks the destination absent.
type Endpoint struct {
	Conn net.PacketConn
	Addr *net.UDPAddr
}

// Datagram is a decoded inbound message and its sender
type Datagram struct {
	Message protocol.Message
	Source  *net.UDPAddr
}

// Options configures an Engine
type Options struct {
	// PrintErrors logs failed socket writes
	PrintErrors bool
}

// Engine encodes and writes messages over one or both stacks
type Engine struct {
	options Options
}

// New returns an Engine. A nil options value uses the defaults.
func New(options *Options) *Engine {
	e := &Engine{}
	if options != nil {
		e.options = *options
	}
	return e
}

// Send encodes the message once and writes it according to behaviour. The
// returned status reports both stacks, a stack that was not used reports
// OutcomeNotAttempted.
func (e *Engine) Send(msgType protocol.MessageType, payload []byte, to4, to6 Endpoint, behaviour SendBehaviour) SendStatus {
	status4, status6 := OutcomeNotAttempted, OutcomeNotAttempted

	addr4, _ := netaddr.FromUDPAddr(to4.Addr)
	addr6, scope6 := netaddr.FromUDPAddr(to6.Addr)
	cast4 := netaddr.ClassifyIPv4(addr4)
	cast6 := netaddr.ClassifyIPv6Cast(addr6)

	if netaddr.ClassifyIPv6Scope(addr6, scope6) == netaddr.ScopeInvalidLinkLocal {
		status6 = OutcomeInvalidScope
	}

	switch {
	case cast4 != netaddr.CastNull && cast6 != netaddr.CastNull:
		if isCastMismatch(cast4, cast6) {
			return Combine(OutcomeCastMismatch, OutcomeCastMismatch)
		}
		invalid4, invalid6 := OutcomeNotAttempted, OutcomeNotAttempted
		if cast4 == netaddr.CastInvalid {
			invalid4 = OutcomeInvalidAddress
		}
		if cast6 == netaddr.CastInvalid {
			invalid6 = OutcomeInvalidAddress
		}
		if invalid4 != OutcomeNotAttempted || invalid6 != OutcomeNotAttempted {
			return Combine(invalid4, invalid6)
		}
	case cast4 == netaddr.CastNull && cast6 == netaddr.CastNull:
		return Combine(OutcomeInvalidAddress, OutcomeInvalidAddress)
	}

	buf := make([]byte, protocol.MaxMessageSize)
	n, err := protocol.Encapsulate(msgType, payload, buf)
	if err != nil {
		if e.options.PrintErrors {
			gologger.Verbose().Msgf("could not encapsulate %s message: %s", msgType, err)
		}
		return Combine(OutcomeEncapsulation, OutcomeEncapsulation)
	}
	msg := buf[:n]

	sendIPv4 := func() {
		status4 = e.helperSend("IPv4", msg, to4, cast4)
	}
	sendIPv6 := func() {
		// a link-local destination without scope id is never written
		if status6 == OutcomeInvalidScope {
			return
		}
		status6 = e.helperSend("IPv6", msg, to6, cast6)
	}

	if behaviour.triesIPv4First() {
		sendIPv4()
	}
	if behaviour == SendIPv6First || behaviour == SendIPv6Only || behaviour == SendBoth ||
		(behaviour == SendIPv4First && status4 != OutcomeOK) {
		sendIPv6()
	}
	if behaviour == SendIPv6First && status6 != OutcomeOK {
		sendIPv4()
	}

	return Combine(status4, status6)
}

func isCastMismatch(cast4, cast6 netaddr.CastType) bool {
	return (cast4 == netaddr.CastUnicast && cast6 == netaddr.CastMulticast) ||
		(cast4 == netaddr.CastMulticast && cast6 == netaddr.CastUnicast)
}

// helperSend performs a single datagram write on one stack
func (e *Engine) helperSend(stack string, msg []byte, to Endpoint, cast netaddr.CastType) Outcome {
	switch {
	case to.Conn == nil:
		return OutcomeInvalidFD
	case msg == nil:
		return OutcomeInvalidPointer
	case len(msg) < protocol.HeaderSize || len(msg) > protocol.MaxUDPPayloadSize:
		return OutcomeInvalidLength
	case to.Addr == nil || cast == netaddr.CastNull || cast == netaddr.CastInvalid:
		return OutcomeInvalidAddress
	}

	sent, err := to.Conn.WriteTo(msg, to.Addr)
	if sent == len(msg) {
		return OutcomeOK
	}
	if sent > 0 {
		if e.options.PrintErrors {
			gologger.Verbose().Msgf("partially sent %s/UDP to %s: %d of %d bytes", stack, to.Addr, sent, len(msg))
		}
		return OutcomePartiallySent
	}
	if e.options.PrintErrors {
		gologger.Verbose().Msgf("could not send %s/UDP to %s: %v", stack, to.Addr, err)
	}
	return mapSendError(err)
}

// Receive reads a single datagram from conn. Datagrams that fail to decode
// are dropped and reported as (nil, nil); an error means the socket itself
// failed.
func (e *Engine) Receive(conn net.PacketConn) (*Datagram, error) {
	if conn == nil {
		return nil, ErrNoConn
	}

	buf := make([]byte, receiveBufferSize)
	n, src, err := conn.ReadFrom(buf)
	if err != nil {
		return nil, err
	}

	msg, err := protocol.Deencapsulate(buf[:n])
	if err != nil {
		return nil, nil
	}
	source := toUDPAddr(src)
	if source == nil {
		return nil, nil
	}
	return &Datagram{Message: msg, Source: source}, nil
}

func toUDPAddr(addr net.Addr) *net.UDPAddr {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a
	case nil:
		return nil
	}
	addrPort, err := netip.ParseAddrPort(addr.String())
	if err != nil {
		return nil
	}
	return net.UDPAddrFromAddrPort(addrPort)
}
