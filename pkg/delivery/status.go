package delivery

import "fmt"

// Outcome is the result of a send attempt on a single stack
type Outcome uint8

const (
	OutcomeOK             Outcome = 0x0
	OutcomeNotAttempted   Outcome = 0x1
	OutcomeInvalidFD      Outcome = 0x2
	OutcomeInvalidAddress Outcome = 0x3
	OutcomeInvalidLength  Outcome = 0x4
	OutcomeInvalidPointer Outcome = 0x5
	OutcomePartiallySent  Outcome = 0x6
	OutcomeCastMismatch   Outcome = 0x7
	OutcomeEncapsulation  Outcome = 0x8
	OutcomeInvalidScope   Outcome = 0xE // IPv6 only
	OutcomeOther          Outcome = 0xF

	outcomeMask Outcome = 0xF
)

const (
	ipv6Shift = 4

	ipv4Mask SendStatus = 0x0F
	ipv6Mask SendStatus = 0xF0
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotAttempted:
		return "not-attempted"
	case OutcomeInvalidFD:
		return "invalid-fd"
	case OutcomeInvalidAddress:
		return "invalid-address"
	case OutcomeInvalidLength:
		return "invalid-length"
	case OutcomeInvalidPointer:
		return "invalid-pointer"
	case OutcomePartiallySent:
		return "partially-sent"
	case OutcomeCastMismatch:
		return "cast-mismatch"
	case OutcomeEncapsulation:
		return "encapsulation-failure"
	case OutcomeInvalidScope:
		return "invalid-scope"
	case OutcomeOther:
		return "other"
	default:
		return fmt.Sprintf("outcome(%#x)", uint8(o))
	}
}

// SendStatus packs the IPv4 outcome in the low nibble and the IPv6
// outcome in the high nibble.
type SendStatus uint8

// IPv4Status places o in the IPv4 nibble
func IPv4Status(o Outcome) SendStatus {
	return SendStatus(o & outcomeMask)
}

// IPv6Status places o in the IPv6 nibble
func IPv6Status(o Outcome) SendStatus {
	return SendStatus(o&outcomeMask) << ipv6Shift
}

// Combine merges both outcomes. The nibbles are OR-ed bitwise so each
// stack's result survives.
func Combine(ipv4, ipv6 Outcome) SendStatus {
	return IPv4Status(ipv4) | IPv6Status(ipv6)
}

func (s SendStatus) IPv4() Outcome {
	return Outcome(s & ipv4Mask)
}

func (s SendStatus) IPv6() Outcome {
	return Outcome((s & ipv6Mask) >> ipv6Shift)
}

// Succeeded reports whether the send satisfied behaviour: SendBoth needs
// both stacks to succeed, every other behaviour needs at least one.
func (s SendStatus) Succeeded(behaviour SendBehaviour) bool {
	if behaviour == SendBoth {
		return s.IPv4() == OutcomeOK && s.IPv6() == OutcomeOK
	}
	return s.IPv4() == OutcomeOK || s.IPv6() == OutcomeOK
}

func (s SendStatus) String() string {
	return fmt.Sprintf("ipv4=%s ipv6=%s", s.IPv4(), s.IPv6())
}
