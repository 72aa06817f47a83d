package protocol

import "fmt"

// MessageType is the 4-bit message type carried in the header
type MessageType uint8

const (
	MessageScan MessageType = iota
	MessageScanResponse
	MessageCleartext
	MessageDisconnect
)

// MaxMessageType is the largest value that fits the 4-bit type field
const MaxMessageType MessageType = 0x0F

func (t MessageType) String() string {
	switch t {
	case MessageScan:
		return "scan"
	case MessageScanResponse:
		return "scan-response"
	case MessageCleartext:
		return "cleartext"
	case MessageDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("reserved(%d)", uint8(t))
	}
}

// Valid reports whether t fits the header type field
func (t MessageType) Valid() bool {
	return t <= MaxMessageType
}

// Message is a decoded datagram
type Message struct {
	Type    MessageType
	Payload []byte
}
