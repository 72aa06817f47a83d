package protocol

import "errors"

const (
	// MaxPayloadSize is the largest payload a receiver accepts
	MaxPayloadSize = 2047
	// MaxMessageSize is the largest encoded datagram
	MaxMessageSize = HeaderSize + MaxPayloadSize
	// MaxUDPPayloadSize is the ceiling for a single datagram write
	MaxUDPPayloadSize = 65487
)

var (
	ErrInvalidType      = errors.New("message type out of range")
	ErrBufferTooSmall   = errors.New("buffer too small for message")
	ErrTooShort         = errors.New("message shorter than header")
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Encapsulate writes the encoded form of payload into dst and returns the
// encoded length.
func Encapsulate(t MessageType, payload []byte, dst []byte) (int, error) {
	if !t.Valid() {
		return 0, ErrInvalidType
	}
	if len(payload)+HeaderSize > len(dst) {
		return 0, ErrBufferTooSmall
	}

	copy(dst[HeaderSize:], payload)
	putHeader(dst, PackHeader(messageChecksum(t, payload), t))
	return len(payload) + HeaderSize, nil
}

// Marshal encodes payload into a freshly allocated datagram.
func Marshal(t MessageType, payload []byte) ([]byte, error) {
	size := len(payload) + HeaderSize
	if size > MaxMessageSize {
		return nil, ErrBufferTooSmall
	}
	buf := make([]byte, size)
	n, err := Encapsulate(t, payload, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Deencapsulate validates and decodes a datagram. The returned payload is
// a copy and does not alias data.
func Deencapsulate(data []byte) (Message, error) {
	if len(data) < HeaderSize {
		return Message{}, ErrTooShort
	}
	payload := data[HeaderSize:]
	if len(payload) > MaxPayloadSize {
		return Message{}, ErrBufferTooSmall
	}

	checksum, t := UnpackHeader(readHeader(data))
	if checksum != messageChecksum(t, payload) {
		return Message{}, ErrChecksumMismatch
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return Message{Type: t, Payload: out}, nil
}
