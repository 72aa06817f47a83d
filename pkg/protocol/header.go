package protocol

import "encoding/binary"

const (
	// HeaderSize is the length of the encoded header in bytes
	HeaderSize = 2

	typeBits  = 4
	typeMask  = 0x0F
	checkMask = 0x0FFF
)

// PackHeader places the 12-bit checksum in the high bits and the 4-bit
// type in the low bits.
func PackHeader(checksum uint16, t MessageType) uint16 {
	return (checksum&checkMask)<<typeBits | uint16(t)&typeMask
}

// UnpackHeader splits a header into its checksum and type fields.
func UnpackHeader(header uint16) (checksum uint16, t MessageType) {
	return header >> typeBits, MessageType(header & typeMask)
}

func putHeader(dst []byte, header uint16) {
	binary.BigEndian.PutUint16(dst[:HeaderSize], header)
}

func readHeader(src []byte) uint16 {
	return binary.BigEndian.Uint16(src[:HeaderSize])
}
