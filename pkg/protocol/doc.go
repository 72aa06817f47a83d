// Package protocol implements the lancomm wire format.
//
// Every datagram is a 2-byte big-endian header followed by the raw payload:
//
//	byte 0-1: header = (CRC12 << 4) | type   (type: 4 bits, 0-15)
//	byte 2..: payload (not null-terminated)
//
// The CRC-12 (polynomial 0x80F) is computed over the type byte followed by
// the payload, so a corrupted type is detected as well. The checksum only
// guards against corruption, it offers no protection against tampering.
//
// Example usage:
//
//	data, err := protocol.Marshal(protocol.MessageScan, []byte("alice@host"))
//	if err != nil {
//		return err
//	}
//
//	msg, err := protocol.Deencapsulate(data)
//	if err != nil {
//		// drop the datagram
//	}
package protocol
