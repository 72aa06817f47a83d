package protocol

const (
	crc12Poly = 0x80F
	crc12Mask = 0xFFF
	crc12Top  = 0x800
)

// Checksum calculates the CRC-12 of data with a zero initial register.
func Checksum(data []byte) uint16 {
	return updateChecksum(0, data...)
}

func updateChecksum(crc uint16, data ...byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 4
		for bit := 0; bit < 8; bit++ {
			if crc&crc12Top != 0 {
				crc = (crc << 1) ^ crc12Poly
			} else {
				crc <<= 1
			}
			crc &= crc12Mask
		}
	}
	return crc
}

// messageChecksum covers the type byte followed by the payload
func messageChecksum(t MessageType, payload []byte) uint16 {
	return updateChecksum(updateChecksum(0, byte(t)), payload...)
}
