package sim

import "github.com/sigurn/crc16"

// The IEEE 802.15.4 FCS is the ITU-T CRC-16 (x^16 + x^12 + x^5 + 1) computed
// LSB first with a zero initial value, known as CRC-16/KERMIT.
var fcsTable = crc16.MakeTable(crc16.CRC16_KERMIT)

// FCS computes the frame check sequence of a MAC frame (the PSDU without its FCS).
func FCS(psdu []byte) uint16 {
	return crc16.Checksum(psdu, fcsTable)
}
