package ieee802154

import "fmt"

// Packet sizes. See figure 124 in the nRF52840 Product Specification.
const (
	// Capacity is the maximum amount of usable payload (CRC excluded) a packet can carry.
	Capacity = 125
	// CRCSize is the size of the FCS. It is computed and checked by hardware and never
	// copied to or from RAM.
	CRCSize = 2
	// MaxPSDULen is the largest value the PHR can hold.
	MaxPSDULen = Capacity + CRCSize
	// PacketBufferSize is the size of the RAM buffer handed to EasyDMA: PHR + PSDU.
	PacketBufferSize = 1 + MaxPSDULen
)

// Packet is an IEEE 802.15.4 PHY layer packet: the PHY header (PHR) followed by the
// PSDU. The PSDU always includes the 2-byte MAC CRC (FCS), computed by hardware on
// transmission and verified on reception.
//
// Payload, CopyFrom and SetLen give access to the usable part of the PSDU and keep
// the PHR up to date.
type Packet struct {
	buf [PacketBufferSize]byte
}

// NewPacket returns an empty packet (Len() == 0).
func NewPacket() *Packet {
	p := &Packet{}
	p.Reset()
	return p
}

// Reset empties the packet.
func (p *Packet) Reset() {
	p.SetLen(0)
}

// CopyFrom fills the payload with src. This overwrites any received payload and LQI.
// It panics if src is larger than Capacity; nothing is written in that case.
func (p *Packet) CopyFrom(src []byte) {
	if len(src) > Capacity {
		panic(fmt.Sprintf("ieee802154: payload of %d bytes exceeds capacity of %d", len(src), Capacity))
	}
	copy(p.buf[1:], src)
	p.SetLen(uint8(len(src)))
}

// Len returns the size of the payload.
func (p *Packet) Len() uint8 {
	phr := p.buf[0] & 0x7F
	if phr < CRCSize {
		return 0
	}
	return phr - CRCSize
}

// SetLen changes the size of the payload. Only the PHR is rewritten; the payload
// bytes are left as they are.
// It panics if n is larger than Capacity.
func (p *Packet) SetLen(n uint8) {
	if n > Capacity {
		panic(fmt.Sprintf("ieee802154: length %d exceeds capacity of %d", n, Capacity))
	}
	p.buf[0] = n + CRCSize
}

// Payload returns the payload, bounded by Len. The slice aliases the packet buffer
// and can be used to modify the payload in place.
func (p *Packet) Payload() []byte {
	return p.buf[1 : 1+int(p.Len())]
}

// LQI returns the Link Quality Indicator of the received packet.
//
// The hardware stores the LQI right after the payload, so the value is only valid
// after a receive. CopyFrom, or SetLen followed by writes through Payload, overwrite it.
// The hardware does not compute a LQI for packets smaller than 3 bytes.
func (p *Packet) LQI() uint8 {
	return p.buf[1+int(p.Len())]
}

// Bytes returns a copy of the bytes as they are sent over the air, PHR included and
// FCS excluded.
func (p *Packet) Bytes() []byte {
	out := make([]byte, 1+int(p.Len()))
	copy(out, p.buf[:len(out)])
	return out
}

func (p *Packet) String() string {
	return fmt.Sprintf("Packet(len=%d, lqi=%d, payload=% X)", p.Len(), p.LQI(), p.Payload())
}
