package ieee802154

import (
	"bytes"
	"testing"
)

func TestNewPacketIsEmpty(t *testing.T) {
	p := NewPacket()
	if p.Len() != 0 {
		t.Errorf("Expected empty packet, got length %d", p.Len())
	}
	if p.buf[0] != CRCSize {
		t.Errorf("Expected PHR %d, got %d", CRCSize, p.buf[0])
	}
	if len(p.Payload()) != 0 {
		t.Errorf("Expected empty payload, got %X", p.Payload())
	}
}

func TestPacketCopyFrom(t *testing.T) {
	p := NewPacket()
	p.CopyFrom([]byte{0xDE, 0xAD, 0xBE, 0xEF})

	if p.Len() != 4 {
		t.Errorf("Expected length 4, got %d", p.Len())
	}
	if p.buf[0] != 6 {
		t.Errorf("Expected PHR to include the FCS, got %d", p.buf[0])
	}
	if want := []byte{6, 0xDE, 0xAD, 0xBE, 0xEF}; !bytes.Equal(p.Bytes(), want) {
		t.Errorf("Expected on-air bytes %X, got %X", want, p.Bytes())
	}

	full := bytes.Repeat([]byte{0x55}, Capacity)
	p.CopyFrom(full)
	if !bytes.Equal(p.Payload(), full) {
		t.Errorf("Expected a full payload")
	}
	if p.buf[0] != MaxPSDULen {
		t.Errorf("Expected PHR %d, got %d", MaxPSDULen, p.buf[0])
	}
}

func TestPacketCopyFromEveryLength(t *testing.T) {
	p := NewPacket()
	for n := 0; n <= Capacity; n++ {
		src := make([]byte, n)
		for i := range src {
			src[i] = byte(n + i)
		}
		p.CopyFrom(src)
		if int(p.Len()) != n || !bytes.Equal(p.Payload(), src) {
			t.Fatalf("length %d: got length %d, payload %X", n, p.Len(), p.Payload())
		}
	}
}

func TestPacketCopyFromTooLarge(t *testing.T) {
	p := NewPacket()
	p.CopyFrom([]byte("keep"))

	defer func() {
		if recover() == nil {
			t.Errorf("Expected CopyFrom to panic")
		}
		if !bytes.Equal(p.Payload(), []byte("keep")) {
			t.Errorf("Expected the packet to be left untouched, got %q", p.Payload())
		}
	}()
	p.CopyFrom(make([]byte, Capacity+1))
}

func TestPacketSetLen(t *testing.T) {
	p := NewPacket()
	p.CopyFrom([]byte("abcdef"))
	p.SetLen(3)

	if !bytes.Equal(p.Payload(), []byte("abc")) {
		t.Errorf("Expected truncated payload, got %q", p.Payload())
	}
	// payload bytes past the length are left alone
	p.SetLen(6)
	if !bytes.Equal(p.Payload(), []byte("abcdef")) {
		t.Errorf("Expected payload to be preserved, got %q", p.Payload())
	}
	p.SetLen(0)
	if p.Len() != 0 {
		t.Errorf("Expected length 0, got %d", p.Len())
	}
	p.SetLen(Capacity)
	if p.Len() != Capacity {
		t.Errorf("Expected length %d, got %d", Capacity, p.Len())
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expected SetLen to panic")
		}
	}()
	p.SetLen(Capacity + 1)
}

func TestPacketPayloadAliasesBuffer(t *testing.T) {
	p := NewPacket()
	p.SetLen(2)
	copy(p.Payload(), "hi")

	if !bytes.Equal(p.buf[1:3], []byte("hi")) {
		t.Errorf("Expected writes through Payload to reach the buffer")
	}
}

func TestPacketLQI(t *testing.T) {
	p := NewPacket()
	p.CopyFrom([]byte{1, 2, 3})
	// the hardware stores the LQI right after the payload
	p.buf[4] = 0xB4

	if p.LQI() != 0xB4 {
		t.Errorf("Expected LQI 0xB4, got 0x%X", p.LQI())
	}

	p.CopyFrom(bytes.Repeat([]byte{0}, Capacity))
	p.buf[PacketBufferSize-2] = 0x11
	if p.LQI() != 0x11 {
		t.Errorf("Expected LQI of a full packet at the end of the buffer, got 0x%X", p.LQI())
	}
}

func TestPacketReset(t *testing.T) {
	p := NewPacket()
	p.CopyFrom([]byte("data"))
	p.Reset()

	if p.Len() != 0 {
		t.Errorf("Expected empty packet after Reset, got length %d", p.Len())
	}
}

func TestPacketLenWithBogusPHR(t *testing.T) {
	var p Packet
	if p.Len() != 0 {
		t.Errorf("Expected zero length for a zero PHR, got %d", p.Len())
	}
	p.buf[0] = 0xFF
	if p.Len() != Capacity {
		t.Errorf("Expected the PHR reserved bit to be ignored, got %d", p.Len())
	}
}
