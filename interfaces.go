package ieee802154

// Registers represents the memory-mapped register block of the RADIO peripheral.
//
// Implementations must behave like the hardware: task writes take effect
// immediately, events stay set until cleared, and every Read or Event call may
// observe the peripheral having moved on since the previous one.
type Registers interface {
	// Trigger starts the given task.
	Trigger(t Task)
	// Event reports whether the event has fired since it was last cleared.
	Event(e Event) bool
	// ClearEvent writes zero to the event register.
	ClearEvent(e Event)
	// Read returns the raw content of a configuration or status register.
	Read(r Register) uint32
	// Write replaces the raw content of a configuration register.
	Write(r Register, v uint32)
	// SetPacketPtr points EasyDMA at buf. The peripheral reads from (TX) or
	// writes to (RX) buf autonomously once a transfer is started.
	SetPacketPtr(buf *[PacketBufferSize]byte)
}

// Timer is a one-shot microsecond timer used to bound receive operations.
type Timer interface {
	// Start (re)arms the timer to expire after the given number of microseconds.
	Start(micros uint32)
	// ResetIfFinished reports whether the timer has expired and, if so, clears
	// the expiry so that the next call returns false.
	ResetIfFinished() bool
}
