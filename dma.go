package ieee802154

// EasyDMA reads from (TX) or writes to (RX) the packet buffer concurrently with the
// CPU. The compiler and the CPU must not move memory operations on the buffer across
// the register write that arms a transfer, nor across the read that observes its
// completion.
//
// dmaStartFence must be called right before the task write that starts a transfer.
// dmaEndFence must be called right after the event read that reports its completion,
// or after a cancelled receive has reached RxIdle.

// setBuffer points EasyDMA at buf and keeps buf referenced by the radio for as long
// as a transfer may use it.
func (r *Radio) setBuffer(buf *[PacketBufferSize]byte) {
	r.dmaBuf = buf
	r.regs.SetPacketPtr(buf)
}

// releaseBuffer drops the reference taken by setBuffer. Call it after dmaEndFence.
func (r *Radio) releaseBuffer() {
	r.dmaBuf = nil
}
