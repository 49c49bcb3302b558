package ieee802154

import (
	"errors"
	"fmt"
)

// Recv is an ongoing non-blocking receive, handed out by Radio.RecvNonBlocking.
// It is only valid inside the callback it was passed to.
type Recv struct {
	radio  *Radio
	closed bool
}

// Poll checks whether the receive is done.
//
// It returns the received CRC and a nil error if the packet CRC was validated by the
// hardware, the CRC and a *CRCError if the check failed, and ErrWouldBlock if no
// packet has been received yet. The packet is updated in the first two cases.
func (rv *Recv) Poll() (uint16, error) {
	if rv.closed {
		panic("ieee802154: Recv used after its receive was cancelled")
	}
	regs := rv.radio.regs
	if !regs.Event(EventEnd) {
		return 0, ErrWouldBlock
	}
	regs.ClearEvent(EventEnd)
	dmaEndFence()

	crc := regs.rxCRC()
	if !regs.crcOK() {
		return crc, &CRCError{CRC: crc}
	}
	return crc, nil
}

func (rv *Recv) close() {
	rv.closed = true
	rv.radio.cancelRecv()
}

// Recv receives one packet into p, blocking until one arrives.
//
// err is nil if the packet CRC was validated by the hardware, and a *CRCError
// otherwise. In both cases p holds the received packet.
func (r *Radio) Recv(p *Packet) (crc uint16, err error) {
	r.RecvNonBlocking(p, func(rv *Recv) {
		for {
			crc, err = rv.Poll()
			if !errors.Is(err, ErrWouldBlock) {
				return
			}
		}
	})
	return crc, err
}

// RecvNonBlocking starts receiving into p and calls f with the ongoing receive.
//
// p must not be accessed by f other than through the results of Recv.Poll: the
// hardware may be writing to it. When f returns, or panics, the receive is cancelled
// if it has not completed and the radio is left in RxIdle.
func (r *Radio) RecvNonBlocking(p *Packet, f func(rv *Recv)) {
	r.startRecv(p)
	rv := &Recv{radio: r}
	defer rv.close()
	f(rv)
}

// RecvTimeout listens for a packet for no longer than the given number of
// microseconds and receives it into p.
//
// It returns an error wrapping ErrTimeout if nothing was received in time, and a
// *CRCError if a packet was received but its CRC check failed. p holds the packet in
// the latter case as well.
//
// The time the radio takes to switch to receive mode, up to about a hundred
// microseconds, is included in the timeout.
func (r *Radio) RecvTimeout(p *Packet, timer Timer, micros uint32) (crc uint16, err error) {
	timer.Start(micros)
	r.RecvNonBlocking(p, func(rv *Recv) {
		for {
			crc, err = rv.Poll()
			if !errors.Is(err, ErrWouldBlock) {
				return
			}
			if timer.ResetIfFinished() {
				// the receive is cancelled when the callback returns
				crc, err = 0, fmt.Errorf("%w: %w", ErrPkg, ErrTimeout)
				return
			}
		}
	})
	return crc, err
}

func (r *Radio) startRecv(p *Packet) {
	r.regs.ClearEvent(EventPhyEnd)
	r.regs.ClearEvent(EventEnd)

	r.putInRxMode()

	// the transfer has not started yet
	r.setBuffer(&p.buf)

	dmaStartFence()
	r.regs.Trigger(TaskStart)
}

func (r *Radio) cancelRecv() {
	r.regs.Trigger(TaskStop)
	r.regs.waitForState(StateRxIdle)
	// a transfer may have been in progress
	dmaEndFence()
	r.releaseBuffer()
}
