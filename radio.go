package ieee802154

import (
	"fmt"
	"sync/atomic"

	"periph.io/x/conn/v3"
)

var _ conn.Resource = (*Radio)(nil)

// CRC polynomial and initial value mandated by IEEE 802.15.4 for the FCS.
const (
	crcPoly = 0x0001_1021
	crcInit = 0
)

// Radio is an IEEE 802.15.4 driver for the nRF52840 RADIO peripheral.
//
// A Radio has a single owner. Its methods are blocking and busy-poll the hardware;
// none of them are safe for concurrent use.
//
// After, or at the start of, any method call the RADIO is in one of the Disabled,
// RxIdle or TxIdle states.
type Radio struct {
	regs peripheral
	log  Logger

	// needsEnable is set when a setting that only takes effect on ramp-up has changed
	// since the radio was last enabled.
	needsEnable bool

	// dmaBuf is the buffer EasyDMA may currently be accessing.
	dmaBuf *[PacketBufferSize]byte

	// owned is set when the radio claimed the hardware peripheral (see Open).
	owned bool
}

// NewWithRegisters creates and initializes a radio driving the given register block.
func NewWithRegisters(c Config, regs Registers) (*Radio, error) {
	if regs == nil {
		return nil, fmt.Errorf("%w: nil register block", ErrPkg)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := &Radio{
		regs: peripheral{regs},
		log:  c.Logger,
	}

	r.logger().Info("Initializing RADIO in IEEE 802.15.4 mode...")

	// Disable and enable to reset the peripheral
	r.regs.Write(RegPower, 0)
	r.regs.Write(RegPower, 1)

	r.regs.Write(RegMode, ModeIEEE802154)
	r.regs.Write(RegCRCCNF, CRCConfig{Len: CRCSize, Skip: CRCSkipIEEE802154}.Bits())
	r.regs.Write(RegCRCPoly, crcPoly)
	r.regs.Write(RegCRCInit, crcInit)
	r.regs.Write(RegPCNF0, PacketConfig0{
		LengthBits:  8,
		Preamble:    Preamble32BitZero,
		CRCInLength: true,
	}.Bits())
	r.regs.Write(RegPCNF1, PacketConfig1{MaxLen: MaxPSDULen}.Bits())

	r.SetSFD(c.SFD)
	r.SetTxPower(c.TxPower)
	r.SetChannel(c.Channel)
	r.SetCCA(c.cca())

	r.logger().Info("RADIO initialized.")
	return r, nil
}

func (r *Radio) logger() Logger {
	if r.log != nil {
		return r.log
	}
	return globalLogger
}

func (r *Radio) String() string {
	return fmt.Sprintf("RADIO(Channel=%s, TxPower=%s, CCA=%s, State=%s)",
		r.Channel(),
		r.TxPower(),
		r.CCA(),
		r.regs.state(),
	)
}

// --- Settings ---

// SetChannel changes the radio channel.
// It panics if ch is not between 11 and 26.
func (r *Radio) SetChannel(ch Channel) {
	if !ch.Valid() {
		panic("ieee802154: channel must be between 11 and 26")
	}
	r.needsEnable = true
	r.regs.Write(RegFrequency, Frequency{Offset: ch.FrequencyOffset()}.Bits())
}

// SetChannelRaw changes the radio channel using a raw channel number.
// It panics if n is not between 11 and 26.
func (r *Radio) SetChannelRaw(n uint8) {
	r.SetChannel(Channel(n))
}

// Channel returns the channel currently programmed in the FREQUENCY register.
func (r *Radio) Channel() Channel {
	ch, _ := ChannelFromFrequencyOffset(ParseFrequency(r.regs.Read(RegFrequency)).Offset)
	return ch
}

// SetCCA changes the Clear Channel Assessment method.
func (r *Radio) SetCCA(c CCA) {
	if c.mode != CCAModeCarrier && c.mode != CCAModeEnergy {
		panic("ieee802154: unsupported CCA mode")
	}
	r.needsEnable = true
	r.regs.Write(RegCCACtrl, c.control().Bits())
}

// CCA returns the Clear Channel Assessment method currently programmed.
func (r *Radio) CCA() CCA {
	ctrl := ParseCCAControl(r.regs.Read(RegCCACtrl))
	if ctrl.Mode == CCAModeEnergy {
		return EnergyDetection(ctrl.EDThreshold)
	}
	return CCA{mode: ctrl.Mode}
}

// SetSFD changes the Start of Frame Delimiter.
func (r *Radio) SetSFD(sfd uint8) {
	r.regs.Write(RegSFD, uint32(sfd)&sfdMask)
}

// SFD returns the Start of Frame Delimiter currently programmed.
func (r *Radio) SFD() uint8 {
	return uint8(r.regs.Read(RegSFD) & sfdMask)
}

// SetTxPower changes the transmission power.
// It panics if p is not a level supported by the hardware.
func (r *Radio) SetTxPower(p TxPower) {
	if !p.Valid() {
		panic("ieee802154: invalid transmission power value")
	}
	r.needsEnable = true
	r.regs.Write(RegTxPower, p.bits())
}

// SetTxPowerRaw changes the transmission power using a raw dBm value.
// It panics if dBm is not one of +8 to +2, 0, -4, -8, -12, -16, -20, -30 or -40.
func (r *Radio) SetTxPowerRaw(dBm int8) {
	r.SetTxPower(TxPower(dBm))
}

// TxPower returns the transmission power currently programmed.
func (r *Radio) TxPower() TxPower {
	return TxPowerFromRegister(r.regs.Read(RegTxPower))
}

// --- Transmit ---

// TrySend performs Clear Channel Assessment and sends p only if the channel is
// observed to be clear. Otherwise nothing is transmitted and ErrChannelBusy is
// returned.
//
// p is not modified.
func (r *Radio) TrySend(p *Packet) error {
	// CCA is performed in receive mode
	r.putInRxMode()

	r.regs.ClearEvent(EventPhyEnd)
	r.regs.ClearEvent(EventEnd)
	r.regs.ClearEvent(EventCCABusy)

	r.setBuffer(&p.buf)
	// start transmission as soon as the channel is found idle
	r.regs.modifyShorts(func(s *Shorts) {
		s.CCAIdleTxEn = true
		s.TxReadyStart = true
		s.EndDisable = true
	})

	dmaStartFence()
	r.regs.Trigger(TaskCCAStart)

	for {
		if r.regs.Event(EventPhyEnd) {
			dmaEndFence()
			r.regs.ClearEvent(EventPhyEnd)
			r.regs.setShorts(Shorts{})
			r.releaseBuffer()
			return nil
		}
		if r.regs.Event(EventCCABusy) {
			r.regs.ClearEvent(EventCCABusy)
			r.regs.setShorts(Shorts{})
			r.releaseBuffer()
			return fmt.Errorf("%w: %w", ErrPkg, ErrChannelBusy)
		}
	}
}

// Send sends p, performing Clear Channel Assessment first and retrying it
// back-to-back until the channel is found clear.
//
// Retrying without a back-off between failed CCA attempts is NOT IEEE 802.15.4
// compliant. Use TrySend to implement a compliant back-off.
//
// p is not modified.
func (r *Radio) Send(p *Packet) {
	r.putInRxMode()

	r.regs.ClearEvent(EventPhyEnd)
	r.regs.ClearEvent(EventEnd)
	r.regs.ClearEvent(EventCCABusy)

	r.setBuffer(&p.buf)
	r.regs.modifyShorts(func(s *Shorts) {
		s.CCAIdleTxEn = true
		s.TxReadyStart = true
		s.EndDisable = true
	})

	dmaStartFence()
	busy := 0
	for sent := false; !sent; {
		// CCA, and transmission if the channel is clear
		r.regs.Trigger(TaskCCAStart)
		for {
			if r.regs.Event(EventPhyEnd) {
				dmaEndFence()
				r.regs.ClearEvent(EventPhyEnd)
				sent = true
				break
			}
			if r.regs.Event(EventCCABusy) {
				r.regs.ClearEvent(EventCCABusy)
				busy++
				break
			}
		}
	}
	r.regs.setShorts(Shorts{})
	r.releaseBuffer()

	if busy > 0 {
		r.logger().Debug(fmt.Sprintf("Packet sent after %d busy CCA attempts", busy))
	}
}

// SendNoCCA sends p without performing Clear Channel Assessment first.
// Acknowledgment frames must be sent with this method.
//
// p is not modified.
func (r *Radio) SendNoCCA(p *Packet) {
	r.putInTxMode()

	r.regs.ClearEvent(EventPhyEnd)
	r.regs.ClearEvent(EventEnd)

	r.setBuffer(&p.buf)
	// disable the transmitter once the packet is sent
	r.regs.modifyShorts(func(s *Shorts) { s.EndDisable = true })

	dmaStartFence()
	r.regs.Trigger(TaskStart)

	r.regs.waitForEvent(EventPhyEnd)
	dmaEndFence()
	r.regs.setShorts(Shorts{})
	r.releaseBuffer()
}

// --- Energy detection ---

// EnergyDetectionScan samples the received signal power within the bandwidth of the
// current channel for the given number of cycles. One cycle is 128 µs, and each
// produces the average RSSI measured during that time.
//
// It returns the maximum measurement recorded during sampling, as reported by the
// hardware (0..0xFF, not dBm). The result can be used to pick a threshold for
// EnergyDetection.
func (r *Radio) EnergyDetectionScan(cycles uint32) uint8 {
	r.regs.Write(RegEDCnt, cycles&edCntMask)

	// READY->START must not be active when entering receive mode
	r.regs.setShorts(Shorts{})
	r.putInRxMode()

	r.regs.ClearEvent(EventEDEnd)
	r.regs.Trigger(TaskEDStart)
	r.regs.waitForEvent(EventEDEnd)

	// with EDCNT > 0 EDSAMPLE holds the maximum, not the average
	return r.regs.edSample()
}

// --- State machine ---

// Disable moves the radio from any state to Disabled, aborting any ongoing CCA,
// reception or transmission. See figure 110 in the nRF52840 Product Specification.
func (r *Radio) Disable() {
	for {
		switch r.regs.state() {
		case StateDisabled:
			return
		case StateRxRu, StateRxIdle, StateTxRu, StateTxIdle:
			r.regs.Trigger(TaskDisable)
			r.regs.waitForState(StateDisabled)
			return
		case StateRxDisable, StateTxDisable:
			r.regs.waitForState(StateDisabled)
			return
		case StateRx:
			r.regs.Trigger(TaskCCAStop)
			r.regs.Trigger(TaskStop)
			r.regs.waitForState(StateRxIdle)
		case StateTx:
			r.regs.Trigger(TaskStop)
			r.regs.waitForState(StateTxIdle)
		}
	}
}

// Halt implements conn.Resource. It disables the radio but leaves it powered.
func (r *Radio) Halt() error {
	r.Disable()
	return nil
}

// Close disables and powers down the radio. A radio created with Open releases the
// peripheral so that it can be opened again.
func (r *Radio) Close() error {
	r.Disable()
	r.regs.Write(RegPower, 0)
	r.logger().Info("RADIO powered down.")
	if r.owned {
		r.owned = false
		releasePeripheral()
	}
	return nil
}

// state returns the current state once it is one of Disabled, RxIdle or TxIdle.
// Transitory states are waited out; an ongoing reception or transmission is stopped.
func (r *Radio) state() State {
	for {
		switch s := r.regs.state(); s {
		case StateDisabled, StateRxIdle, StateTxIdle:
			return s
		case StateRx:
			r.logger().Warn("Stopping ongoing CCA/reception")
			r.regs.Trigger(TaskCCAStop)
			r.regs.Trigger(TaskStop)
			r.regs.waitForState(StateRxIdle)
		case StateTx:
			r.logger().Warn("Stopping ongoing transmission")
			r.regs.Trigger(TaskStop)
			r.regs.waitForState(StateTxIdle)
		default:
			// ramping up or down
		}
	}
}

// putInRxMode moves the radio to RxIdle.
func (r *Radio) putInRxMode() {
	var disable, enable bool
	switch r.state() {
	case StateDisabled:
		enable = true
	case StateRxIdle:
		enable = r.needsEnable
	case StateTxIdle:
		// errata 204 (rev1 v1.4): go TxIdle -> Disabled -> RxIdle
		disable, enable = true, true
	}

	if disable {
		r.regs.Trigger(TaskDisable)
		r.regs.waitForState(StateDisabled)
	}
	if enable {
		r.needsEnable = false
		r.regs.Trigger(TaskRxEn)
		r.regs.waitForState(StateRxIdle)
	}
}

// putInTxMode moves the radio to TxIdle.
func (r *Radio) putInTxMode() {
	switch r.state() {
	case StateTxIdle:
		if !r.needsEnable {
			return
		}
	case StateRxIdle:
		r.regs.Trigger(TaskDisable)
		r.regs.waitForState(StateDisabled)
	}

	r.needsEnable = false
	r.regs.Trigger(TaskTxEn)
	r.regs.waitForState(StateTxIdle)
}

// --- Peripheral ownership ---

var peripheralClaimed atomic.Bool

// claimPeripheral marks the RADIO peripheral as in use. It returns ErrDoubleInit
// if it already is.
func claimPeripheral() error {
	if !peripheralClaimed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: %w", ErrPkg, ErrDoubleInit)
	}
	return nil
}

func releasePeripheral() {
	peripheralClaimed.Store(false)
}
