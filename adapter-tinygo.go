//go:build tinygo && nrf52840

package ieee802154

import (
	"runtime/volatile"
	"unsafe"

	"device/nrf"
)

var tinygoTasks = [NumTasks]*volatile.Register32{
	TaskTxEn:     &nrf.RADIO.TASKS_TXEN,
	TaskRxEn:     &nrf.RADIO.TASKS_RXEN,
	TaskStart:    &nrf.RADIO.TASKS_START,
	TaskStop:     &nrf.RADIO.TASKS_STOP,
	TaskDisable:  &nrf.RADIO.TASKS_DISABLE,
	TaskEDStart:  &nrf.RADIO.TASKS_EDSTART,
	TaskEDStop:   &nrf.RADIO.TASKS_EDSTOP,
	TaskCCAStart: &nrf.RADIO.TASKS_CCASTART,
	TaskCCAStop:  &nrf.RADIO.TASKS_CCASTOP,
}

var tinygoEvents = [NumEvents]*volatile.Register32{
	EventReady:      &nrf.RADIO.EVENTS_READY,
	EventEnd:        &nrf.RADIO.EVENTS_END,
	EventDisabled:   &nrf.RADIO.EVENTS_DISABLED,
	EventPhyEnd:     &nrf.RADIO.EVENTS_PHYEND,
	EventCCAIdle:    &nrf.RADIO.EVENTS_CCAIDLE,
	EventCCABusy:    &nrf.RADIO.EVENTS_CCABUSY,
	EventCCAStopped: &nrf.RADIO.EVENTS_CCASTOPPED,
	EventEDEnd:      &nrf.RADIO.EVENTS_EDEND,
	EventEDStopped:  &nrf.RADIO.EVENTS_EDSTOPPED,
	EventTxReady:    &nrf.RADIO.EVENTS_TXREADY,
	EventRxReady:    &nrf.RADIO.EVENTS_RXREADY,
	EventFrameStart: &nrf.RADIO.EVENTS_FRAMESTART,
}

var tinygoRegisters = [NumRegisters]*volatile.Register32{
	RegPower:     &nrf.RADIO.POWER,
	RegMode:      &nrf.RADIO.MODE,
	RegFrequency: &nrf.RADIO.FREQUENCY,
	RegTxPower:   &nrf.RADIO.TXPOWER,
	RegPCNF0:     &nrf.RADIO.PCNF0,
	RegPCNF1:     &nrf.RADIO.PCNF1,
	RegCRCCNF:    &nrf.RADIO.CRCCNF,
	RegCRCPoly:   &nrf.RADIO.CRCPOLY,
	RegCRCInit:   &nrf.RADIO.CRCINIT,
	RegSFD:       &nrf.RADIO.SFD,
	RegCCACtrl:   &nrf.RADIO.CCACTRL,
	RegEDCnt:     &nrf.RADIO.EDCNT,
	RegEDSample:  &nrf.RADIO.EDSAMPLE,
	RegRxCRC:     &nrf.RADIO.RXCRC,
	RegCRCStatus: &nrf.RADIO.CRCSTATUS,
	RegShorts:    &nrf.RADIO.SHORTS,
	RegState:     &nrf.RADIO.STATE,
}

// tinygoRadio maps Registers onto the memory-mapped RADIO peripheral.
type tinygoRadio struct{}

func (tinygoRadio) Trigger(t Task)             { tinygoTasks[t].Set(1) }
func (tinygoRadio) Event(e Event) bool         { return tinygoEvents[e].Get() != 0 }
func (tinygoRadio) ClearEvent(e Event)         { tinygoEvents[e].Set(0) }
func (tinygoRadio) Read(r Register) uint32     { return tinygoRegisters[r].Get() }
func (tinygoRadio) Write(r Register, v uint32) { tinygoRegisters[r].Set(v) }

func (tinygoRadio) SetPacketPtr(buf *[PacketBufferSize]byte) {
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(buf))))
}

// startHFCLK starts the high-frequency crystal oscillator the radio runs from.
func startHFCLK() {
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
}

// Open claims the RADIO peripheral of the nRF52840 and initializes it.
// It returns an error wrapping ErrDoubleInit if the peripheral is already in use.
// Close releases it.
func Open(c Config) (*Radio, error) {
	if err := claimPeripheral(); err != nil {
		return nil, err
	}
	startHFCLK()
	r, err := NewWithRegisters(c, tinygoRadio{})
	if err != nil {
		releasePeripheral()
		return nil, err
	}
	r.owned = true
	return r, nil
}
