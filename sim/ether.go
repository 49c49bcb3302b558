// Package sim simulates nRF52840 RADIO peripherals sharing the 2.4 GHz band.
//
// A Peripheral implements ieee802154.Registers, so the driver runs unchanged on
// top of it. Simulated time only advances when the CPU polls the peripheral (every
// Event and Read call is one tick), which makes the timing of a single radio fully
// deterministic. Peripherals attached to the same Ether hear each other when tuned
// to the same channel.
package sim

import (
	"sync"

	"github.com/google/uuid"

	"github.com/michcald/ieee802154"
)

// carrierEnergy is the energy level reported while a frame is on air.
const carrierEnergy = 0xC0

// frame is a frame on air.
type frame struct {
	source  uuid.UUID
	freq    uint8
	sfd     uint8
	payload []byte
	fcs     uint16
}

// Ether is the medium shared by attached peripherals. It is safe for concurrent use.
type Ether struct {
	mu       sync.Mutex
	peers    []*Peripheral
	airtime  map[uint8]int
	jammed   map[uint8]bool
	noise    map[uint8]uint8
	corrupt  int
	lqi      uint8
	recorder *Recorder
	seq      uint64
}

// NewEther returns an empty, quiet medium.
func NewEther() *Ether {
	return &Ether{
		airtime: make(map[uint8]int),
		jammed:  make(map[uint8]bool),
		noise:   make(map[uint8]uint8),
		lqi:     0xFF,
	}
}

// Attach creates a peripheral connected to e.
func (e *Ether) Attach(opts ...Option) *Peripheral {
	p := newPeripheral(e, opts...)
	e.mu.Lock()
	e.peers = append(e.peers, p)
	e.mu.Unlock()
	return p
}

// Jam makes CCA on ch report a busy channel, as if a carrier was always present.
func (e *Ether) Jam(ch ieee802154.Channel, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jammed[ch.FrequencyOffset()] = on
}

// SetNoise sets the background energy level measured on ch by energy detection.
func (e *Ether) SetNoise(ch ieee802154.Channel, level uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.noise[ch.FrequencyOffset()] = level
}

// CorruptNext damages the FCS of the next n frames put on air, so that receivers
// fail their CRC check.
func (e *Ether) CorruptNext(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.corrupt += n
}

// SetLQI sets the link quality reported to receivers.
func (e *Ether) SetLQI(v uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lqi = v
}

// Record sends every frame put on air to r. A nil r stops recording.
func (e *Ether) Record(r *Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// Listeners returns the number of peripherals currently waiting for a frame on ch.
func (e *Ether) Listeners(ch ieee802154.Channel) int {
	n := 0
	for _, p := range e.snapshot() {
		if p.listeningOn(ch.FrequencyOffset()) {
			n++
		}
	}
	return n
}

func (e *Ether) snapshot() []*Peripheral {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Peripheral(nil), e.peers...)
}

// keyUp marks a transmission as started on freq.
func (e *Ether) keyUp(freq uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.airtime[freq]++
}

// keyDown marks a transmission as ended on freq.
func (e *Ether) keyDown(freq uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keyDownLocked(freq)
}

func (e *Ether) keyDownLocked(freq uint8) {
	if e.airtime[freq] > 0 {
		e.airtime[freq]--
	}
}

func (e *Ether) carrierLocked(freq uint8) bool {
	return e.jammed[freq] || e.airtime[freq] > 0
}

func (e *Ether) energyLocked(freq uint8) uint8 {
	if e.jammed[freq] {
		return 0xFF
	}
	lvl := e.noise[freq]
	if e.airtime[freq] > 0 && lvl < carrierEnergy {
		lvl = carrierEnergy
	}
	return lvl
}

// energy returns the energy detection sample for freq.
func (e *Ether) energy(freq uint8) uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.energyLocked(freq)
}

// ccaBusy evaluates Clear Channel Assessment on freq.
func (e *Ether) ccaBusy(freq uint8, ctrl ieee802154.CCAControl) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	carrier := e.carrierLocked(freq)
	energy := e.energyLocked(freq) > ctrl.EDThreshold
	switch ctrl.Mode {
	case ieee802154.CCAModeCarrier:
		return carrier
	case ieee802154.CCAModeCarrierAndEnergy:
		return carrier && energy
	case ieee802154.CCAModeCarrierOrEnergy:
		return carrier || energy
	default:
		return energy
	}
}

// broadcast ends the transmission of f and delivers it to every other peripheral.
// The sender must not hold its own lock.
func (e *Ether) broadcast(from *Peripheral, f *frame) {
	e.mu.Lock()
	e.keyDownLocked(f.freq)
	if e.corrupt > 0 {
		e.corrupt--
		f.fcs ^= 0xFFFF
	}
	e.seq++
	seq := e.seq
	lqi := e.lqi
	rec := e.recorder
	peers := append([]*Peripheral(nil), e.peers...)
	e.mu.Unlock()

	if rec != nil {
		ch, _ := ieee802154.ChannelFromFrequencyOffset(f.freq)
		rec.record(Record{
			Seq:       seq,
			Node:      f.source,
			Channel:   uint8(ch),
			Payload:   f.payload,
			FCS:       f.fcs,
			Corrupted: f.fcs != FCS(f.payload),
		})
	}

	for _, p := range peers {
		if p != from {
			p.receive(f, lqi)
		}
	}
}
