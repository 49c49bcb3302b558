package sim

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	radio "github.com/michcald/ieee802154"
)

// Default durations, in ticks.
const (
	DefaultRampTicks = 2
	DefaultCCATicks  = 2
	maxEDTicks       = 8
)

// Option configures a Peripheral.
type Option func(*Peripheral)

// WithName sets the name used in String and logs.
func WithName(name string) Option {
	return func(p *Peripheral) { p.name = name }
}

// WithID sets the node identity used in captures. A random one is used otherwise.
func WithID(id uuid.UUID) Option {
	return func(p *Peripheral) { p.id = id }
}

// WithRampTicks sets how long ramp-up and ramp-down take.
func WithRampTicks(n int) Option {
	return func(p *Peripheral) { p.rampTicks = max(n, 1) }
}

// Transition is a change of the STATE register.
type Transition struct {
	From, To radio.State
}

func (t Transition) String() string {
	return t.From.String() + "->" + t.To.String()
}

type opKind uint8

const (
	opNone opKind = iota
	opRamp
	opListen
	opTx
	opCCA
	opED
)

// Peripheral is a simulated RADIO peripheral. It implements radio.Registers and is
// safe for concurrent use, although a driver only ever uses it from one goroutine.
type Peripheral struct {
	ether     *Ether
	id        uuid.UUID
	name      string
	rampTicks int

	mu     sync.Mutex
	regs   [radio.NumRegisters]uint32
	events [radio.NumEvents]bool
	buf    *[radio.PacketBufferSize]byte

	op     opKind
	ticks  int
	target radio.State
	onAir  *frame

	transitions []Transition
	transmitted int
	received    int
}

func newPeripheral(e *Ether, opts ...Option) *Peripheral {
	p := &Peripheral{
		ether:     e,
		id:        uuid.New(),
		rampTicks: DefaultRampTicks,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.name == "" {
		p.name = p.id.String()[:8]
	}
	return p
}

// --- radio.Registers ---

func (p *Peripheral) Trigger(t radio.Task) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.task(t)
}

func (p *Peripheral) Event(e radio.Event) bool {
	p.mu.Lock()
	out := p.tick()
	v := p.events[e]
	listening := p.op == opListen
	p.mu.Unlock()
	p.after(out, listening)
	return v
}

func (p *Peripheral) ClearEvent(e radio.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[e] = false
}

func (p *Peripheral) Read(r radio.Register) uint32 {
	p.mu.Lock()
	out := p.tick()
	v := p.regs[r]
	listening := p.op == opListen
	p.mu.Unlock()
	p.after(out, listening)
	return v
}

func (p *Peripheral) Write(r radio.Register, v uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch r {
	case radio.RegState, radio.RegEDSample, radio.RegRxCRC, radio.RegCRCStatus:
		// read-only
	case radio.RegPower:
		if v&1 == 0 {
			p.reset()
		}
		p.regs[r] = v & 1
	default:
		p.regs[r] = v
	}
}

func (p *Peripheral) SetPacketPtr(buf *[radio.PacketBufferSize]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buf = buf
}

// after runs the work of a poll that must happen without the lock held.
func (p *Peripheral) after(out *frame, listening bool) {
	if out != nil {
		p.ether.broadcast(p, out)
	}
	if listening {
		// the CPU is waiting on another radio
		runtime.Gosched()
	}
}

// --- Inspection ---

// ID returns the node identity.
func (p *Peripheral) ID() uuid.UUID { return p.id }

// State returns the STATE register without advancing time.
func (p *Peripheral) State() radio.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state()
}

// Listening reports whether the peripheral is waiting for a frame.
func (p *Peripheral) Listening() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.op == opListen
}

// Register returns a register without advancing time.
func (p *Peripheral) Register(r radio.Register) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.regs[r]
}

// Transitions returns every STATE change since the peripheral was attached.
func (p *Peripheral) Transitions() []Transition {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Transition(nil), p.transitions...)
}

// Transmitted returns the number of frames this peripheral put on air.
func (p *Peripheral) Transmitted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transmitted
}

// Received returns the number of frames this peripheral received.
func (p *Peripheral) Received() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received
}

func (p *Peripheral) String() string {
	return fmt.Sprintf("sim.Peripheral(%s, %s)", p.name, p.State())
}

// --- Model (p.mu held) ---

func (p *Peripheral) state() radio.State {
	return radio.State(p.regs[radio.RegState])
}

func (p *Peripheral) setState(s radio.State) {
	if cur := p.state(); cur != s {
		p.transitions = append(p.transitions, Transition{From: cur, To: s})
	}
	p.regs[radio.RegState] = uint32(s)
}

func (p *Peripheral) freq() uint8 {
	return radio.ParseFrequency(p.regs[radio.RegFrequency]).Offset
}

func (p *Peripheral) shorts() radio.Shorts {
	return radio.ParseShorts(p.regs[radio.RegShorts])
}

func (p *Peripheral) listeningOn(freq uint8) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.op == opListen && p.freq() == freq
}

func (p *Peripheral) reset() {
	p.abortTx()
	p.setState(radio.StateDisabled)
	p.regs = [radio.NumRegisters]uint32{}
	p.events = [radio.NumEvents]bool{}
	p.buf = nil
	p.op, p.ticks = opNone, 0
}

func (p *Peripheral) ramp(through, to radio.State) {
	p.setState(through)
	p.op, p.ticks, p.target = opRamp, p.rampTicks, to
}

func (p *Peripheral) idle(s radio.State) {
	p.setState(s)
	p.op, p.ticks = opNone, 0
}

func (p *Peripheral) abortTx() {
	if p.onAir != nil {
		p.ether.keyDown(p.onAir.freq)
		p.onAir = nil
	}
}

func (p *Peripheral) task(t radio.Task) {
	s := p.state()
	switch t {
	case radio.TaskTxEn:
		switch s {
		case radio.StateDisabled, radio.StateRxIdle, radio.StateTxIdle:
			p.ramp(radio.StateTxRu, radio.StateTxIdle)
		}
	case radio.TaskRxEn:
		switch s {
		case radio.StateDisabled, radio.StateRxIdle, radio.StateTxIdle:
			p.ramp(radio.StateRxRu, radio.StateRxIdle)
		}
	case radio.TaskDisable:
		switch s {
		case radio.StateRxRu, radio.StateRxIdle, radio.StateRx:
			p.ramp(radio.StateRxDisable, radio.StateDisabled)
		case radio.StateTxRu, radio.StateTxIdle, radio.StateTx:
			p.abortTx()
			p.ramp(radio.StateTxDisable, radio.StateDisabled)
		}
	case radio.TaskStart:
		switch s {
		case radio.StateRxIdle:
			p.setState(radio.StateRx)
			p.op, p.ticks = opListen, 0
		case radio.StateTxIdle:
			p.startTx()
		}
	case radio.TaskStop:
		switch s {
		case radio.StateRx:
			p.idle(radio.StateRxIdle)
		case radio.StateTx:
			p.abortTx()
			p.idle(radio.StateTxIdle)
		}
	case radio.TaskCCAStart:
		if s == radio.StateRxIdle {
			p.setState(radio.StateRx)
			p.op, p.ticks = opCCA, DefaultCCATicks
		}
	case radio.TaskCCAStop:
		if p.op == opCCA {
			p.events[radio.EventCCAStopped] = true
			p.idle(radio.StateRxIdle)
		}
	case radio.TaskEDStart:
		if s == radio.StateRxIdle {
			p.setState(radio.StateRx)
			p.op, p.ticks = opED, 1+min(int(p.regs[radio.RegEDCnt]), maxEDTicks)
		}
	case radio.TaskEDStop:
		if p.op == opED {
			p.events[radio.EventEDStopped] = true
			p.idle(radio.StateRxIdle)
		}
	}
}

func (p *Peripheral) startTx() {
	if p.buf == nil {
		panic("sim: START in TxIdle without a packet pointer")
	}
	n := int(p.buf[0]&0x7F) - radio.CRCSize
	n = max(n, 0)
	f := &frame{
		source:  p.id,
		freq:    p.freq(),
		sfd:     uint8(p.regs[radio.RegSFD]),
		payload: append([]byte(nil), p.buf[1:1+n]...),
	}
	f.fcs = FCS(f.payload)

	p.setState(radio.StateTx)
	p.op, p.ticks = opTx, 2+n/32
	p.onAir = f
	p.ether.keyUp(f.freq)
}

// tick advances time by one poll. It returns a frame whose transmission just ended;
// the caller broadcasts it once the lock is released.
func (p *Peripheral) tick() *frame {
	if p.ticks == 0 {
		return nil
	}
	p.ticks--
	if p.ticks > 0 {
		return nil
	}

	sh := p.shorts()
	switch p.op {
	case opRamp:
		p.idle(p.target)
		switch p.target {
		case radio.StateTxIdle:
			p.events[radio.EventReady] = true
			p.events[radio.EventTxReady] = true
			if sh.ReadyStart || sh.TxReadyStart {
				p.task(radio.TaskStart)
			}
		case radio.StateRxIdle:
			p.events[radio.EventReady] = true
			p.events[radio.EventRxReady] = true
			switch {
			case sh.ReadyStart || sh.RxReadyStart:
				p.task(radio.TaskStart)
			case sh.RxReadyCCAStart:
				p.task(radio.TaskCCAStart)
			case sh.ReadyEDStart:
				p.task(radio.TaskEDStart)
			}
		case radio.StateDisabled:
			p.events[radio.EventDisabled] = true
			switch {
			case sh.DisabledTxEn:
				p.task(radio.TaskTxEn)
			case sh.DisabledRxEn:
				p.task(radio.TaskRxEn)
			}
		}

	case opTx:
		out := p.onAir
		p.onAir = nil
		p.transmitted++
		p.events[radio.EventPhyEnd] = true
		p.events[radio.EventEnd] = true
		p.idle(radio.StateTxIdle)
		p.afterEnd(sh)
		return out

	case opCCA:
		busy := p.ether.ccaBusy(p.freq(), radio.ParseCCAControl(p.regs[radio.RegCCACtrl]))
		p.idle(radio.StateRxIdle)
		if busy {
			p.events[radio.EventCCABusy] = true
			if sh.CCABusyDisable {
				p.task(radio.TaskDisable)
			}
			break
		}
		p.events[radio.EventCCAIdle] = true
		switch {
		case sh.CCAIdleTxEn:
			p.task(radio.TaskTxEn)
		case sh.CCAIdleStop:
			p.task(radio.TaskStop)
		}

	case opED:
		p.regs[radio.RegEDSample] = uint32(p.ether.energy(p.freq()))
		p.events[radio.EventEDEnd] = true
		p.idle(radio.StateRxIdle)
		if sh.EDEndDisable {
			p.task(radio.TaskDisable)
		}
	}
	return nil
}

func (p *Peripheral) afterEnd(sh radio.Shorts) {
	switch {
	case sh.EndDisable || sh.PhyEndDisable:
		p.task(radio.TaskDisable)
	case sh.EndStart || sh.PhyEndStart:
		p.task(radio.TaskStart)
	}
}

// receive delivers a frame from the air. It is dropped unless the peripheral is
// listening on the same channel with the same SFD.
func (p *Peripheral) receive(f *frame, lqi uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.op != opListen || p.freq() != f.freq || uint8(p.regs[radio.RegSFD]) != f.sfd || p.buf == nil {
		return
	}

	n := len(f.payload)
	p.buf[0] = byte(n + radio.CRCSize)
	copy(p.buf[1:], f.payload)
	if n >= 3 {
		p.buf[1+n] = lqi
	}

	p.regs[radio.RegRxCRC] = uint32(f.fcs)
	if FCS(f.payload) == f.fcs {
		p.regs[radio.RegCRCStatus] = 1
	} else {
		p.regs[radio.RegCRCStatus] = 0
	}

	p.received++
	p.events[radio.EventFrameStart] = true
	p.events[radio.EventPhyEnd] = true
	p.events[radio.EventEnd] = true
	p.idle(radio.StateRxIdle)
	p.afterEnd(p.shorts())
}
