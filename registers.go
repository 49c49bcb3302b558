package ieee802154

import "fmt"

// --- RADIO Tasks/Events/Registers ---

// Task identifies a RADIO task register. Writing 1 to a task register starts it.
type Task uint8

const (
	TaskTxEn Task = iota
	TaskRxEn
	TaskStart
	TaskStop
	TaskDisable
	TaskEDStart
	TaskEDStop
	TaskCCAStart
	TaskCCAStop
	NumTasks
)

var taskNames = [NumTasks]string{"TXEN", "RXEN", "START", "STOP", "DISABLE", "EDSTART", "EDSTOP", "CCASTART", "CCASTOP"}

func (t Task) String() string {
	if t < NumTasks {
		return taskNames[t]
	}
	return "unknown"
}

// Event identifies a RADIO event register.
type Event uint8

const (
	EventReady Event = iota
	EventEnd
	EventDisabled
	EventPhyEnd
	EventCCAIdle
	EventCCABusy
	EventCCAStopped
	EventEDEnd
	EventEDStopped
	EventTxReady
	EventRxReady
	EventFrameStart
	NumEvents
)

var eventNames = [NumEvents]string{
	"READY", "END", "DISABLED", "PHYEND", "CCAIDLE", "CCABUSY", "CCASTOPPED",
	"EDEND", "EDSTOPPED", "TXREADY", "RXREADY", "FRAMESTART",
}

func (e Event) String() string {
	if e < NumEvents {
		return eventNames[e]
	}
	return "unknown"
}

// Register identifies a RADIO configuration or status register.
// PACKETPTR is not listed: it is only ever written through Registers.SetPacketPtr.
type Register uint8

const (
	RegPower Register = iota
	RegMode
	RegFrequency
	RegTxPower
	RegPCNF0
	RegPCNF1
	RegCRCCNF
	RegCRCPoly
	RegCRCInit
	RegSFD
	RegCCACtrl
	RegEDCnt
	RegEDSample
	RegRxCRC
	RegCRCStatus
	RegShorts
	RegState
	NumRegisters
)

var registerNames = [NumRegisters]string{
	"POWER", "MODE", "FREQUENCY", "TXPOWER", "PCNF0", "PCNF1", "CRCCNF", "CRCPOLY", "CRCINIT",
	"SFD", "CCACTRL", "EDCNT", "EDSAMPLE", "RXCRC", "CRCSTATUS", "SHORTS", "STATE",
}

func (r Register) String() string {
	if r < NumRegisters {
		return registerNames[r]
	}
	return "unknown"
}

// --- Register fields ---

// ModeIEEE802154 selects IEEE 802.15.4-2006 250 kbit/s in the MODE register.
const ModeIEEE802154 = 15

// Masks for registers holding a single field.
const (
	edCntMask     = 0x000F_FFFF
	edSampleMask  = 0xFF
	rxCRCMask     = 0x00FF_FFFF
	crcStatusMask = 0x1
	stateMask     = 0xF
	sfdMask       = 0xFF
)

// State is the value of the STATE register.
type State uint8

const (
	StateDisabled  State = 0
	StateRxRu      State = 1
	StateRxIdle    State = 2
	StateRx        State = 3
	StateRxDisable State = 4
	StateTxRu      State = 9
	StateTxIdle    State = 10
	StateTx        State = 11
	StateTxDisable State = 12
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "Disabled"
	case StateRxRu:
		return "RxRu"
	case StateRxIdle:
		return "RxIdle"
	case StateRx:
		return "Rx"
	case StateRxDisable:
		return "RxDisable"
	case StateTxRu:
		return "TxRu"
	case StateTxIdle:
		return "TxIdle"
	case StateTx:
		return "Tx"
	case StateTxDisable:
		return "TxDisable"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Frequency is the FREQUENCY register: the radio runs at 2400 MHz + Offset MHz
// (or 2360 MHz + Offset MHz when Low is set).
type Frequency struct {
	Offset uint8
	Low    bool
}

func (f Frequency) Bits() uint32 {
	v := uint32(f.Offset & 0x7F)
	if f.Low {
		v |= 1 << 8
	}
	return v
}

func ParseFrequency(v uint32) Frequency {
	return Frequency{Offset: uint8(v & 0x7F), Low: v&(1<<8) != 0}
}

// Preamble is the PLEN field of PCNF0.
type Preamble uint8

const (
	Preamble8Bit      Preamble = 0
	Preamble16Bit     Preamble = 1
	Preamble32BitZero Preamble = 2
	PreambleLongRange Preamble = 3
)

// PacketConfig0 is the PCNF0 register.
type PacketConfig0 struct {
	LengthBits  uint8 // LFLEN
	S0Byte      bool  // S0LEN
	S1Bits      uint8 // S1LEN
	S1Include   bool  // S1INCL
	CILen       uint8
	Preamble    Preamble
	CRCInLength bool // CRCINC
}

func (c PacketConfig0) Bits() uint32 {
	v := uint32(c.LengthBits & 0xF)
	if c.S0Byte {
		v |= 1 << 8
	}
	v |= uint32(c.S1Bits&0xF) << 16
	if c.S1Include {
		v |= 1 << 20
	}
	v |= uint32(c.CILen&0x3) << 22
	v |= uint32(c.Preamble&0x3) << 24
	if c.CRCInLength {
		v |= 1 << 26
	}
	return v
}

func ParsePacketConfig0(v uint32) PacketConfig0 {
	return PacketConfig0{
		LengthBits:  uint8(v & 0xF),
		S0Byte:      v&(1<<8) != 0,
		S1Bits:      uint8(v>>16) & 0xF,
		S1Include:   v&(1<<20) != 0,
		CILen:       uint8(v>>22) & 0x3,
		Preamble:    Preamble(v>>24) & 0x3,
		CRCInLength: v&(1<<26) != 0,
	}
}

// PacketConfig1 is the PCNF1 register.
type PacketConfig1 struct {
	MaxLen    uint8
	StatLen   uint8
	BaseLen   uint8 // BALEN
	BigEndian bool
	Whitening bool
}

func (c PacketConfig1) Bits() uint32 {
	v := uint32(c.MaxLen) | uint32(c.StatLen)<<8 | uint32(c.BaseLen&0x7)<<16
	if c.BigEndian {
		v |= 1 << 24
	}
	if c.Whitening {
		v |= 1 << 25
	}
	return v
}

func ParsePacketConfig1(v uint32) PacketConfig1 {
	return PacketConfig1{
		MaxLen:    uint8(v),
		StatLen:   uint8(v >> 8),
		BaseLen:   uint8(v>>16) & 0x7,
		BigEndian: v&(1<<24) != 0,
		Whitening: v&(1<<25) != 0,
	}
}

// CRCSkip is the SKIPADDR field of CRCCNF.
type CRCSkip uint8

const (
	CRCSkipInclude    CRCSkip = 0
	CRCSkipAddress    CRCSkip = 1
	CRCSkipIEEE802154 CRCSkip = 2
)

// CRCConfig is the CRCCNF register.
type CRCConfig struct {
	Len  uint8
	Skip CRCSkip
}

func (c CRCConfig) Bits() uint32 {
	return uint32(c.Len&0x3) | uint32(c.Skip&0x3)<<8
}

func ParseCRCConfig(v uint32) CRCConfig {
	return CRCConfig{Len: uint8(v & 0x3), Skip: CRCSkip(v>>8) & 0x3}
}

// CCAMode is the CCAMODE field of CCACTRL.
type CCAMode uint8

const (
	CCAModeEnergy           CCAMode = 0
	CCAModeCarrier          CCAMode = 1
	CCAModeCarrierAndEnergy CCAMode = 2
	CCAModeCarrierOrEnergy  CCAMode = 3
	CCAModeEnergyTest1      CCAMode = 4
)

// CCAControl is the CCACTRL register.
type CCAControl struct {
	Mode          CCAMode
	EDThreshold   uint8
	CorrThreshold uint8
	CorrCount     uint8
}

func (c CCAControl) Bits() uint32 {
	return uint32(c.Mode&0x7) | uint32(c.EDThreshold)<<8 | uint32(c.CorrThreshold)<<16 | uint32(c.CorrCount)<<24
}

func ParseCCAControl(v uint32) CCAControl {
	return CCAControl{
		Mode:          CCAMode(v & 0x7),
		EDThreshold:   uint8(v >> 8),
		CorrThreshold: uint8(v >> 16),
		CorrCount:     uint8(v >> 24),
	}
}

// Shorts is the SHORTS register. Each field links an event to a task inside
// the peripheral, without CPU involvement.
type Shorts struct {
	ReadyStart      bool
	EndDisable      bool
	DisabledTxEn    bool
	DisabledRxEn    bool
	EndStart        bool
	RxReadyCCAStart bool
	CCAIdleTxEn     bool
	CCABusyDisable  bool
	ReadyEDStart    bool
	EDEndDisable    bool
	CCAIdleStop     bool
	TxReadyStart    bool
	RxReadyStart    bool
	PhyEndDisable   bool
	PhyEndStart     bool
}

var shortBits = [...]struct {
	pos   uint
	field func(*Shorts) *bool
}{
	{0, func(s *Shorts) *bool { return &s.ReadyStart }},
	{1, func(s *Shorts) *bool { return &s.EndDisable }},
	{2, func(s *Shorts) *bool { return &s.DisabledTxEn }},
	{3, func(s *Shorts) *bool { return &s.DisabledRxEn }},
	{5, func(s *Shorts) *bool { return &s.EndStart }},
	{11, func(s *Shorts) *bool { return &s.RxReadyCCAStart }},
	{12, func(s *Shorts) *bool { return &s.CCAIdleTxEn }},
	{13, func(s *Shorts) *bool { return &s.CCABusyDisable }},
	{15, func(s *Shorts) *bool { return &s.ReadyEDStart }},
	{16, func(s *Shorts) *bool { return &s.EDEndDisable }},
	{17, func(s *Shorts) *bool { return &s.CCAIdleStop }},
	{18, func(s *Shorts) *bool { return &s.TxReadyStart }},
	{19, func(s *Shorts) *bool { return &s.RxReadyStart }},
	{20, func(s *Shorts) *bool { return &s.PhyEndDisable }},
	{21, func(s *Shorts) *bool { return &s.PhyEndStart }},
}

func (s Shorts) Bits() uint32 {
	var v uint32
	for _, b := range shortBits {
		if *b.field(&s) {
			v |= 1 << b.pos
		}
	}
	return v
}

func ParseShorts(v uint32) Shorts {
	var s Shorts
	for _, b := range shortBits {
		*b.field(&s) = v&(1<<b.pos) != 0
	}
	return s
}

// --- Typed access ---

// peripheral wraps a Registers with field-level accessors.
type peripheral struct {
	Registers
}

func (p peripheral) state() State {
	return State(p.Read(RegState) & stateMask)
}

func (p peripheral) setShorts(s Shorts) {
	p.Write(RegShorts, s.Bits())
}

func (p peripheral) modifyShorts(f func(s *Shorts)) {
	s := ParseShorts(p.Read(RegShorts))
	f(&s)
	p.setShorts(s)
}

func (p peripheral) crcOK() bool {
	return p.Read(RegCRCStatus)&crcStatusMask != 0
}

func (p peripheral) rxCRC() uint16 {
	return uint16(p.Read(RegRxCRC) & rxCRCMask)
}

func (p peripheral) edSample() uint8 {
	return uint8(p.Read(RegEDSample) & edSampleMask)
}

// waitForState busy-waits until the STATE register reads s.
func (p peripheral) waitForState(s State) {
	for p.state() != s {
	}
}

// waitForEvent busy-waits for e and clears it.
func (p peripheral) waitForEvent(e Event) {
	for !p.Event(e) {
	}
	p.ClearEvent(e)
}
