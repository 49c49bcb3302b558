package sim

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	radio "github.com/michcald/ieee802154"
)

func TestFCS(t *testing.T) {
	assert.Equal(t, uint16(0x2189), FCS([]byte("123456789")))
	assert.Equal(t, uint16(0), FCS(nil))
}

func TestStepTimer(t *testing.T) {
	var timer StepTimer
	assert.False(t, timer.ResetIfFinished(), "zero value must be stopped")
	assert.Zero(t, timer.Polls())

	timer.Start(3)
	for i := range 3 {
		assert.False(t, timer.ResetIfFinished(), "poll %d", i)
	}
	assert.True(t, timer.ResetIfFinished())
	assert.False(t, timer.ResetIfFinished(), "expiry must be reported once")
	assert.Equal(t, 4, timer.Polls())

	coarse := StepTimer{MicrosPerPoll: 100}
	coarse.Start(250)
	n := 1
	for !coarse.ResetIfFinished() {
		n++
	}
	assert.Equal(t, 4, n, "250us in steps of 100us")
	assert.Equal(t, []uint32{250}, coarse.Started())
}

func TestStepTimerLongDuration(t *testing.T) {
	timer := StepTimer{MicrosPerPoll: 10}
	timer.Start(math.MaxUint32)

	assert.Equal(t, uint32(429_496_730), timer.remaining)
	for i := range 1000 {
		require.False(t, timer.ResetIfFinished(), "poll %d", i)
	}
}

// drive polls p until it reaches s.
func drive(t *testing.T, p *Peripheral, s radio.State) {
	t.Helper()
	for range 100 {
		if radio.State(p.Read(radio.RegState)) == s {
			return
		}
	}
	t.Fatalf("%s never reached %s", p, s)
}

func TestPeripheralRampUp(t *testing.T) {
	p := NewEther().Attach(WithName("dut"), WithRampTicks(3))

	p.Trigger(radio.TaskRxEn)
	assert.Equal(t, radio.StateRxRu, p.State())
	assert.Equal(t, uint32(radio.StateRxRu), p.Read(radio.RegState))
	assert.Equal(t, uint32(radio.StateRxRu), p.Read(radio.RegState))
	assert.Equal(t, uint32(radio.StateRxIdle), p.Read(radio.RegState), "third poll completes the ramp-up")
	assert.True(t, p.Event(radio.EventReady))
	assert.True(t, p.Event(radio.EventRxReady))
	assert.False(t, p.Event(radio.EventTxReady))

	p.ClearEvent(radio.EventReady)
	assert.False(t, p.Event(radio.EventReady))
	assert.Equal(t, "sim.Peripheral(dut, RxIdle)", p.String())
}

func TestPeripheralIgnoresReadOnlyRegisters(t *testing.T) {
	p := NewEther().Attach()
	p.Write(radio.RegState, uint32(radio.StateTx))
	p.Write(radio.RegCRCStatus, 1)

	assert.Equal(t, radio.StateDisabled, p.State())
	assert.Zero(t, p.Register(radio.RegCRCStatus))
}

func TestPeripheralShorts(t *testing.T) {
	e := NewEther()
	p := e.Attach()
	var buf [radio.PacketBufferSize]byte
	buf[0] = 5
	p.SetPacketPtr(&buf)
	p.Write(radio.RegFrequency, uint32(radio.Channel11.FrequencyOffset()))
	p.Write(radio.RegShorts, radio.Shorts{
		RxReadyCCAStart: true,
		CCAIdleTxEn:     true,
		TxReadyStart:    true,
		EndDisable:      true,
	}.Bits())

	p.Trigger(radio.TaskRxEn)
	drive(t, p, radio.StateDisabled)

	assert.Equal(t, 1, p.Transmitted())
	assert.True(t, p.Event(radio.EventCCAIdle))
	assert.True(t, p.Event(radio.EventPhyEnd))
	assert.Equal(t, []Transition{
		{radio.StateDisabled, radio.StateRxRu},
		{radio.StateRxRu, radio.StateRxIdle},
		{radio.StateRxIdle, radio.StateRx},
		{radio.StateRx, radio.StateRxIdle},
		{radio.StateRxIdle, radio.StateTxRu},
		{radio.StateTxRu, radio.StateTxIdle},
		{radio.StateTxIdle, radio.StateTx},
		{radio.StateTx, radio.StateTxIdle},
		{radio.StateTxIdle, radio.StateTxDisable},
		{radio.StateTxDisable, radio.StateDisabled},
	}, p.Transitions())
}

func TestPeripheralStartWithoutPacketPointerPanics(t *testing.T) {
	p := NewEther().Attach()
	p.Trigger(radio.TaskTxEn)
	drive(t, p, radio.StateTxIdle)

	assert.Panics(t, func() { p.Trigger(radio.TaskStart) })
}

func TestPeripheralPowerCycleResets(t *testing.T) {
	e := NewEther()
	p := e.Attach()
	var buf [radio.PacketBufferSize]byte
	buf[0] = 10
	p.Write(radio.RegPower, 1)
	p.Write(radio.RegFrequency, 5)
	p.SetPacketPtr(&buf)
	p.Trigger(radio.TaskTxEn)
	drive(t, p, radio.StateTxIdle)
	p.Trigger(radio.TaskStart)
	require.True(t, e.ccaBusy(5, radio.CCAControl{Mode: radio.CCAModeCarrier}), "carrier on air")

	p.Write(radio.RegPower, 0)

	assert.Equal(t, radio.StateDisabled, p.State())
	assert.Zero(t, p.Register(radio.RegFrequency))
	assert.False(t, e.ccaBusy(5, radio.CCAControl{Mode: radio.CCAModeCarrier}), "transmission must be aborted")
}

func TestEtherCCAModes(t *testing.T) {
	e := NewEther()
	const freq = 25
	e.SetNoise(radio.Channel15, 0x80)

	carrier := radio.CCAControl{Mode: radio.CCAModeCarrier}
	energy := radio.CCAControl{Mode: radio.CCAModeEnergy, EDThreshold: 0x40}
	and := radio.CCAControl{Mode: radio.CCAModeCarrierAndEnergy, EDThreshold: 0x40}
	or := radio.CCAControl{Mode: radio.CCAModeCarrierOrEnergy, EDThreshold: 0x40}

	assert.False(t, e.ccaBusy(freq, carrier))
	assert.True(t, e.ccaBusy(freq, energy))
	assert.False(t, e.ccaBusy(freq, and))
	assert.True(t, e.ccaBusy(freq, or))

	e.keyUp(freq)
	assert.True(t, e.ccaBusy(freq, carrier))
	assert.True(t, e.ccaBusy(freq, and))
	assert.Equal(t, uint8(carrierEnergy), e.energy(freq))

	e.keyDown(freq)
	e.keyDown(freq)
	assert.False(t, e.ccaBusy(freq, carrier), "key down must not underflow")
}

func TestCaptureRoundTrip(t *testing.T) {
	e := NewEther()
	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	p := e.Attach(WithID(id))
	e.Attach()

	var out bytes.Buffer
	rec := NewRecorder(&out)
	e.Record(rec)
	e.CorruptNext(1)

	p.Write(radio.RegFrequency, uint32(radio.Channel18.FrequencyOffset()))
	var buf [radio.PacketBufferSize]byte
	for i, payload := range [][]byte{[]byte("first"), []byte("second")} {
		buf[0] = byte(len(payload) + radio.CRCSize)
		copy(buf[1:], payload)
		p.SetPacketPtr(&buf)
		p.Trigger(radio.TaskTxEn)
		drive(t, p, radio.StateTxIdle)
		p.Trigger(radio.TaskStart)
		drive(t, p, radio.StateTxIdle)
		require.Equal(t, i+1, p.Transmitted())
	}
	e.Record(nil)

	require.NoError(t, rec.Err())
	assert.Equal(t, 2, rec.Count())

	records, err := ReadCapture(&out)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, uint64(1), records[0].Seq)
	assert.Equal(t, id, records[0].Node)
	assert.Equal(t, uint8(18), records[0].Channel)
	assert.Equal(t, []byte("first"), records[0].Payload)
	assert.True(t, records[0].Corrupted)
	assert.Equal(t, FCS([]byte("first"))^0xFFFF, records[0].FCS)

	assert.Equal(t, uint64(2), records[1].Seq)
	assert.Equal(t, []byte("second"), records[1].Payload)
	assert.False(t, records[1].Corrupted)
	assert.Contains(t, records[1].String(), "ch18 7d444840 fcs=")
}

func TestReadCaptureTruncated(t *testing.T) {
	var out bytes.Buffer
	rec := NewRecorder(&out)
	rec.record(Record{Seq: 1, Payload: []byte("x")})
	data := out.Bytes()

	_, err := ReadCapture(bytes.NewReader(data[:len(data)-1]))
	assert.Error(t, err)
}
