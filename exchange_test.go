package ieee802154_test

import (
	"bytes"
	"runtime"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	radio "github.com/michcald/ieee802154"
	"github.com/michcald/ieee802154/sim"
)

// yieldingTimer lets the goroutine of the other node run while this one waits.
type yieldingTimer struct {
	sim.StepTimer
}

func (t *yieldingTimer) ResetIfFinished() bool {
	runtime.Gosched()
	return t.StepTimer.ResetIfFinished()
}

// replier answers the first n requests it receives, waiting for the client to
// listen before each reply.
func replier(t *testing.T, r *radio.Radio, client *sim.Peripheral, replies ...func(req []byte) []byte) <-chan [][]byte {
	out := make(chan [][]byte, 1)
	go func() {
		var requests [][]byte
		defer func() { out <- requests }()
		p := radio.NewPacket()
		for _, reply := range replies {
			timer := &radio.DeadlineTimer{}
			if _, err := r.RecvTimeout(p, timer, 5_000_000); err != nil {
				t.Errorf("replier: %v", err)
				return
			}
			req := slices.Clone(p.Payload())
			requests = append(requests, req)
			for !client.Listening() {
				runtime.Gosched()
			}
			p.CopyFrom(reply(req))
			r.SendNoCCA(p)
		}
	}()
	return out
}

func TestExchange(t *testing.T) {
	e := sim.NewEther()
	client, clientp := newRadio(t, e, radio.Config{})
	server, _ := newRadio(t, e, radio.Config{})
	addr := radio.Address{0xC0, 0xFF, 0xEE, 0x00, 0x00, 0x01}

	wrongAddr := func(req []byte) []byte {
		return append([]byte{1, 2, 3, 4, 5, 6}, "bogus"...)
	}
	echo := func(req []byte) []byte {
		return append(slices.Clone(req[:radio.AddressLen]), bytes.ToUpper(req[radio.AddressLen:])...)
	}
	requests := replier(t, server, clientp, wrongAddr, echo)
	waitListening(t, e, radio.Channel11, 1)

	ex := &radio.Exchange{
		Radio:   client,
		Timer:   &yieldingTimer{},
		Address: addr,
		Retries: 3,
		Timeout: 1_000_000,
	}
	reply, err := ex.Do(radio.NewPacket(), []byte("ping"))

	require.NoError(t, err)
	assert.Equal(t, []byte("PING"), reply)

	got := <-requests
	require.Len(t, got, 2, "the reply with the wrong address must trigger a retry")
	for _, req := range got {
		assert.Equal(t, append(addr[:], "ping"...), req)
	}
}

func TestExchangeTimeout(t *testing.T) {
	e := sim.NewEther()
	r, p := newRadio(t, e, radio.Config{})
	timer := &sim.StepTimer{MicrosPerPoll: 1000}

	ex := &radio.Exchange{Radio: r, Timer: timer, Retries: 2, Timeout: 20_000}
	_, err := ex.Do(radio.NewPacket(), []byte{0x42})

	require.ErrorIs(t, err, radio.ErrTimeout)
	assert.ErrorIs(t, err, radio.ErrPkg)
	assert.Equal(t, 2, p.Transmitted())
	// pre-delay, then one receive and one back-off per attempt
	assert.Equal(t, []uint32{5_000, 20_000, 10_000, 20_000, 10_000}, timer.Started())
}

func TestExchangeRejectsOversizedData(t *testing.T) {
	e := sim.NewEther()
	r, _ := newRadio(t, e, radio.Config{})
	ex := &radio.Exchange{Radio: r, Timer: &sim.StepTimer{}}

	assert.Panics(t, func() {
		_, _ = ex.Do(radio.NewPacket(), make([]byte, radio.Capacity-radio.AddressLen))
	})
}

func TestAddressString(t *testing.T) {
	assert.Equal(t, "C0:FF:EE:00:00:01", radio.Address{0xC0, 0xFF, 0xEE, 0, 0, 1}.String())
}
