package sim

// StepTimer is a deterministic ieee802154.Timer. Time advances by MicrosPerPoll
// on every ResetIfFinished call, so a timeout always spans the same number of
// polls regardless of host speed.
type StepTimer struct {
	// MicrosPerPoll is the simulated time between two polls. Zero means 1.
	MicrosPerPoll uint32

	remaining uint32
	running   bool
	started   []uint32
	polls     int
}

func (t *StepTimer) Start(micros uint32) {
	step := uint64(t.MicrosPerPoll)
	if step == 0 {
		step = 1
	}
	t.remaining = uint32((uint64(micros) + step - 1) / step)
	t.running = true
	t.started = append(t.started, micros)
}

func (t *StepTimer) ResetIfFinished() bool {
	if !t.running {
		return false
	}
	t.polls++
	if t.remaining > 0 {
		t.remaining--
		return false
	}
	t.running = false
	return true
}

// Started returns the durations the timer was started with, in order.
func (t *StepTimer) Started() []uint32 {
	return append([]uint32(nil), t.started...)
}

// Polls returns the number of ResetIfFinished calls made while the timer was running.
func (t *StepTimer) Polls() int {
	return t.polls
}
