package ieee802154_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	radio "github.com/michcald/ieee802154"
)

func TestDeadlineTimer(t *testing.T) {
	var timer radio.DeadlineTimer
	assert.False(t, timer.ResetIfFinished(), "zero value must be stopped")

	timer.Start(1000)
	assert.Eventually(t, timer.ResetIfFinished, time.Second, 100*time.Microsecond)
	assert.False(t, timer.ResetIfFinished(), "expiry must be reported once")

	timer.Start(0)
	assert.True(t, timer.ResetIfFinished())
}

func TestDelay(t *testing.T) {
	start := time.Now()
	radio.Delay(&radio.DeadlineTimer{}, 2000)
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Millisecond)
}
