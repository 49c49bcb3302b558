//go:build !(tinygo && cortexm)

package ieee802154

import "sync/atomic"

// dmaSeq is only touched for its ordering guarantees: atomic operations are
// sequentially consistent in the Go memory model.
var dmaSeq atomic.Uint32

func dmaStartFence() {
	dmaSeq.Add(1)
}

func dmaEndFence() {
	dmaSeq.Add(1)
}
