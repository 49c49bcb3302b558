//go:build tinygo && cortexm

package ieee802154

import "device/arm"

func dmaStartFence() {
	arm.Asm("dmb")
}

func dmaEndFence() {
	arm.Asm("dmb")
}
