package ieee802154

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Channel is an IEEE 802.15.4 channel in the 2.4 GHz band (11 to 26).
// These are NOT the same as WiFi 2.4 GHz channels.
type Channel uint8

const (
	Channel11 Channel = 11 + iota // 2405 MHz
	Channel12                     // 2410 MHz
	Channel13                     // 2415 MHz
	Channel14                     // 2420 MHz
	Channel15                     // 2425 MHz
	Channel16                     // 2430 MHz
	Channel17                     // 2435 MHz
	Channel18                     // 2440 MHz
	Channel19                     // 2445 MHz
	Channel20                     // 2450 MHz
	Channel21                     // 2455 MHz
	Channel22                     // 2460 MHz
	Channel23                     // 2465 MHz
	Channel24                     // 2470 MHz
	Channel25                     // 2475 MHz
	Channel26                     // 2480 MHz
)

const (
	MinChannel = Channel11
	MaxChannel = Channel26
)

// Valid reports whether c is one of the 16 channels of the 2.4 GHz band.
func (c Channel) Valid() bool {
	return c >= MinChannel && c <= MaxChannel
}

// FrequencyOffset returns the value of the FREQUENCY register for c, in MHz above 2400 MHz.
func (c Channel) FrequencyOffset() uint8 {
	return (uint8(c) - 10) * 5
}

// Frequency returns the center frequency of c.
func (c Channel) Frequency() physic.Frequency {
	return 2400*physic.MegaHertz + physic.Frequency(c.FrequencyOffset())*physic.MegaHertz
}

func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
	return fmt.Sprintf("ch%d (%s)", uint8(c), c.Frequency())
}

// ChannelFromFrequencyOffset maps a FREQUENCY register offset back to its channel.
// It returns false when the offset does not belong to any 802.15.4 channel.
func ChannelFromFrequencyOffset(offset uint8) (Channel, bool) {
	if offset%5 != 0 {
		return 0, false
	}
	c := Channel(offset/5 + 10)
	return c, c.Valid()
}

// TxPower is a transmission power level in dBm. Only the levels listed below are
// supported by the hardware.
type TxPower int8

const (
	TxPowerPos8dBm  TxPower = 8
	TxPowerPos7dBm  TxPower = 7
	TxPowerPos6dBm  TxPower = 6
	TxPowerPos5dBm  TxPower = 5
	TxPowerPos4dBm  TxPower = 4
	TxPowerPos3dBm  TxPower = 3
	TxPowerPos2dBm  TxPower = 2
	TxPower0dBm     TxPower = 0
	TxPowerNeg4dBm  TxPower = -4
	TxPowerNeg8dBm  TxPower = -8
	TxPowerNeg12dBm TxPower = -12
	TxPowerNeg16dBm TxPower = -16
	TxPowerNeg20dBm TxPower = -20
	TxPowerNeg30dBm TxPower = -30
	TxPowerNeg40dBm TxPower = -40
)

// Valid reports whether p is a level the hardware supports.
func (p TxPower) Valid() bool {
	switch p {
	case TxPowerPos8dBm, TxPowerPos7dBm, TxPowerPos6dBm, TxPowerPos5dBm, TxPowerPos4dBm,
		TxPowerPos3dBm, TxPowerPos2dBm, TxPower0dBm, TxPowerNeg4dBm, TxPowerNeg8dBm,
		TxPowerNeg12dBm, TxPowerNeg16dBm, TxPowerNeg20dBm, TxPowerNeg30dBm, TxPowerNeg40dBm:
		return true
	}
	return false
}

// bits returns the TXPOWER register encoding (two's complement dBm).
func (p TxPower) bits() uint32 {
	return uint32(uint8(p))
}

// TxPowerFromRegister decodes the TXPOWER register.
func TxPowerFromRegister(v uint32) TxPower {
	return TxPower(int8(uint8(v)))
}

func (p TxPower) String() string {
	return fmt.Sprintf("%+ddBm", int8(p))
}

// CCA selects the Clear Channel Assessment method. Build one with CarrierSense or
// EnergyDetection.
type CCA struct {
	mode      CCAMode
	threshold uint8
}

// CarrierSense returns the carrier sense CCA method.
func CarrierSense() CCA {
	return CCA{mode: CCAModeCarrier}
}

// EnergyDetection returns the energy-above-threshold CCA method. Measurements above
// threshold mean the channel is busy. The range is 0..0xFF where 0 means the received
// power was less than 10 dB above the selected receiver sensitivity. This is not in dBm.
func EnergyDetection(threshold uint8) CCA {
	return CCA{mode: CCAModeEnergy, threshold: threshold}
}

// Mode returns the CCACTRL mode of c.
func (c CCA) Mode() CCAMode {
	return c.mode
}

// EDThreshold returns the energy detection threshold, 0 for carrier sense.
func (c CCA) EDThreshold() uint8 {
	return c.threshold
}

func (c CCA) String() string {
	switch c.mode {
	case CCAModeCarrier:
		return "carrier-sense"
	case CCAModeEnergy:
		return fmt.Sprintf("energy-detection(threshold=%d)", c.threshold)
	default:
		return fmt.Sprintf("CCA(mode=%d)", c.mode)
	}
}

func (c CCA) control() CCAControl {
	if c.mode == CCAModeEnergy {
		return CCAControl{Mode: CCAModeEnergy, EDThreshold: c.threshold}
	}
	return CCAControl{Mode: CCAModeCarrier}
}
