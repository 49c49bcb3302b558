package ieee802154

import "fmt"

// DefaultSFD is the IEEE compliant Start of Frame Delimiter.
const DefaultSFD = 0xA7

// CCAMethod names a Clear Channel Assessment method in a Config.
type CCAMethod string

const (
	CCAMethodCarrierSense    CCAMethod = "carrier-sense"
	CCAMethodEnergyDetection CCAMethod = "energy-detection"
)

type Config struct {
	// Channel is the IEEE 802.15.4 channel, between 11 and 26.
	// Defaults to 11 if not provided.
	Channel Channel `yaml:"channel"`
	// TxPower is the transmission power in dBm. Allowed values are +8 to +2, 0, -4,
	// -8, -12, -16, -20, -30 and -40.
	// Defaults to 0 dBm if not provided.
	TxPower TxPower `yaml:"tx_power"`
	// CCA selects the Clear Channel Assessment method used by Send and TrySend.
	// Defaults to CCAMethodCarrierSense if not provided.
	CCA CCAMethod `yaml:"cca"`
	// EDThreshold is the energy detection threshold used when CCA is
	// CCAMethodEnergyDetection. Ignored otherwise.
	EDThreshold uint8 `yaml:"ed_threshold"`
	// SFD is the Start of Frame Delimiter.
	// Zero selects DefaultSFD. Use Radio.SetSFD for a zero delimiter.
	SFD uint8 `yaml:"sfd"`
	// Logger receives the messages of this radio.
	// Defaults to the package logger set with SetLogger.
	Logger Logger `yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.Channel == 0 {
		c.Channel = Channel11
	}
	if c.CCA == "" {
		c.CCA = CCAMethodCarrierSense
	}
	if c.SFD == 0 {
		c.SFD = DefaultSFD
	}
	return c
}

// Validate checks the configuration once defaults have been applied.
// Every error wraps ErrPkg.
func (c Config) Validate() error {
	c = c.withDefaults()
	if !c.Channel.Valid() {
		return fmt.Errorf("%w: channel %d out of range, must be between %d and %d", ErrPkg, uint8(c.Channel), MinChannel, MaxChannel)
	}
	if !c.TxPower.Valid() {
		return fmt.Errorf("%w: unsupported transmission power %d dBm", ErrPkg, int8(c.TxPower))
	}
	switch c.CCA {
	case CCAMethodCarrierSense, CCAMethodEnergyDetection:
	default:
		return fmt.Errorf("%w: unknown CCA method %q", ErrPkg, c.CCA)
	}
	return nil
}

func (c Config) cca() CCA {
	if c.CCA == CCAMethodEnergyDetection {
		return EnergyDetection(c.EDThreshold)
	}
	return CarrierSense()
}
