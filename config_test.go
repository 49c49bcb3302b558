package ieee802154_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	radio "github.com/michcald/ieee802154"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  radio.Config
		wantErr bool
	}{
		{"zero value", radio.Config{}, false},
		{"highest channel", radio.Config{Channel: radio.Channel26}, false},
		{"channel too low", radio.Config{Channel: 10}, true},
		{"channel too high", radio.Config{Channel: 27}, true},
		{"max power", radio.Config{TxPower: radio.TxPowerPos8dBm}, false},
		{"unsupported power", radio.Config{TxPower: -1}, true},
		{"energy detection", radio.Config{CCA: radio.CCAMethodEnergyDetection, EDThreshold: 10}, false},
		{"unknown CCA", radio.Config{CCA: "carrier-or-energy"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, radio.ErrPkg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseConfig(t *testing.T) {
	c, err := radio.ParseConfig([]byte(`
channel: 15
tx_power: -8
cca: energy-detection
ed_threshold: 32
sfd: 0x55
`))
	require.NoError(t, err)
	assert.Equal(t, radio.Channel15, c.Channel)
	assert.Equal(t, radio.TxPowerNeg8dBm, c.TxPower)
	assert.Equal(t, radio.CCAMethodEnergyDetection, c.CCA)
	assert.Equal(t, uint8(32), c.EDThreshold)
	assert.Equal(t, uint8(0x55), c.SFD)
}

func TestParseConfigEmpty(t *testing.T) {
	c, err := radio.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, radio.Config{}, c)
}

func TestParseConfigErrors(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "channel: 11\nbitrate: 250\n",
		"invalid value": "channel: 30\n",
		"bad yaml":      "channel: [11\n",
		"wrong type":    "tx_power: loud\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := radio.ParseConfig([]byte(doc))
			assert.ErrorIs(t, err, radio.ErrPkg)
		})
	}
}

func TestMarshalConfigRoundTrip(t *testing.T) {
	want := radio.Config{
		Channel: radio.Channel22,
		TxPower: radio.TxPowerNeg20dBm,
		CCA:     radio.CCAMethodCarrierSense,
		SFD:     radio.DefaultSFD,
		Logger:  radio.NopLogger(),
	}
	data, err := radio.MarshalConfig(want)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "logger")

	got, err := radio.ParseConfig(data)
	require.NoError(t, err)
	want.Logger = nil
	assert.Equal(t, want, got)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channel: 20\n"), 0o600))

	c, err := radio.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, radio.Channel20, c.Channel)

	_, err = radio.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, radio.ErrPkg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
