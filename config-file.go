//go:build !tinygo

package ieee802154

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseConfig decodes a YAML radio configuration. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decoding config: %w", ErrPkg, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig reads and decodes the YAML radio configuration at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: reading config: %w", ErrPkg, err)
	}
	return ParseConfig(data)
}

// MarshalConfig encodes c as YAML, in the format read by ParseConfig.
func MarshalConfig(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}
