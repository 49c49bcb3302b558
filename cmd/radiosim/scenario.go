package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/michcald/ieee802154"
)

// PeerMode selects how the simulated peer answers.
type PeerMode string

const (
	// PeerReverse replies with the received payload reversed, like the loopback firmware.
	PeerReverse PeerMode = "reverse"
	// PeerEcho replies with the received payload unchanged, which Exchange accepts.
	PeerEcho PeerMode = "echo"
	// PeerOff attaches no peer.
	PeerOff PeerMode = "off"
)

// Scenario describes a simulated session.
type Scenario struct {
	// Radio configures the radio driven from the console.
	Radio ieee802154.Config `yaml:"radio"`
	Peer  PeerConfig        `yaml:"peer"`
	// Address is this node's address for the exchange command.
	Address string `yaml:"address"`
	// Noise is the background energy level per channel.
	Noise map[uint8]uint8 `yaml:"noise"`
	// LQI reported to receivers. Defaults to 0xFF if not provided.
	LQI uint8     `yaml:"lqi"`
	Log LogConfig `yaml:"log"`
}

type PeerConfig struct {
	// Mode defaults to PeerReverse if not provided.
	Mode  PeerMode          `yaml:"mode"`
	Radio ieee802154.Config `yaml:"radio"`
	// ReplyDelay is the pause before replying, in microseconds.
	// Defaults to 5000 if not provided.
	ReplyDelay uint32 `yaml:"reply_delay_us"`
}

type LogConfig struct {
	// File receives the logs, rotated by size. Logs go to the console if empty.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func defaultScenario() Scenario {
	return Scenario{
		Address: "01:02:03:04:05:06",
		Peer:    PeerConfig{Mode: PeerReverse},
	}
}

func loadScenario(path string) (Scenario, error) {
	s := defaultScenario()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return s, fmt.Errorf("reading scenario: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return s, fmt.Errorf("decoding scenario: %w", err)
		}
	}
	return s, s.validate()
}

func (s *Scenario) validate() error {
	if s.LQI == 0 {
		s.LQI = 0xFF
	}
	if s.Peer.Mode == "" {
		s.Peer.Mode = PeerReverse
	}
	if s.Peer.ReplyDelay == 0 {
		s.Peer.ReplyDelay = 5000
	}
	switch s.Peer.Mode {
	case PeerReverse, PeerEcho, PeerOff:
	default:
		return fmt.Errorf("unknown peer mode %q", s.Peer.Mode)
	}
	if err := s.Radio.Validate(); err != nil {
		return fmt.Errorf("radio: %w", err)
	}
	if err := s.Peer.Radio.Validate(); err != nil {
		return fmt.Errorf("peer radio: %w", err)
	}
	if _, err := parseAddress(s.Address); err != nil {
		return err
	}
	for ch := range s.Noise {
		if !ieee802154.Channel(ch).Valid() {
			return fmt.Errorf("noise: invalid channel %d", ch)
		}
	}
	return nil
}

func parseAddress(s string) (ieee802154.Address, error) {
	var a ieee802154.Address
	n, err := fmt.Sscanf(s, "%02X:%02X:%02X:%02X:%02X:%02X", &a[0], &a[1], &a[2], &a[3], &a[4], &a[5])
	if err != nil || n != len(a) {
		return a, fmt.Errorf("invalid address %q", s)
	}
	return a, nil
}
