// Command radiosim drives an IEEE 802.15.4 radio on a simulated ether from an
// interactive console.
//
// A second simulated radio answers every packet, either reversed (like the
// loopback firmware) or unchanged.
//
// Usage:
//
//	radiosim [flags]
//
// Flags:
//
//	-scenario string  Scenario file path (YAML)
//	-log string       Log file path, overrides the scenario
//	-debug            Log driver debug messages
//
// Example scenario:
//
//	radio:
//	  channel: 20
//	  tx_power: 4
//	peer:
//	  mode: echo
//	noise:
//	  20: 16
//	log:
//	  file: radiosim.log
//	  max_size_mb: 5
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/michcald/ieee802154"
	"github.com/michcald/ieee802154/sim"
)

var (
	scenarioFile string
	logFile      string
	debug        bool
)

func init() {
	flag.StringVar(&scenarioFile, "scenario", "", "Scenario file path (YAML)")
	flag.StringVar(&logFile, "log", "", "Log file path, overrides the scenario")
	flag.BoolVar(&debug, "debug", false, "Log driver debug messages")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	scenario, err := loadScenario(scenarioFile)
	if err != nil {
		log.Printf("Invalid scenario: %v", err)
		return 1
	}
	if logFile != "" {
		scenario.Log.File = logFile
	}

	ether, addr, err := newEther(scenario)
	if err != nil {
		log.Printf("Invalid scenario: %v", err)
		return 1
	}

	radio, err := ieee802154.NewWithRegisters(scenario.Radio, ether.Attach(sim.WithName("console")))
	if err != nil {
		log.Printf("Failed to initialize radio: %v", err)
		return 1
	}
	defer radio.Close()

	c, err := newConsole(radio, ether, addr)
	if err != nil {
		log.Printf("Failed to start console: %v", err)
		return 1
	}

	logger := setupLogging(scenario.Log, c.Stderr())
	ieee802154.SetLogger(logger)
	logger.Info("Radio initialized: " + radio.String())

	if scenario.Peer.Mode != PeerOff {
		pr, err := ieee802154.NewWithRegisters(scenario.Peer.Radio, ether.Attach(sim.WithName("peer")))
		if err != nil {
			log.Printf("Failed to initialize peer: %v", err)
			return 1
		}
		p := &peer{radio: pr, mode: scenario.Peer.Mode, delay: scenario.Peer.ReplyDelay, log: logger}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			p.run(ctx)
		}()
		defer func() {
			cancel()
			<-done
		}()
		logger.Info("Peer listening on " + pr.Channel().String() + " (" + string(p.mode) + ")")
	}

	c.Run()
	return 0
}

// newEther builds the simulated medium of a scenario.
func newEther(s Scenario) (*sim.Ether, ieee802154.Address, error) {
	addr, err := parseAddress(s.Address)
	if err != nil {
		return nil, addr, err
	}
	ether := sim.NewEther()
	ether.SetLQI(s.LQI)
	for ch, level := range s.Noise {
		ether.SetNoise(ieee802154.Channel(ch), level)
	}
	return ether, addr, nil
}

// setupLogging routes logs to a rotated file, or to the console.
func setupLogging(cfg LogConfig, console io.Writer) ieee802154.Logger {
	var w io.Writer = console
	if cfg.File != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
	}
	log.SetOutput(w)

	l := ieee802154.NewStdLogger(w)
	if !debug {
		l = ieee802154.MinLevel(l, ieee802154.LevelInfo)
	}
	return l
}
