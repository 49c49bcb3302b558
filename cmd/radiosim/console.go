package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/michcald/ieee802154"
	"github.com/michcald/ieee802154/sim"
)

// console drives one radio from an interactive prompt.
type console struct {
	radio    *ieee802154.Radio
	ether    *sim.Ether
	exchange *ieee802154.Exchange
	rl       *readline.Instance
	packet   *ieee802154.Packet
	timer    ieee802154.DeadlineTimer

	capture  *os.File
	recorder *sim.Recorder
}

func newConsole(radio *ieee802154.Radio, ether *sim.Ether, addr ieee802154.Address) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "radio> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("send"),
			readline.PcItem("try"),
			readline.PcItem("nocca"),
			readline.PcItem("ping"),
			readline.PcItem("exchange"),
			readline.PcItem("recv"),
			readline.PcItem("channel"),
			readline.PcItem("power"),
			readline.PcItem("cca", readline.PcItem("cs"), readline.PcItem("ed")),
			readline.PcItem("scan"),
			readline.PcItem("jam", readline.PcItem("on"), readline.PcItem("off")),
			readline.PcItem("capture"),
			readline.PcItem("dump"),
			readline.PcItem("status"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &console{
		radio:  radio,
		ether:  ether,
		rl:     rl,
		packet: ieee802154.NewPacket(),
	}
	c.exchange = &ieee802154.Exchange{
		Radio:   radio,
		Timer:   &c.timer,
		Address: addr,
		Retries: 3,
	}
	return c, nil
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *console) Stderr() io.Writer {
	return c.rl.Stderr()
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.rl.Stdout(), format+"\n", args...)
}

// Run reads commands until quit or EOF.
func (c *console) Run() {
	defer c.rl.Close()
	defer c.stopCapture()

	c.printHelp()
	for {
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := c.dispatch(cmd, args); err != nil {
			c.printf("error: %v", err)
		}
	}
}

func (c *console) dispatch(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		c.printHelp()
	case "send":
		return c.cmdSend(args, c.radio.Send)
	case "nocca":
		return c.cmdSend(args, c.radio.SendNoCCA)
	case "try":
		if err := c.fill(args); err != nil {
			return err
		}
		if err := c.radio.TrySend(c.packet); err != nil {
			return err
		}
		c.printf("sent %s", c.packet)
	case "ping":
		if err := c.fill(args); err != nil {
			return err
		}
		c.radio.Send(c.packet)
		return c.receive(500_000)
	case "exchange":
		data := []byte(strings.Join(args, " "))
		if len(data)+ieee802154.AddressLen >= ieee802154.Capacity {
			return fmt.Errorf("request of %d bytes is too long", len(data))
		}
		reply, err := c.exchange.Do(c.packet, data)
		if err != nil {
			return err
		}
		c.printf("reply %q", reply)
	case "recv":
		micros := uint64(1_000_000)
		if len(args) > 0 {
			var err error
			if micros, err = strconv.ParseUint(args[0], 10, 32); err != nil {
				return fmt.Errorf("invalid timeout %q", args[0])
			}
		}
		return c.receive(uint32(micros))
	case "channel":
		n, err := c.uintArg(args, 8)
		if err != nil {
			return err
		}
		if !ieee802154.Channel(n).Valid() {
			return fmt.Errorf("channel must be between %d and %d", ieee802154.MinChannel, ieee802154.MaxChannel)
		}
		c.radio.SetChannelRaw(uint8(n))
		c.printf("channel %s", c.radio.Channel())
	case "power":
		if len(args) != 1 {
			return errors.New("usage: power <dBm>")
		}
		dBm, err := strconv.ParseInt(args[0], 10, 8)
		if err != nil || !ieee802154.TxPower(dBm).Valid() {
			return fmt.Errorf("unsupported power %q", args[0])
		}
		c.radio.SetTxPowerRaw(int8(dBm))
		c.printf("power %s", c.radio.TxPower())
	case "cca":
		return c.cmdCCA(args)
	case "scan":
		n, err := c.uintArg(args, 20)
		if err != nil {
			return err
		}
		c.printf("energy %d on %s", c.radio.EnergyDetectionScan(uint32(n)), c.radio.Channel())
	case "jam":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			return errors.New("usage: jam on|off")
		}
		c.ether.Jam(c.radio.Channel(), args[0] == "on")
		c.printf("jamming %s: %s", c.radio.Channel(), args[0])
	case "capture":
		return c.cmdCapture(args)
	case "dump":
		return c.cmdDump(args)
	case "status":
		c.printf("%s", c.radio)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (c *console) fill(args []string) error {
	data := []byte(strings.Join(args, " "))
	if len(data) > ieee802154.Capacity {
		return fmt.Errorf("payload of %d bytes exceeds %d", len(data), ieee802154.Capacity)
	}
	c.packet.CopyFrom(data)
	return nil
}

func (c *console) cmdSend(args []string, send func(*ieee802154.Packet)) error {
	if err := c.fill(args); err != nil {
		return err
	}
	send(c.packet)
	c.printf("sent %s", c.packet)
	return nil
}

func (c *console) receive(micros uint32) error {
	crc, err := c.radio.RecvTimeout(c.packet, &c.timer, micros)
	var crcErr *ieee802154.CRCError
	if err != nil && !errors.As(err, &crcErr) {
		return err
	}
	status := "ok"
	if crcErr != nil {
		status = "bad CRC"
	}
	c.printf("received %q lqi=%d crc=%04X (%s)", c.packet.Payload(), c.packet.LQI(), crc, status)
	return nil
}

func (c *console) cmdCCA(args []string) error {
	switch {
	case len(args) == 1 && args[0] == "cs":
		c.radio.SetCCA(ieee802154.CarrierSense())
	case len(args) == 2 && args[0] == "ed":
		thr, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return fmt.Errorf("invalid threshold %q", args[1])
		}
		c.radio.SetCCA(ieee802154.EnergyDetection(uint8(thr)))
	default:
		return errors.New("usage: cca cs | cca ed <threshold>")
	}
	c.printf("cca %s", c.radio.CCA())
	return nil
}

func (c *console) cmdCapture(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: capture <file>|off")
	}
	c.stopCapture()
	if args[0] == "off" {
		return nil
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	c.capture = f
	c.recorder = sim.NewRecorder(f)
	c.ether.Record(c.recorder)
	c.printf("capturing to %s", args[0])
	return nil
}

func (c *console) stopCapture() {
	if c.capture == nil {
		return
	}
	c.ether.Record(nil)
	if err := c.recorder.Err(); err != nil {
		c.printf("capture: %v", err)
	}
	c.printf("captured %d frames to %s", c.recorder.Count(), c.capture.Name())
	c.capture.Close()
	c.capture, c.recorder = nil, nil
}

func (c *console) cmdDump(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: dump <file>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	records, err := sim.ReadCapture(f)
	for _, r := range records {
		c.printf("%s", r)
	}
	return err
}

func (c *console) uintArg(args []string, bits int) (uint64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one numeric argument")
	}
	n, err := strconv.ParseUint(args[0], 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}

func (c *console) printHelp() {
	c.printf(`Commands:
  send <text>        send with CCA, retrying until the channel is clear
  try <text>         send with a single CCA attempt
  nocca <text>       send without CCA
  ping <text>        send, then wait 500ms for a reply
  exchange <text>    addressed request/reply with retries (peer mode echo)
  recv [micros]      wait for a packet (default 1s)
  channel <11-26>    change channel
  power <dBm>        change transmission power
  cca cs|ed <thr>    change CCA method
  scan <cycles>      energy detection scan
  jam on|off         jam the current channel
  capture <file>|off record every frame on air (CBOR)
  dump <file>        print a capture
  status             show radio settings
  quit`)
}
