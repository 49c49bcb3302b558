package main

import (
	"context"
	"errors"
	"slices"

	"github.com/michcald/ieee802154"
)

// peer answers every packet it receives, like the loopback firmware does.
type peer struct {
	radio *ieee802154.Radio
	mode  PeerMode
	delay uint32
	log   ieee802154.Logger
}

func (p *peer) run(ctx context.Context) {
	defer p.radio.Close()

	var timer ieee802154.DeadlineTimer
	packet := ieee802154.NewPacket()
	for {
		err := p.recv(ctx, packet)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.log.Warn("peer: dropping packet: " + err.Error())
			continue
		}

		if p.mode == PeerReverse {
			slices.Reverse(packet.Payload())
		}

		// give the sender time to switch to receive mode
		ieee802154.Delay(&timer, p.delay)
		if err := p.radio.TrySend(packet); err != nil {
			p.log.Warn("peer: reply not sent: " + err.Error())
			continue
		}
		p.log.Debug("peer: replied " + packet.String())
	}
}

// recv listens without interruption until a packet arrives or ctx is done. A frame
// already on air when ctx is cancelled is aborted.
func (p *peer) recv(ctx context.Context, packet *ieee802154.Packet) error {
	var err error
	p.radio.RecvNonBlocking(packet, func(rv *ieee802154.Recv) {
		for ctx.Err() == nil {
			if _, err = rv.Poll(); !errors.Is(err, ieee802154.ErrWouldBlock) {
				return
			}
		}
	})
	return err
}
