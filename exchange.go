package ieee802154

import (
	"bytes"
	"errors"
	"fmt"
)

// AddressLen is the size of the address prefixed to every Exchange frame.
const AddressLen = 6

// Exchange defaults, in microseconds unless stated otherwise.
const (
	DefaultRetries      = 10
	DefaultReplyTimeout = 100_000
	exchangePreDelay    = 5_000
	exchangeBackoff     = 10_000
)

// Address identifies a node taking part in an Exchange.
type Address [AddressLen]byte

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Exchange sends requests and waits for replies addressed back to this node. A
// request frame is the node address followed by the data; a reply is accepted only
// if it starts with the same address.
type Exchange struct {
	Radio   *Radio
	Timer   Timer
	Address Address
	// Retries is the number of request/reply attempts.
	// Defaults to DefaultRetries if not provided.
	Retries int
	// Timeout is how long to wait for a reply after each request, in microseconds.
	// Defaults to DefaultReplyTimeout if not provided.
	Timeout uint32
}

// Do sends data and returns the payload of the reply, address stripped. The
// returned slice aliases p.
//
// It waits briefly before the first attempt so that back-to-back calls do not take
// all the bandwidth, and backs off after every failed attempt. After the last attempt
// it returns an error wrapping ErrTimeout.
//
// It panics if data does not fit in a packet along with the address.
func (e *Exchange) Do(p *Packet, data []byte) ([]byte, error) {
	if len(data)+AddressLen >= Capacity {
		panic(fmt.Sprintf("ieee802154: exchange data of %d bytes does not fit in a packet", len(data)))
	}
	retries := e.Retries
	if retries <= 0 {
		retries = DefaultRetries
	}
	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultReplyTimeout
	}
	log := e.Radio.logger()

	Delay(e.Timer, exchangePreDelay)
	for i := 0; i < retries; i++ {
		p.SetLen(uint8(AddressLen + len(data)))
		payload := p.Payload()
		copy(payload, e.Address[:])
		copy(payload[AddressLen:], data)
		log.Debug(fmt.Sprintf("TX: % X", payload))

		e.Radio.Send(p)

		_, err := e.Radio.RecvTimeout(p, e.Timer, timeout)
		var crcErr *CRCError
		switch {
		case err == nil:
			reply := p.Payload()
			log.Debug(fmt.Sprintf("RX: % X", reply))
			if len(reply) >= AddressLen && bytes.Equal(reply[:AddressLen], e.Address[:]) {
				return reply[AddressLen:], nil
			}
			log.Warn(fmt.Sprintf("RX wrong address, try %d", i))
		case errors.Is(err, ErrTimeout):
			log.Warn(fmt.Sprintf("RX timeout, try %d", i))
		case errors.As(err, &crcErr):
			log.Warn(fmt.Sprintf("RX CRC error, try %d", i))
		default:
			return nil, err
		}
		Delay(e.Timer, exchangeBackoff)
	}
	return nil, fmt.Errorf("%w: %w", ErrPkg, ErrTimeout)
}
