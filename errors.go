package ieee802154

import (
	"errors"
	"fmt"
)

var (
	ErrPkg = errors.New("ieee802154")
	// ErrTimeout is returned when no packet was received before the timer expired.
	// The receive has been stopped when this is returned.
	ErrTimeout = errors.New("timeout waiting for packet")
	// ErrChannelBusy is returned by TrySend when CCA found the channel in use.
	ErrChannelBusy = errors.New("channel busy")
	// ErrWouldBlock is returned by Recv.Poll while no packet has been received yet.
	ErrWouldBlock = errors.New("receive in progress")
	// ErrDoubleInit is returned when the RADIO peripheral is claimed twice.
	ErrDoubleInit = errors.New("radio peripheral already initialized")
)

// CRCError is returned when a packet was received but its CRC check failed.
// The packet is still delivered to the caller.
type CRCError struct {
	CRC uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("incorrect CRC 0x%04X", e.CRC)
}
