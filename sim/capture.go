package sim

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Record is a frame captured on air.
type Record struct {
	Seq       uint64    `cbor:"1,keyasint"`
	Node      uuid.UUID `cbor:"2,keyasint"`
	Channel   uint8     `cbor:"3,keyasint"`
	Payload   []byte    `cbor:"4,keyasint"`
	FCS       uint16    `cbor:"5,keyasint"`
	Corrupted bool      `cbor:"6,keyasint,omitempty"`
}

func (r Record) String() string {
	status := "ok"
	if r.Corrupted {
		status = "bad-fcs"
	}
	return fmt.Sprintf("#%d ch%d %s fcs=%04X %s % X", r.Seq, r.Channel, r.Node.String()[:8], r.FCS, status, r.Payload)
}

// Recorder writes captured frames to a stream as a sequence of CBOR items.
// It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	enc *cbor.Encoder
	n   int
	err error
}

// NewRecorder returns a recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{enc: cbor.NewEncoder(w)}
}

func (r *Recorder) record(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	if err := r.enc.Encode(rec); err != nil {
		r.err = fmt.Errorf("sim: writing capture: %w", err)
		return
	}
	r.n++
}

// Count returns the number of frames written.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Err returns the first write error. Recording stops after it.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// ReadCapture decodes every record of a capture written by a Recorder.
func ReadCapture(rd io.Reader) ([]Record, error) {
	dec := cbor.NewDecoder(rd)
	var out []Record
	for {
		var rec Record
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("sim: reading capture: %w", err)
		}
		out = append(out, rec)
	}
}
