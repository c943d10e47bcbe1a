package event

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Reader decodes a stream of whitespace separated events, one JSON object
// per line in practice.
type Reader struct {
	dec *json.Decoder
	n   int
}

// NewReader reads events from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(r)}
}

// Next returns the next valid event, or io.EOF at the end of the stream.
func (r *Reader) Next() (*Event, error) {
	var ev Event
	if err := r.dec.Decode(&ev); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("event %d: %w", r.n+1, err)
	}
	r.n++
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("event %d: %w", r.n, err)
	}
	return &ev, nil
}

// Count returns the number of events decoded so far.
func (r *Reader) Count() int {
	return r.n
}

// Replay applies every event of r through d in order and stops at the first
// failure. It returns the number of events applied.
func Replay(ctx context.Context, r io.Reader, d *Dispatcher) (int, error) {
	events := NewReader(r)
	applied := 0
	for {
		ev, err := events.Next()
		if err == io.EOF {
			return applied, nil
		}
		if err != nil {
			return applied, err
		}
		if _, err := d.Apply(ctx, ev); err != nil {
			return applied, fmt.Errorf("event %d: %w", events.Count(), err)
		}
		applied++
	}
}
