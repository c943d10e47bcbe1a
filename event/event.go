// Package event decodes allocator ownership events and applies them to an
// nftptr session.
//
// An event is one JSON object:
//
//	{"kind": "move_token", "owner": "0x7ffd1000", "previous": 0, "value": "0x2a", "pc": "0x401136", "type": "P3Cow"}
//
// Numeric fields accept a JSON number or a 0x-prefixed hex string.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Kind names what happened to a tracked owner or value.
type Kind string

const (
	// KindInitialize announces a new owner; it gets its own contract.
	KindInitialize Kind = "ptr_initialize"

	// KindDestroy retires an owner.
	KindDestroy Kind = "ptr_destroy"

	// KindMove moves a value from one owner to another.
	KindMove Kind = "move_token"
)

// ErrUnknownKind is returned for events with an unrecognized kind.
var ErrUnknownKind = errors.New("event: unknown kind")

// Word is a 64-bit id, value or program counter.
type Word uint64

// ParseWord parses a 0x-prefixed hex or a decimal string.
func ParseWord(s string) (Word, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return 0, fmt.Errorf("event: hex word %q: %w", s, err)
		}
		return Word(v), nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("event: word %q: %w", s, err)
	}
	return Word(v), nil
}

// UnmarshalJSON accepts a JSON number or a 0x-prefixed hex string.
func (w *Word) UnmarshalJSON(input []byte) error {
	if len(input) > 0 && input[0] == '"' {
		var s string
		if err := json.Unmarshal(input, &s); err != nil {
			return err
		}
		if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
			return fmt.Errorf("event: hex word %q without 0x prefix", s)
		}
		v, err := ParseWord(s)
		if err != nil {
			return err
		}
		*w = v
		return nil
	}

	var v uint64
	if err := json.Unmarshal(input, &v); err != nil {
		return fmt.Errorf("event: word %s: %w", input, err)
	}
	*w = Word(v)
	return nil
}

// MarshalJSON encodes w as a 0x-prefixed hex string.
func (w Word) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w Word) String() string {
	return hexutil.EncodeUint64(uint64(w))
}

// Event is one allocator notification.
type Event struct {
	Kind     Kind   `json:"kind"`
	Owner    Word   `json:"owner"`
	Previous Word   `json:"previous,omitempty"`
	Value    Word   `json:"value,omitempty"`
	PC       Word   `json:"pc,omitempty"`
	Type     string `json:"type,omitempty"`
}

// Validate checks the kind.
func (e *Event) Validate() error {
	switch e.Kind {
	case KindInitialize, KindDestroy, KindMove:
		return nil
	default:
		return fmt.Errorf("%w %q", ErrUnknownKind, e.Kind)
	}
}

// Initialize returns a ptr_initialize event.
func Initialize(owner, pc uint64, typeName string) *Event {
	return &Event{Kind: KindInitialize, Owner: Word(owner), PC: Word(pc), Type: typeName}
}

// Destroy returns a ptr_destroy event.
func Destroy(owner uint64) *Event {
	return &Event{Kind: KindDestroy, Owner: Word(owner)}
}

// Move returns a move_token event.
func Move(owner, previous, value, pc uint64, typeName string) *Event {
	return &Event{
		Kind:     KindMove,
		Owner:    Word(owner),
		Previous: Word(previous),
		Value:    Word(value),
		PC:       Word(pc),
		Type:     typeName,
	}
}
