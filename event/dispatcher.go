package event

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/branched-services/go-nftptr"
)

// Handler is what events are applied to. *nftptr.Session implements it.
type Handler interface {
	Account() common.Address
	Instance(id uint64) (*nftptr.Contract, bool)
	RegisterInstance(ctx context.Context, id, pc uint64, typeName string) (*nftptr.Contract, error)
	UnregisterInstance(id uint64)
	MoveToken(ctx context.Context, owner, previous, value, pc uint64, typeName string) (common.Hash, error)
}

var _ Handler = (*nftptr.Session)(nil)

// Result is what applying an event produced.
type Result struct {
	Contract *common.Address `json:"contract,omitempty"`
	Tx       *common.Hash    `json:"tx,omitempty"`
}

// Dispatcher serializes access to a Handler so that several event sources
// can share one session.
type Dispatcher struct {
	mu  sync.Mutex
	h   Handler
	log log.Logger
}

// NewDispatcher wraps h. A nil logger logs under module=event.
func NewDispatcher(h Handler, logger log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New("module", "event")
	}
	return &Dispatcher{h: h, log: logger}
}

// Apply validates ev and performs it.
func (d *Dispatcher) Apply(ctx context.Context, ev *Event) (*Result, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	d.log.Debug("Applying event", "kind", ev.Kind, "owner", ev.Owner, "value", ev.Value)

	switch ev.Kind {
	case KindInitialize:
		c, err := d.RegisterInstance(ctx, uint64(ev.Owner), uint64(ev.PC), ev.Type)
		if err != nil {
			return nil, err
		}
		addr := c.Address()
		return &Result{Contract: &addr}, nil

	case KindDestroy:
		d.UnregisterInstance(uint64(ev.Owner))
		return &Result{}, nil

	default:
		hash, err := d.MoveToken(ctx, uint64(ev.Owner), uint64(ev.Previous), uint64(ev.Value), uint64(ev.PC), ev.Type)
		if err != nil {
			return nil, err
		}
		return &Result{Tx: &hash}, nil
	}
}

// Account returns the session account.
func (d *Dispatcher) Account() common.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.h.Account()
}

// Instance returns the owner contract registered for id.
func (d *Dispatcher) Instance(id uint64) (*nftptr.Contract, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.h.Instance(id)
}

// RegisterInstance deploys and registers an owner contract.
func (d *Dispatcher) RegisterInstance(ctx context.Context, id, pc uint64, typeName string) (*nftptr.Contract, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.h.RegisterInstance(ctx, id, pc, typeName)
}

// UnregisterInstance forgets an owner contract.
func (d *Dispatcher) UnregisterInstance(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.h.UnregisterInstance(id)
}

// MoveToken records a value move.
func (d *Dispatcher) MoveToken(ctx context.Context, owner, previous, value, pc uint64, typeName string) (common.Hash, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.h.MoveToken(ctx, owner, previous, value, pc, typeName)
}
