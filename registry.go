package nftptr

import (
	"github.com/ethereum/go-ethereum/common"
)

// Registry maps instance ids to their deployed owner contracts.
// It is not safe for concurrent use.
type Registry struct {
	contracts map[uint64]*Contract
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{contracts: make(map[uint64]*Contract)}
}

// Register stores c under id, replacing any previous entry.
func (r *Registry) Register(id uint64, c *Contract) {
	r.contracts[id] = c
}

// Lookup returns the contract registered under id.
func (r *Registry) Lookup(id uint64) (*Contract, bool) {
	c, ok := r.contracts[id]
	return c, ok
}

// Resolve returns the address registered under id, or fallback.
func (r *Registry) Resolve(id uint64, fallback common.Address) common.Address {
	if c, ok := r.contracts[id]; ok {
		return c.Address()
	}
	return fallback
}

// Unregister forgets id. The contract itself is left alone.
func (r *Registry) Unregister(id uint64) {
	delete(r.contracts, id)
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	return len(r.contracts)
}
