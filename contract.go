package nftptr

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract is a deployed contract: its address and ABI.
type Contract struct {
	name    string
	address common.Address
	abi     abi.ABI
	txHash  common.Hash
}

// NewContract wraps an already deployed contract.
func NewContract(address common.Address, contractABI abi.ABI) *Contract {
	return &Contract{
		address: address,
		abi:     contractABI,
	}
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the contract ABI.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Name returns the name the contract was deployed with, if known.
func (c *Contract) Name() string {
	return c.name
}

// TxHash returns the creation transaction hash, if known.
func (c *Contract) TxHash() common.Hash {
	return c.txHash
}

// HasMethod returns true if the contract has a method with the given name.
func (c *Contract) HasMethod(methodName string) bool {
	_, ok := c.abi.Methods[methodName]
	return ok
}

// Pack encodes a call to the named method.
func (c *Contract) Pack(methodName string, args ...any) ([]byte, error) {
	if !c.HasMethod(methodName) {
		return nil, &MethodNotFoundError{Contract: c.address, Method: methodName}
	}
	data, err := c.abi.Pack(methodName, args...)
	if err != nil {
		return nil, &ArgumentError{Method: methodName, Err: err}
	}
	return data, nil
}

// ParseABI parses a JSON ABI string into an abi.ABI.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}
