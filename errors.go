package nftptr

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors for common failure conditions.
var (
	// ErrMainnet indicates the node reported network id 1.
	ErrMainnet = errors.New("nftptr: refusing to run on mainnet and waste real money")

	// ErrNoAccounts indicates the node has no unlocked account to sign with.
	ErrNoAccounts = errors.New("nftptr: node reports no accounts")

	// ErrNotInitialized indicates an operation that needs the token contract ran before Initialize.
	ErrNotInitialized = errors.New("nftptr: session not initialized")

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.New("nftptr: session already initialized")

	// ErrMissingPassword indicates a keystore was configured without a password.
	ErrMissingPassword = errors.New("nftptr: keystore configured without password")

	// ErrNoContractAddress indicates a creation receipt carried no contract address.
	ErrNoContractAddress = errors.New("nftptr: receipt has no contract address")
)

// ConfigError indicates a malformed configuration value.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("nftptr: config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// MethodNotFoundError indicates the contract doesn't have the requested method.
type MethodNotFoundError struct {
	Contract common.Address
	Method   string
}

func (e *MethodNotFoundError) Error() string {
	return fmt.Sprintf("nftptr: method %q not found in contract %s", e.Method, e.Contract.Hex())
}

// ArgumentError indicates the arguments could not be packed for a method.
// An empty Method means the constructor.
type ArgumentError struct {
	Method string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("nftptr: constructor arguments: %v", e.Err)
	}
	return fmt.Sprintf("nftptr: arguments for method %q: %v", e.Method, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// DeployError wraps a failed contract deployment.
type DeployError struct {
	Contract string
	Err      error
}

func (e *DeployError) Error() string {
	return fmt.Sprintf("nftptr: deploy %s: %v", e.Contract, e.Err)
}

func (e *DeployError) Unwrap() error {
	return e.Err
}

// TransactionError indicates a mined transaction reverted.
type TransactionError struct {
	Hash   common.Hash
	Status uint64
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("nftptr: transaction %s failed with status %d", e.Hash.Hex(), e.Status)
}
