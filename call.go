package nftptr

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Fixed gas limits used when Config.HardcodedGas is set.
const (
	TokenDeployGas uint64 = 6_000_000
	OwnerDeployGas uint64 = 720_000
	MintOrMoveGas  uint64 = 220_000
)

// Backend is the part of an Ethereum client a Session needs.
// *ethclient.Client satisfies it.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// TxRequest is an unsigned transaction waiting for a Signer.
// TxRequest is immutable - modifier methods return new instances.
type TxRequest struct {
	to   *common.Address // nil creates a contract
	data []byte
	gas  uint64 // zero leaves the limit to the node
}

// NewCreation returns a request that deploys code.
func NewCreation(code []byte) *TxRequest {
	return &TxRequest{data: code}
}

// NewCall returns a request that calls the contract at to.
func NewCall(to common.Address, data []byte) *TxRequest {
	return &TxRequest{to: &to, data: data}
}

// To returns the destination, nil for a contract creation.
func (r *TxRequest) To() *common.Address {
	return r.to
}

// Data returns the calldata or init code.
func (r *TxRequest) Data() []byte {
	return r.data
}

// Gas returns the gas limit, zero when unset.
func (r *TxRequest) Gas() uint64 {
	return r.gas
}

// IsCreation returns true if the request deploys a contract.
func (r *TxRequest) IsCreation() bool {
	return r.to == nil
}

// WithGas returns a new request with a fixed gas limit.
func (r *TxRequest) WithGas(gas uint64) *TxRequest {
	clone := *r
	clone.gas = gas
	return &clone
}

// callMsg converts the request for gas estimation.
func (r *TxRequest) callMsg(from common.Address) ethereum.CallMsg {
	return ethereum.CallMsg{
		From: from,
		To:   r.to,
		Gas:  r.gas,
		Data: r.data,
	}
}
