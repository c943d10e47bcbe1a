package nftptr

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Token contract constructor constants.
const (
	TokenSymbol  = "NFT"
	TokenBaseURI = "https://nft-ptr.notnow.dev/?"
)

// tokenName is unique per run so every run gets a fresh collection.
func (s *Session) tokenName() string {
	return fmt.Sprintf("NftPtrToken %s %d", s.program, s.now().UnixMilli())
}

// deploy creates a contract from artifact and waits for its receipt.
func (s *Session) deploy(ctx context.Context, artifact *Artifact, name string, gas uint64, args ...any) (*Contract, error) {
	data, err := artifact.deployData(args...)
	if err != nil {
		return nil, &DeployError{Contract: artifact.Name, Err: err}
	}

	receipt, err := s.submit(ctx, NewCreation(data), gas)
	if err != nil {
		return nil, &DeployError{Contract: artifact.Name, Err: err}
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, &DeployError{Contract: artifact.Name, Err: ErrNoContractAddress}
	}

	c := NewContract(receipt.ContractAddress, artifact.ABI)
	c.name = name
	c.txHash = receipt.TxHash
	return c, nil
}

// transact calls method on c and waits for its receipt.
func (s *Session) transact(ctx context.Context, c *Contract, method string, gas uint64, args ...any) (*types.Receipt, error) {
	data, err := c.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, NewCall(c.Address(), data), gas)
}

// submit sends req through the signer, with the fixed gas limit if enabled,
// and waits for the configured confirmations.
func (s *Session) submit(ctx context.Context, req *TxRequest, gas uint64) (*types.Receipt, error) {
	if s.cfg.HardcodedGas {
		req = req.WithGas(gas)
	}
	hash, err := s.signer.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Debug("Submitted transaction", "hash", hash, "creation", req.IsCreation(), "gas", req.Gas())

	receipt, err := waitConfirmed(ctx, s.backend, hash, s.cfg.Confirmations, s.cfg.pollInterval())
	if err != nil {
		return nil, err
	}
	if receipt.TxHash == (common.Hash{}) {
		receipt.TxHash = hash
	}
	return receipt, nil
}
