package nftptr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// waitConfirmed polls for the receipt of hash, then waits until the chain head
// is confirmations blocks past the including block. RPC errors other than
// "not found" end the wait.
func waitConfirmed(ctx context.Context, b Backend, hash common.Hash, confirmations uint64, interval time.Duration) (*types.Receipt, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		r, err := b.TransactionReceipt(ctx, hash)
		if err == nil && r != nil {
			receipt = r
			break
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("nftptr: receipt %s: %w", hash.Hex(), err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, &TransactionError{Hash: hash, Status: receipt.Status}
	}
	if confirmations == 0 || receipt.BlockNumber == nil {
		return receipt, nil
	}

	target := receipt.BlockNumber.Uint64() + confirmations
	for {
		head, err := b.BlockNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("nftptr: block number: %w", err)
		}
		if head >= target {
			return receipt, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
