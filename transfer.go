package nftptr

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MintOrMove is the token contract method that records a move.
const MintOrMove = "mintOrMove"

// TransferRecord is one move of a value between owners, as submitted on chain.
type TransferRecord struct {
	Owner         common.Address
	PreviousOwner common.Address
	Value         *big.Int
	TokenURI      string
	Backtrace     string
}

// args returns the record in mintOrMove argument order.
func (r *TransferRecord) args() []any {
	return []any{r.Owner, r.PreviousOwner, r.Value, r.TokenURI, r.Backtrace}
}

// TokenURI returns the percent-encoded "<value hex> <type>" token URI.
func TokenURI(value uint64, typeName string) string {
	return PercentEncode(fmt.Sprintf("%x %s", value, Demangle(typeName)))
}

// TransferRecord resolves both owner ids and composes the record MoveToken
// would submit.
func (s *Session) TransferRecord(owner, previous, value, pc uint64, typeName string) *TransferRecord {
	return &TransferRecord{
		Owner:         s.OwnerAddress(owner),
		PreviousOwner: s.OwnerAddress(previous),
		Value:         new(big.Int).SetUint64(value),
		TokenURI:      TokenURI(value, typeName),
		Backtrace:     fmt.Sprintf("%x %s", owner, SourceLocation(s.symbols, pc)),
	}
}

// MoveToken records that value moved from owner previous to owner, minting
// the token on its first move.
func (s *Session) MoveToken(ctx context.Context, owner, previous, value, pc uint64, typeName string) (common.Hash, error) {
	if s.token == nil {
		return common.Hash{}, ErrNotInitialized
	}

	rec := s.TransferRecord(owner, previous, value, pc, typeName)
	s.log.Info("Transferring token",
		"value", hexutil.EncodeUint64(value),
		"type", Demangle(typeName),
		"owner", hexutil.EncodeUint64(owner), "ownerContract", rec.Owner,
		"previous", hexutil.EncodeUint64(previous), "previousContract", rec.PreviousOwner,
		"pc", hexutil.EncodeUint64(pc), "backtrace", rec.Backtrace)

	receipt, err := s.transact(ctx, s.token, MintOrMove, MintOrMoveGas, rec.args()...)
	if err != nil {
		s.metrics.failed("move")
		return common.Hash{}, err
	}
	s.metrics.transacted(MintOrMove)

	s.log.Info("Transaction", "hash", receipt.TxHash, "block", receipt.BlockNumber)
	if s.explorer != nil {
		s.log.Info("Transaction on explorer", "url", s.explorer.TxURL(receipt.TxHash))
		s.log.Info("Token on marketplace", "url", s.explorer.AssetURL(s.token.Address(), value))
	}
	return receipt.TxHash, nil
}
