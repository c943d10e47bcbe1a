package nftptr

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
)

// Signer turns a TxRequest into a submitted transaction.
type Signer interface {
	// Account returns the address transactions are sent from.
	Account() common.Address

	// Send signs and submits req, returning the transaction hash.
	Send(ctx context.Context, req *TxRequest) (common.Hash, error)
}

// NodeSigner lets the node sign with one of its unlocked accounts.
type NodeSigner struct {
	client  *rpc.Client
	account common.Address
}

// NewNodeSigner uses the first account the node reports.
func NewNodeSigner(ctx context.Context, client *rpc.Client) (*NodeSigner, error) {
	var accounts []common.Address
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("nftptr: eth_accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return &NodeSigner{client: client, account: accounts[0]}, nil
}

// Account returns the node account.
func (s *NodeSigner) Account() common.Address {
	return s.account
}

// sendTxArgs is the eth_sendTransaction parameter object.
type sendTxArgs struct {
	From common.Address  `json:"from"`
	To   *common.Address `json:"to,omitempty"`
	Gas  *hexutil.Uint64 `json:"gas,omitempty"`
	Data hexutil.Bytes   `json:"data"`
}

// Send submits req through eth_sendTransaction.
func (s *NodeSigner) Send(ctx context.Context, req *TxRequest) (common.Hash, error) {
	args := sendTxArgs{
		From: s.account,
		To:   req.To(),
		Data: req.Data(),
	}
	if req.Gas() != 0 {
		gas := hexutil.Uint64(req.Gas())
		args.Gas = &gas
	}

	var hash common.Hash
	if err := s.client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, fmt.Errorf("nftptr: eth_sendTransaction: %w", err)
	}
	return hash, nil
}

// KeySigner signs locally with a private key and sends raw transactions.
type KeySigner struct {
	backend Backend
	opts    *bind.TransactOpts
	chainID *big.Int
}

// NewKeySigner signs for the chain id the backend reports.
func NewKeySigner(ctx context.Context, backend Backend, key *ecdsa.PrivateKey) (*KeySigner, error) {
	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("nftptr: eth_chainId: %w", err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	return &KeySigner{backend: backend, opts: opts, chainID: chainID}, nil
}

// Account returns the key's address.
func (s *KeySigner) Account() common.Address {
	return s.opts.From
}

// ChainID returns the chain id transactions are signed for.
func (s *KeySigner) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// Send fills nonce, gas price and gas limit, signs a legacy EIP-155
// transaction and submits it.
func (s *KeySigner) Send(ctx context.Context, req *TxRequest) (common.Hash, error) {
	from := s.Account()

	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nftptr: pending nonce: %w", err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nftptr: gas price: %w", err)
	}
	gas := req.Gas()
	if gas == 0 {
		if gas, err = s.backend.EstimateGas(ctx, req.callMsg(from)); err != nil {
			return common.Hash{}, fmt.Errorf("nftptr: estimate gas: %w", err)
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       req.To(),
		Data:     req.Data(),
	})
	signed, err := s.opts.Signer(from, tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("nftptr: sign: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("nftptr: eth_sendRawTransaction: %w", err)
	}
	return signed.Hash(), nil
}

// LoadKey decrypts the private key held in a keystore file.
func LoadKey(path, password string) (*ecdsa.PrivateKey, error) {
	keyJSON, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Key: EnvKeystore, Value: path, Err: err}
	}
	key, err := keystore.DecryptKey(keyJSON, password)
	if err != nil {
		return nil, &ConfigError{Key: EnvKeystore, Value: path, Err: err}
	}
	return key.PrivateKey, nil
}
