package nftptr

import (
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
)

// testEstimate is the gas limit the fake node estimates for every request.
const testEstimate uint64 = 123_456

// sentTx is a transaction as the fake node received it.
type sentTx struct {
	Hash common.Hash
	From common.Address
	To   *common.Address
	Gas  uint64
	Data []byte
	Raw  bool
}

// fakeNode is an in-memory JSON-RPC node. Every transaction is mined into
// its own block as soon as it arrives.
type fakeNode struct {
	mu sync.Mutex

	netVersion string
	chainID    *big.Int
	accounts   []common.Address

	head     uint64
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*types.Receipt
	pending  map[common.Hash]int

	// receiptDelay is the number of polls a new receipt stays hidden.
	receiptDelay int
	// failTx marks every mined transaction as reverted.
	failTx bool

	sent         []sentTx
	estimates    int
	receiptPolls int
	headPolls    int
}

func newFakeNode(netVersion string, accounts ...common.Address) *fakeNode {
	return &fakeNode{
		netVersion: netVersion,
		chainID:    big.NewInt(1337),
		accounts:   accounts,
		nonces:     make(map[common.Address]uint64),
		receipts:   make(map[common.Hash]*types.Receipt),
		pending:    make(map[common.Hash]int),
	}
}

// dial serves the node in-process and returns a client for it.
func (n *fakeNode) dial(t *testing.T) *rpc.Client {
	t.Helper()
	server := rpc.NewServer()
	if err := server.RegisterName("eth", &fakeEthAPI{n}); err != nil {
		t.Fatalf("Failed to register eth service: %v", err)
	}
	if err := server.RegisterName("net", &fakeNetAPI{n}); err != nil {
		t.Fatalf("Failed to register net service: %v", err)
	}
	client := rpc.DialInProc(server)
	t.Cleanup(func() {
		client.Close()
		server.Stop()
	})
	return client
}

// mine records tx and stores its receipt. Callers hold n.mu.
func (n *fakeNode) mine(tx sentTx, nonce uint64) {
	n.head++
	n.sent = append(n.sent, tx)

	receipt := &types.Receipt{
		Type:              types.LegacyTxType,
		Status:            types.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21_000,
		GasUsed:           21_000,
		Logs:              []*types.Log{},
		TxHash:            tx.Hash,
		BlockNumber:       new(big.Int).SetUint64(n.head),
	}
	if n.failTx {
		receipt.Status = types.ReceiptStatusFailed
	}
	if tx.To == nil {
		receipt.ContractAddress = crypto.CreateAddress(tx.From, nonce)
	}
	n.receipts[tx.Hash] = receipt
	if n.receiptDelay > 0 {
		n.pending[tx.Hash] = n.receiptDelay
	}
}

func (n *fakeNode) sentTxs() []sentTx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentTx(nil), n.sent...)
}

type fakeNetAPI struct {
	n *fakeNode
}

func (api *fakeNetAPI) Version() string {
	return api.n.netVersion
}

type fakeEthAPI struct {
	n *fakeNode
}

func (api *fakeEthAPI) Accounts() []common.Address {
	return api.n.accounts
}

func (api *fakeEthAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(api.n.chainID)
}

func (api *fakeEthAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1_000_000_000))
}

func (api *fakeEthAPI) BlockNumber() hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.headPolls++
	api.n.head++
	return hexutil.Uint64(api.n.head)
}

func (api *fakeEthAPI) EstimateGas(args map[string]interface{}, block *json.RawMessage) hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.estimates++
	return hexutil.Uint64(testEstimate)
}

func (api *fakeEthAPI) GetTransactionCount(addr common.Address, block string) hexutil.Uint64 {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	return hexutil.Uint64(api.n.nonces[addr])
}

func (api *fakeEthAPI) SendTransaction(args sendTxArgs) (common.Hash, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()

	known := false
	for _, a := range api.n.accounts {
		if a == args.From {
			known = true
		}
	}
	if !known {
		return common.Hash{}, errors.New("unknown account")
	}

	nonce := api.n.nonces[args.From]
	api.n.nonces[args.From]++
	tx := sentTx{
		Hash: crypto.Keccak256Hash(args.From.Bytes(), new(big.Int).SetUint64(nonce).Bytes()),
		From: args.From,
		To:   args.To,
		Data: args.Data,
	}
	if args.Gas != nil {
		tx.Gas = uint64(*args.Gas)
	}
	api.n.mine(tx, nonce)
	return tx.Hash, nil
}

func (api *fakeEthAPI) SendRawTransaction(input hexutil.Bytes) (common.Hash, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()

	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(input); err != nil {
		return common.Hash{}, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(api.n.chainID), tx)
	if err != nil {
		return common.Hash{}, err
	}
	if tx.Nonce() != api.n.nonces[from] {
		return common.Hash{}, errors.New("nonce too low")
	}
	api.n.nonces[from]++
	api.n.mine(sentTx{
		Hash: tx.Hash(),
		From: from,
		To:   tx.To(),
		Gas:  tx.Gas(),
		Data: tx.Data(),
		Raw:  true,
	}, tx.Nonce())
	return tx.Hash(), nil
}

func (api *fakeEthAPI) GetTransactionReceipt(hash common.Hash) *types.Receipt {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()
	api.n.receiptPolls++
	if left := api.n.pending[hash]; left > 0 {
		api.n.pending[hash] = left - 1
		return nil
	}
	return api.n.receipts[hash]
}

// testConfig polls fast and uses the fixed gas limits.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.PollInterval = time.Millisecond
	return cfg
}

// fakeSymbolizer resolves every program counter in its table.
type fakeSymbolizer map[uint64]Symbol

func (f fakeSymbolizer) Lookup(pc uint64) (Symbol, bool) {
	s, ok := f[pc]
	return s, ok
}

var (
	testAccount = common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	testClock   = func() time.Time { return time.UnixMilli(1700000000000) }
	testSymbols = fakeSymbolizer{
		0x401000: {Name: "_Z3foov", File: "/src/cow.cc", Line: 12},
	}
)

// newTestSession connects a Session to n.
func newTestSession(t *testing.T, n *fakeNode, cfg *Config, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{
		WithProgramName("cowtest"),
		WithClock(testClock),
		WithSymbolizer(testSymbols),
	}, opts...)
	s, err := New(n.dial(t), cfg, opts...)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return s
}
