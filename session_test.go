package nftptr

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func initializedSession(t *testing.T, n *fakeNode, cfg *Config, opts ...Option) *Session {
	t.Helper()
	s := newTestSession(t, n, cfg, opts...)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return s
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses mainnet without deploying", func(t *testing.T) {
		n := newFakeNode("1", testAccount)
		s := newTestSession(t, n, testConfig())

		err := s.Initialize(ctx)
		if !errors.Is(err, ErrMainnet) {
			t.Fatalf("Expected ErrMainnet, got %v", err)
		}
		if len(n.sentTxs()) != 0 {
			t.Errorf("Expected no transactions, got %d", len(n.sentTxs()))
		}
		if s.Token() != nil {
			t.Error("Expected no token contract")
		}
		if s.Account() != (common.Address{}) {
			t.Errorf("Expected zero account, got %s", s.Account().Hex())
		}
	})

	t.Run("rejects non-numeric network id", func(t *testing.T) {
		n := newFakeNode("devnet", testAccount)
		s := newTestSession(t, n, testConfig())

		err := s.Initialize(ctx)
		if err == nil || errors.Is(err, ErrMainnet) {
			t.Fatalf("Expected network id error, got %v", err)
		}
		if len(n.sentTxs()) != 0 {
			t.Errorf("Expected no transactions, got %d", len(n.sentTxs()))
		}
	})

	t.Run("fails when the node has no accounts", func(t *testing.T) {
		n := newFakeNode("5")
		s := newTestSession(t, n, testConfig())

		if err := s.Initialize(ctx); !errors.Is(err, ErrNoAccounts) {
			t.Fatalf("Expected ErrNoAccounts, got %v", err)
		}
	})

	t.Run("deploys the token with the node account", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig())

		if s.Account() != testAccount {
			t.Errorf("Expected account %s, got %s", testAccount.Hex(), s.Account().Hex())
		}
		if s.NetworkID() != 5 {
			t.Errorf("Expected network id 5, got %d", s.NetworkID())
		}

		want := crypto.CreateAddress(testAccount, 0)
		if s.Token().Address() != want {
			t.Errorf("Expected token at %s, got %s", want.Hex(), s.Token().Address().Hex())
		}
		if s.Token().Name() != "NftPtrToken cowtest 1700000000000" {
			t.Errorf("Unexpected token name %q", s.Token().Name())
		}

		sent := n.sentTxs()
		if len(sent) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(sent))
		}
		if sent[0].To != nil {
			t.Error("Expected a contract creation")
		}
		if sent[0].Raw {
			t.Error("Expected node signing")
		}
		if sent[0].Gas != TokenDeployGas {
			t.Errorf("Expected gas %d, got %d", TokenDeployGas, sent[0].Gas)
		}
		if s.Token().TxHash() != sent[0].Hash {
			t.Errorf("Expected tx hash %s, got %s", sent[0].Hash.Hex(), s.Token().TxHash().Hex())
		}

		art := s.artifacts.Token
		if !bytes.HasPrefix(sent[0].Data, art.Bytecode) {
			t.Fatal("Expected creation data to start with the token bytecode")
		}
		args, err := art.ABI.Constructor.Inputs.Unpack(sent[0].Data[len(art.Bytecode):])
		if err != nil {
			t.Fatalf("Failed to unpack constructor args: %v", err)
		}
		expected := []string{"NftPtrToken cowtest 1700000000000", TokenSymbol, TokenBaseURI}
		for i, want := range expected {
			if args[i].(string) != want {
				t.Errorf("Expected constructor arg %d to be %q, got %q", i, want, args[i])
			}
		}
	})

	t.Run("second call fails", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig())

		if err := s.Initialize(ctx); !errors.Is(err, ErrAlreadyInitialized) {
			t.Fatalf("Expected ErrAlreadyInitialized, got %v", err)
		}
		if len(n.sentTxs()) != 1 {
			t.Errorf("Expected 1 transaction, got %d", len(n.sentTxs()))
		}
	})

	t.Run("reverted deployment", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		n.failTx = true
		s := newTestSession(t, n, testConfig())

		err := s.Initialize(ctx)
		var deployErr *DeployError
		if !errors.As(err, &deployErr) {
			t.Fatalf("Expected DeployError, got %v", err)
		}
		if deployErr.Contract != TokenArtifact {
			t.Errorf("Expected contract %q, got %q", TokenArtifact, deployErr.Contract)
		}
		var txErr *TransactionError
		if !errors.As(err, &txErr) {
			t.Fatalf("Expected TransactionError in chain, got %v", err)
		}
		if txErr.Status != 0 {
			t.Errorf("Expected status 0, got %d", txErr.Status)
		}
		if s.Token() != nil {
			t.Error("Expected no token contract")
		}
		if s.Account() != (common.Address{}) {
			t.Errorf("Expected no account, got %s", s.Account().Hex())
		}
		if _, err := s.RegisterInstance(ctx, 1, 0, "i"); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Expected ErrNotInitialized, got %v", err)
		}
	})
}

func TestInitializeKeySigner(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	acc, err := ks.ImportECDSA(key, "hunter2")
	if err != nil {
		t.Fatalf("Failed to import key: %v", err)
	}
	account := crypto.PubkeyToAddress(key.PublicKey)

	t.Run("signs locally with the keystore account", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		cfg := testConfig()
		cfg.KeystorePath = acc.URL.Path
		cfg.Password = "hunter2"
		s := initializedSession(t, n, cfg)

		if s.Account() != account {
			t.Errorf("Expected account %s, got %s", account.Hex(), s.Account().Hex())
		}
		sent := n.sentTxs()
		if len(sent) != 1 {
			t.Fatalf("Expected 1 transaction, got %d", len(sent))
		}
		if !sent[0].Raw {
			t.Error("Expected a raw transaction")
		}
		if sent[0].From != account {
			t.Errorf("Expected sender %s, got %s", account.Hex(), sent[0].From.Hex())
		}
		if sent[0].Gas != TokenDeployGas {
			t.Errorf("Expected gas %d, got %d", TokenDeployGas, sent[0].Gas)
		}
		if s.Token().Address() != crypto.CreateAddress(account, 0) {
			t.Errorf("Unexpected token address %s", s.Token().Address().Hex())
		}
	})

	t.Run("estimates gas when fixed limits are off", func(t *testing.T) {
		n := newFakeNode("5")
		cfg := testConfig()
		cfg.KeystorePath = acc.URL.Path
		cfg.Password = "hunter2"
		cfg.HardcodedGas = false
		initializedSession(t, n, cfg)

		sent := n.sentTxs()
		if sent[0].Gas != testEstimate {
			t.Errorf("Expected estimated gas %d, got %d", testEstimate, sent[0].Gas)
		}
		if n.estimates != 1 {
			t.Errorf("Expected 1 estimate, got %d", n.estimates)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		cfg := testConfig()
		cfg.KeystorePath = acc.URL.Path
		cfg.Password = "wrong"
		_, err := New(newFakeNode("5").dial(t), cfg)

		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
		if cfgErr.Key != EnvKeystore {
			t.Errorf("Expected key %s, got %s", EnvKeystore, cfgErr.Key)
		}
	})

	t.Run("missing keystore file", func(t *testing.T) {
		cfg := testConfig()
		cfg.KeystorePath = filepath.Join(t.TempDir(), "missing.json")
		cfg.Password = "hunter2"
		_, err := New(newFakeNode("5").dial(t), cfg)

		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected ConfigError, got %v", err)
		}
	})
}

func TestNodeSignerLeavesGasToNode(t *testing.T) {
	n := newFakeNode("5", testAccount)
	cfg := testConfig()
	cfg.HardcodedGas = false
	initializedSession(t, n, cfg)

	if gas := n.sentTxs()[0].Gas; gas != 0 {
		t.Errorf("Expected no gas limit, got %d", gas)
	}
}

func TestConfirmations(t *testing.T) {
	t.Run("waits for blocks on top of the receipt", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		cfg := testConfig()
		cfg.Confirmations = 2
		initializedSession(t, n, cfg)

		if n.headPolls < 2 {
			t.Errorf("Expected at least 2 block number polls, got %d", n.headPolls)
		}
	})

	t.Run("zero confirmations skips block polling", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		initializedSession(t, n, testConfig())

		if n.headPolls != 0 {
			t.Errorf("Expected no block number polls, got %d", n.headPolls)
		}
	})

	t.Run("polls until the receipt appears", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		n.receiptDelay = 3
		initializedSession(t, n, testConfig())

		if n.receiptPolls != 4 {
			t.Errorf("Expected 4 receipt polls, got %d", n.receiptPolls)
		}
	})

	t.Run("context cancellation stops the wait", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		n.receiptDelay = 1 << 30
		s := newTestSession(t, n, testConfig())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := s.Initialize(ctx); err == nil {
			t.Fatal("Expected an error from a cancelled context")
		}
	})
}

func TestRegisterInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("requires Initialize", func(t *testing.T) {
		s := newTestSession(t, newFakeNode("5", testAccount), testConfig())
		if _, err := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow"); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("Expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("deploys a named owner contract", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig())

		c, err := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow")
		if err != nil {
			t.Fatalf("RegisterInstance failed: %v", err)
		}
		if c.Name() != "2a Cow foo() (cow.cc:12)" {
			t.Errorf("Unexpected owner name %q", c.Name())
		}
		if c.Address() != crypto.CreateAddress(testAccount, 1) {
			t.Errorf("Unexpected owner address %s", c.Address().Hex())
		}

		sent := n.sentTxs()
		if sent[1].Gas != OwnerDeployGas {
			t.Errorf("Expected gas %d, got %d", OwnerDeployGas, sent[1].Gas)
		}
		art := s.artifacts.Owner
		args, err := art.ABI.Constructor.Inputs.Unpack(sent[1].Data[len(art.Bytecode):])
		if err != nil {
			t.Fatalf("Failed to unpack constructor args: %v", err)
		}
		if args[0].(string) != c.Name() {
			t.Errorf("Expected constructor name %q, got %q", c.Name(), args[0])
		}

		got, ok := s.Instance(0x2a)
		if !ok || got != c {
			t.Error("Expected the contract to be registered")
		}
		if s.OwnerAddress(0x2a) != c.Address() {
			t.Errorf("Expected owner %s, got %s", c.Address().Hex(), s.OwnerAddress(0x2a).Hex())
		}
	})

	t.Run("unknown program counter falls back to hex", func(t *testing.T) {
		s := initializedSession(t, newFakeNode("5", testAccount), testConfig())

		c, err := s.RegisterInstance(ctx, 0x10, 0xbeef, "i")
		if err != nil {
			t.Fatalf("RegisterInstance failed: %v", err)
		}
		if c.Name() != "10 int beef" {
			t.Errorf("Unexpected owner name %q", c.Name())
		}
	})

	t.Run("re-registering overwrites", func(t *testing.T) {
		s := initializedSession(t, newFakeNode("5", testAccount), testConfig())

		first, _ := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow")
		second, err := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow")
		if err != nil {
			t.Fatalf("RegisterInstance failed: %v", err)
		}
		if first.Address() == second.Address() {
			t.Fatal("Expected two distinct contracts")
		}
		if s.OwnerAddress(0x2a) != second.Address() {
			t.Errorf("Expected the second contract, got %s", s.OwnerAddress(0x2a).Hex())
		}
	})

	t.Run("unregister falls back to the account", func(t *testing.T) {
		s := initializedSession(t, newFakeNode("5", testAccount), testConfig())

		if _, err := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow"); err != nil {
			t.Fatalf("RegisterInstance failed: %v", err)
		}
		s.UnregisterInstance(0x2a)
		s.UnregisterInstance(0x2a)

		if s.OwnerAddress(0x2a) != testAccount {
			t.Errorf("Expected account fallback, got %s", s.OwnerAddress(0x2a).Hex())
		}
		if _, ok := s.Instance(0x2a); ok {
			t.Error("Expected no registered contract")
		}
	})
}

func TestMoveToken(t *testing.T) {
	ctx := context.Background()

	t.Run("requires Initialize", func(t *testing.T) {
		s := newTestSession(t, newFakeNode("5", testAccount), testConfig())
		if _, err := s.MoveToken(ctx, 1, 0, 2, 0, "i"); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("Expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("calls mintOrMove with resolved owners", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig())
		owner, err := s.RegisterInstance(ctx, 0x2a, 0x401000, "3Cow")
		if err != nil {
			t.Fatalf("RegisterInstance failed: %v", err)
		}

		hash, err := s.MoveToken(ctx, 0x2a, 0x99, 0x1234, 0x401000, "P3Cow")
		if err != nil {
			t.Fatalf("MoveToken failed: %v", err)
		}

		sent := n.sentTxs()
		tx := sent[len(sent)-1]
		if hash != tx.Hash {
			t.Errorf("Expected hash %s, got %s", tx.Hash.Hex(), hash.Hex())
		}
		if tx.To == nil || *tx.To != s.Token().Address() {
			t.Fatal("Expected a call to the token contract")
		}
		if tx.Gas != MintOrMoveGas {
			t.Errorf("Expected gas %d, got %d", MintOrMoveGas, tx.Gas)
		}

		method := s.Token().ABI().Methods[MintOrMove]
		if !bytes.Equal(tx.Data[:4], method.ID) {
			t.Fatal("Expected the mintOrMove selector")
		}
		args, err := method.Inputs.Unpack(tx.Data[4:])
		if err != nil {
			t.Fatalf("Failed to unpack args: %v", err)
		}
		if args[0].(common.Address) != owner.Address() {
			t.Errorf("Expected owner %s, got %s", owner.Address().Hex(), args[0])
		}
		if args[1].(common.Address) != testAccount {
			t.Errorf("Expected previous owner to fall back to %s, got %s", testAccount.Hex(), args[1])
		}
		if args[2].(*big.Int).Cmp(big.NewInt(0x1234)) != 0 {
			t.Errorf("Expected value 0x1234, got %v", args[2])
		}
		if args[3].(string) != "1234%20Cow%2A" {
			t.Errorf("Unexpected token URI %q", args[3])
		}
		if args[4].(string) != "2a foo() (cow.cc:12)" {
			t.Errorf("Unexpected backtrace %q", args[4])
		}
	})

	t.Run("logs explorer links on a test network", func(t *testing.T) {
		var buf bytes.Buffer
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig(), WithLogger(log.NewLogger(log.NewTerminalHandler(&buf, false))))

		hash, err := s.MoveToken(ctx, 1, 0, 0x2a, 0, "i")
		if err != nil {
			t.Fatalf("MoveToken failed: %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "goerli.etherscan.io/tx/"+hash.Hex()) {
			t.Errorf("Expected a transaction link in log, got:\n%s", out)
		}
		if !strings.Contains(out, "testnets.opensea.io/assets/") {
			t.Errorf("Expected an asset link in log, got:\n%s", out)
		}
	})

	t.Run("no explorer links on an unknown network", func(t *testing.T) {
		var buf bytes.Buffer
		n := newFakeNode("1337", testAccount)
		s := initializedSession(t, n, testConfig(), WithLogger(log.NewLogger(log.NewTerminalHandler(&buf, false))))

		if _, err := s.MoveToken(ctx, 1, 0, 0x2a, 0, "i"); err != nil {
			t.Fatalf("MoveToken failed: %v", err)
		}
		if strings.Contains(buf.String(), "etherscan") {
			t.Errorf("Expected no explorer links, got:\n%s", buf.String())
		}
	})

	t.Run("reverted move", func(t *testing.T) {
		n := newFakeNode("5", testAccount)
		s := initializedSession(t, n, testConfig())
		n.mu.Lock()
		n.failTx = true
		n.mu.Unlock()

		_, err := s.MoveToken(ctx, 1, 0, 2, 0, "i")
		var txErr *TransactionError
		if !errors.As(err, &txErr) {
			t.Fatalf("Expected TransactionError, got %v", err)
		}
	})
}

func TestTransferRecord(t *testing.T) {
	s := initializedSession(t, newFakeNode("5", testAccount), testConfig())

	rec := s.TransferRecord(0xff, 0, 0x10, 0xdeadbeef, "NSt3__16vectorIiNS_9allocatorIiEEEE")
	if rec.Owner != testAccount || rec.PreviousOwner != testAccount {
		t.Error("Expected both owners to fall back to the account")
	}
	if rec.Value.Uint64() != 0x10 {
		t.Errorf("Expected value 0x10, got %v", rec.Value)
	}
	if rec.Backtrace != "ff deadbeef" {
		t.Errorf("Unexpected backtrace %q", rec.Backtrace)
	}
	if rec.TokenURI != TokenURI(0x10, "NSt3__16vectorIiNS_9allocatorIiEEEE") {
		t.Errorf("Unexpected token URI %q", rec.TokenURI)
	}
}

func TestSessionMetrics(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	s := initializedSession(t, newFakeNode("5", testAccount), testConfig(), WithMetrics(m))
	if _, err := s.RegisterInstance(ctx, 1, 0, "i"); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}
	if _, err := s.RegisterInstance(ctx, 2, 0, "i"); err != nil {
		t.Fatalf("RegisterInstance failed: %v", err)
	}
	if _, err := s.MoveToken(ctx, 1, 2, 3, 0, "i"); err != nil {
		t.Fatalf("MoveToken failed: %v", err)
	}
	s.UnregisterInstance(1)

	if got := testutil.ToFloat64(m.Deployments.WithLabelValues("token")); got != 1 {
		t.Errorf("Expected 1 token deployment, got %v", got)
	}
	if got := testutil.ToFloat64(m.Deployments.WithLabelValues("owner")); got != 2 {
		t.Errorf("Expected 2 owner deployments, got %v", got)
	}
	if got := testutil.ToFloat64(m.Transactions.WithLabelValues(MintOrMove)); got != 1 {
		t.Errorf("Expected 1 mintOrMove, got %v", got)
	}
	if got := testutil.ToFloat64(m.Instances); got != 1 {
		t.Errorf("Expected 1 registered instance, got %v", got)
	}
}
