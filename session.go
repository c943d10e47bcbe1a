package nftptr

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// MainnetID is the network id Initialize refuses to run on.
const MainnetID = "1"

// Session is the process-wide state: node connection, signing account,
// token contract and instance registry. It is not safe for concurrent use.
type Session struct {
	cfg     *Config
	rpc     *rpc.Client
	backend Backend
	key     *ecdsa.PrivateKey
	signer  Signer

	networkID uint64
	explorer  *Explorer
	token     *Contract
	owners    *Registry

	artifacts *Artifacts
	symbols   Symbolizer
	metrics   *Metrics
	log       log.Logger
	program   string
	now       func() time.Time
}

// Dial selects a transport from cfg, connects and returns a new Session.
func Dial(ctx context.Context, cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	transport := SelectTransport(cfg)
	client, err := transport.Dial(ctx)
	if err != nil {
		return nil, err
	}
	s, err := New(client, cfg, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	s.log.Debug("Dialed node", "transport", transport)
	return s, nil
}

// New creates a Session over an open RPC client. It loads the keystore and
// contract artifacts but makes no RPC calls.
func New(client *rpc.Client, cfg *Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Session{
		cfg:     cfg,
		rpc:     client,
		backend: ethclient.NewClient(client),
		owners:  NewRegistry(),
		symbols: RuntimeSymbolizer{},
		log:     log.New("module", "nftptr"),
		program: filepath.Base(os.Args[0]),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.artifacts == nil {
		var err error
		if cfg.ArtifactsDir != "" {
			s.artifacts, err = LoadArtifactsDir(cfg.ArtifactsDir)
		} else {
			s.artifacts, err = DefaultArtifacts()
		}
		if err != nil {
			return nil, err
		}
	}

	if cfg.KeystorePath != "" {
		key, err := LoadKey(cfg.KeystorePath, cfg.Password)
		if err != nil {
			return nil, err
		}
		s.key = key
	}

	return s, nil
}

// Initialize refuses mainnet, resolves the signing account and deploys the
// token contract. Nothing is deployed when the network check fails.
func (s *Session) Initialize(ctx context.Context) error {
	if s.token != nil {
		return ErrAlreadyInitialized
	}
	if err := s.checkNetwork(ctx); err != nil {
		return err
	}

	signer, err := s.newSigner(ctx)
	if err != nil {
		return err
	}
	s.signer = signer
	s.log.Info("Resolved account", "account", signer.Account())
	if s.explorer != nil {
		s.log.Info("Account on explorer", "url", s.explorer.AddressURL(signer.Account()))
	}

	s.log.Info("Deploying token contract")
	name := s.tokenName()
	token, err := s.deploy(ctx, s.artifacts.Token, name, TokenDeployGas, name, TokenSymbol, TokenBaseURI)
	if err != nil {
		s.signer = nil
		s.metrics.failed("initialize")
		return err
	}
	s.token = token
	s.metrics.deployed("token")

	s.log.Info("Token contract deployed", "name", name, "address", token.Address(), "tx", token.TxHash())
	if s.explorer != nil {
		s.log.Info("Token on explorer", "url", s.explorer.TokenURL(token.Address()))
	}
	return nil
}

// checkNetwork reads net_version and fails on mainnet.
func (s *Session) checkNetwork(ctx context.Context) error {
	var version string
	if err := s.rpc.CallContext(ctx, &version, "net_version"); err != nil {
		return fmt.Errorf("nftptr: net_version: %w", err)
	}
	s.log.Info("Connected to network", "id", version)
	if version == MainnetID {
		return ErrMainnet
	}
	id, err := strconv.ParseUint(version, 10, 64)
	if err != nil {
		return fmt.Errorf("nftptr: network id %q: %w", version, err)
	}
	s.networkID = id
	s.explorer = ExplorerFor(id)
	return nil
}

// newSigner picks the local key when one was loaded, the node otherwise.
func (s *Session) newSigner(ctx context.Context) (Signer, error) {
	if s.key != nil {
		return NewKeySigner(ctx, s.backend, s.key)
	}
	return NewNodeSigner(ctx, s.rpc)
}

// RegisterInstance deploys an owner contract for id and records it,
// replacing any contract previously registered under id.
func (s *Session) RegisterInstance(ctx context.Context, id, pc uint64, typeName string) (*Contract, error) {
	if s.token == nil {
		return nil, ErrNotInitialized
	}

	name := fmt.Sprintf("%x %s %s", id, Demangle(typeName), SourceLocation(s.symbols, pc))
	s.log.Info("Deploying owner contract", "name", name)
	c, err := s.deploy(ctx, s.artifacts.Owner, name, OwnerDeployGas, name)
	if err != nil {
		s.metrics.failed("register")
		return nil, err
	}
	s.metrics.deployed("owner")

	s.owners.Register(id, c)
	s.metrics.instances(s.owners.Len())

	s.log.Info("Owner contract deployed", "name", name, "address", c.Address(), "tx", c.TxHash())
	if s.explorer != nil {
		s.log.Info("Owner on explorer", "url", s.explorer.TokenURL(c.Address()))
	}
	return c, nil
}

// UnregisterInstance forgets the owner contract of id. The contract is not
// destroyed, so it can still be inspected on chain.
func (s *Session) UnregisterInstance(id uint64) {
	s.owners.Unregister(id)
	s.metrics.instances(s.owners.Len())
	s.log.Debug("Unregistered owner", "id", strconv.FormatUint(id, 16))
}

// OwnerAddress returns the owner contract address of id, or the session
// account when id has no owner contract.
func (s *Session) OwnerAddress(id uint64) common.Address {
	return s.owners.Resolve(id, s.Account())
}

// Instance returns the owner contract registered for id.
func (s *Session) Instance(id uint64) (*Contract, bool) {
	return s.owners.Lookup(id)
}

// Account returns the signing account, zero before Initialize.
func (s *Session) Account() common.Address {
	if s.signer == nil {
		return common.Address{}
	}
	return s.signer.Account()
}

// Token returns the token contract, nil before Initialize.
func (s *Session) Token() *Contract {
	return s.token
}

// NetworkID returns the network id read by Initialize.
func (s *Session) NetworkID() uint64 {
	return s.networkID
}

// Close closes the RPC client.
func (s *Session) Close() {
	s.rpc.Close()
}
