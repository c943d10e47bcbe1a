package nftptr

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvIPC              = "NFT_PTR_IPC"
	EnvHTTP             = "NFT_PTR_HTTP"
	EnvConfirmations    = "NFT_PTR_NUM_CONFIRMATIONS"
	EnvKeystore         = "NFT_PTR_KEYSTORE"
	EnvPassword         = "NFT_PTR_PASSWORD"
	EnvNoHardcodedGas   = "NFT_PTR_NO_HARDCODED_GAS"
	EnvArtifacts        = "NFT_PTR_ARTIFACTS"
	EnvPollInterval     = "NFT_PTR_POLL_INTERVAL"
	DefaultHTTPURL      = "http://127.0.0.1:7545"
	DefaultPollInterval = time.Second
)

// Config holds the node connection and transaction settings of a Session.
type Config struct {
	// IPCPath selects the IPC transport when set. It wins over HTTPURL.
	IPCPath string

	// HTTPURL selects the HTTP transport when set. Empty means DefaultHTTPURL.
	HTTPURL string

	// Confirmations is the number of blocks to wait for on top of the block
	// that includes a transaction. Zero returns as soon as it is mined.
	Confirmations uint64

	// KeystorePath and Password enable local signing.
	KeystorePath string
	Password     string

	// HardcodedGas sends fixed gas limits instead of asking the node to estimate.
	HardcodedGas bool

	// ArtifactsDir replaces the embedded contract artifacts.
	ArtifactsDir string

	// PollInterval is the delay between receipt and block number polls.
	PollInterval time.Duration
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() *Config {
	return &Config{
		HardcodedGas: true,
		PollInterval: DefaultPollInterval,
	}
}

// ConfigFromEnv reads the NFT_PTR_* environment variables over DefaultConfig.
func ConfigFromEnv() (*Config, error) {
	return ConfigFromLookup(os.LookupEnv)
}

// ConfigFromLookup is ConfigFromEnv over any source of NFT_PTR_* values.
func ConfigFromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := DefaultConfig()

	if v, ok := lookup(EnvIPC); ok {
		cfg.IPCPath = v
	}
	if v, ok := lookup(EnvHTTP); ok {
		cfg.HTTPURL = v
	}
	if v, ok := lookup(EnvConfirmations); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, &ConfigError{Key: EnvConfirmations, Value: v, Err: err}
		}
		cfg.Confirmations = n
	}
	if v, ok := lookup(EnvKeystore); ok {
		cfg.KeystorePath = v
		pw, ok := lookup(EnvPassword)
		if !ok {
			return nil, ErrMissingPassword
		}
		cfg.Password = pw
	}
	// Presence alone disables the fixed gas limits, whatever the value.
	if _, ok := lookup(EnvNoHardcodedGas); ok {
		cfg.HardcodedGas = false
	}
	if v, ok := lookup(EnvArtifacts); ok {
		cfg.ArtifactsDir = v
	}
	if v, ok := lookup(EnvPollInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, &ConfigError{Key: EnvPollInterval, Value: v, Err: err}
		}
		cfg.PollInterval = d
	}

	return cfg, nil
}

// pollInterval returns the configured poll interval or the default.
func (c *Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}
