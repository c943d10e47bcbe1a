package nftptr

import (
	"time"

	"github.com/ethereum/go-ethereum/log"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for informational output.
// Default is the root logger tagged with module=nftptr.
func WithLogger(logger log.Logger) Option {
	return func(s *Session) {
		s.log = logger
	}
}

// WithSymbolizer replaces the runtime symbolizer used for program counters.
func WithSymbolizer(sym Symbolizer) Option {
	return func(s *Session) {
		s.symbols = sym
	}
}

// WithMetrics records session activity into m.
func WithMetrics(m *Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithArtifacts replaces the embedded contract artifacts.
// It wins over Config.ArtifactsDir.
func WithArtifacts(a *Artifacts) Option {
	return func(s *Session) {
		s.artifacts = a
	}
}

// WithProgramName sets the program name used in the token contract name.
// Default is the base name of os.Args[0].
func WithProgramName(name string) Option {
	return func(s *Session) {
		s.program = name
	}
}

// WithClock sets the time source used in the token contract name.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}
