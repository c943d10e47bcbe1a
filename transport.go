package nftptr

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

// TransportKind selects how a Session reaches its node.
type TransportKind uint8

const (
	// TransportHTTP talks JSON-RPC over HTTP.
	TransportHTTP TransportKind = iota

	// TransportIPC talks JSON-RPC over a local socket or named pipe.
	TransportIPC
)

// String returns the transport name.
func (k TransportKind) String() string {
	switch k {
	case TransportIPC:
		return "ipc"
	default:
		return "http"
	}
}

// Transport is a resolved node endpoint.
type Transport struct {
	Kind     TransportKind
	Endpoint string
}

// SelectTransport picks the IPC path if set, then the HTTP URL, then DefaultHTTPURL.
func SelectTransport(cfg *Config) Transport {
	switch {
	case cfg.IPCPath != "":
		return Transport{Kind: TransportIPC, Endpoint: cfg.IPCPath}
	case cfg.HTTPURL != "":
		return Transport{Kind: TransportHTTP, Endpoint: cfg.HTTPURL}
	default:
		return Transport{Kind: TransportHTTP, Endpoint: DefaultHTTPURL}
	}
}

// Dial opens an RPC client over the transport.
func (t Transport) Dial(ctx context.Context) (*rpc.Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	switch t.Kind {
	case TransportIPC:
		client, err = rpc.DialIPC(ctx, t.Endpoint)
	default:
		client, err = rpc.DialHTTP(t.Endpoint)
	}
	if err != nil {
		return nil, fmt.Errorf("nftptr: dial %s %s: %w", t.Kind, t.Endpoint, err)
	}
	return client, nil
}

// String returns kind and endpoint, for logging.
func (t Transport) String() string {
	return t.Kind.String() + ":" + t.Endpoint
}
