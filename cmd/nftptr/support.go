package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli"

	"github.com/branched-services/go-nftptr"
)

// setupLogging installs a terminal handler at the geth style verbosity,
// coloured when w is a terminal.
func setupLogging(w io.Writer, verbosity int) {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	}
	handler := log.NewTerminalHandlerWithLevel(w, log.FromLegacyLevel(verbosity), useColor)
	log.SetDefault(log.NewLogger(handler))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func getMetadata(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

// openSession dials the node, initializes the session and starts the
// metrics listener if one was requested.
func openSession(ctx context.Context, m *metadata) (*nftptr.Session, error) {
	s, err := nftptr.Dial(ctx, m.config, nftptr.WithMetrics(nftptr.NewMetrics(m.registry)))
	if err != nil {
		return nil, err
	}
	if err := s.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if m.metrics != "" {
		go serveMetrics(m)
	}
	return s, nil
}

func serveMetrics(m *metadata) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	log.Info("Serving metrics", "addr", m.metrics)
	if err := http.ListenAndServe(m.metrics, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("Metrics server stopped", "err", err)
	}
}

// openInput opens the named file, "-" being standard input.
func openInput(c *cli.Context) (io.ReadCloser, error) {
	name := c.Args().First()
	switch name {
	case "":
		return nil, fmt.Errorf("missing events file")
	case "-":
		return io.NopCloser(os.Stdin), nil
	default:
		return os.Open(name)
	}
}

func printJson(handle io.Writer, message interface{}) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
