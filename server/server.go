// Package server exposes an nftptr session over HTTP so that a tracer in
// another process can post ownership events.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/branched-services/go-nftptr/event"
)

const (
	readTimeout     = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server routes HTTP requests to a Dispatcher.
type Server struct {
	d      *event.Dispatcher
	router *mux.Router
	log    log.Logger
}

// New builds the router. A nil gatherer leaves /metrics out.
func New(d *event.Dispatcher, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	if logger == nil {
		logger = log.New("module", "server")
	}
	s := &Server{d: d, router: mux.NewRouter(), log: logger}

	r := s.router
	r.HandleFunc("/account", s.accountHandler).Methods("GET")              // signing account
	r.HandleFunc("/instances", s.registerHandler).Methods("POST")          // deploy an owner contract
	r.HandleFunc("/instances/{id}", s.instanceHandler).Methods("GET")      // registered owner contract
	r.HandleFunc("/instances/{id}", s.unregisterHandler).Methods("DELETE") // forget an owner contract
	r.HandleFunc("/transfers", s.transferHandler).Methods("POST")          // mint or move a token
	r.HandleFunc("/events", s.eventHandler).Methods("POST")                // any allocator event
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done. Writes have no deadline
// since a deployment waits for its confirmations.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:     s,
		Addr:        addr,
		ReadTimeout: readTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("Listening for events", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
