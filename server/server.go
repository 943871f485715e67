// Package server wires the relay together: the HTTP listener, the event
// store, the publisher, and the ingest pipeline.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"seqrelay.dev/app/config"
	"seqrelay.dev/interfaces/store"
	"seqrelay.dev/publish"
)

// S is the relay server.
type S struct {
	ctx        context.Context
	cancel     context.CancelFunc
	cfg        *config.C
	store      store.I
	publisher  *publish.S
	mux        *chi.Mux
	httpServer *http.Server
	maxLimit   int
	// dispatchMx serializes commit and fan-out so CHANGES_EVENT frames
	// reach every subscriber in ascending seq order.
	dispatchMx sync.Mutex
}

// Params carries everything NewServer needs.
type Params struct {
	Ctx      context.Context
	Cancel   context.CancelFunc
	Cfg      *config.C
	Store    store.I
	MaxLimit int
}

// NewServer creates a relay server. Handlers are mounted on the mux by the
// socket API afterwards.
func NewServer(p *Params) (s *S) {
	s = &S{
		ctx:       p.Ctx,
		cancel:    p.Cancel,
		cfg:       p.Cfg,
		store:     p.Store,
		publisher: publish.NewPublisher(),
		mux:       chi.NewRouter(),
		maxLimit:  p.MaxLimit,
	}
	return
}

// Context returns the root context of the relay process.
func (s *S) Context() context.Context { return s.ctx }

// Storage returns the event store.
func (s *S) Storage() store.I { return s.store }

// Publisher returns the subscription registry and broadcaster.
func (s *S) Publisher() *publish.S { return s.publisher }

// MaxLimit is the cap applied to filter and change-feed limits.
func (s *S) MaxLimit() int { return s.maxLimit }

// Mux returns the router so the socket API can mount itself.
func (s *S) Mux() *chi.Mux { return s.mux }

// Start listens on addr and serves until Shutdown or a listener error.
func (s *S) Start(addr string) (err error) {
	var lis net.Listener
	if lis, err = net.Listen("tcp", addr); err != nil {
		return
	}
	s.httpServer = &http.Server{
		Handler:           cors.Default().Handler(s.mux),
		Addr:              addr,
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err = s.httpServer.Serve(lis); errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return
}

// Shutdown stops the listener and closes the event store.
func (s *S) Shutdown() {
	log.Warn("shutting down relay")
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), 5*time.Second,
		)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("failed to shut down listener")
		}
	}
	if err := s.store.Close(); err != nil {
		log.WithError(err).Warn("failed to close event store")
	}
	s.cancel()
}
