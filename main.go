// Package main is a relay for a signed-event publish/subscribe protocol with
// a sequence-ordered change feed. Configuration is via environment variables
// or an optional .env file.
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"seqrelay.dev/app/config"
	"seqrelay.dev/database"
	"seqrelay.dev/server"
	"seqrelay.dev/socketapi"
	"seqrelay.dev/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		os.Exit(0)
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(0)
	}
	if level, lerr := log.ParseLevel(cfg.LogLevel); lerr == nil {
		log.SetLevel(level)
	}
	log.Infof("starting %s %s", cfg.AppName, version.V)
	if cfg.Pprof {
		defer profile.Start(profile.MemProfile).Stop()
		go func() {
			if err := http.ListenAndServe("127.0.0.1:6060", nil); err != nil {
				log.WithError(err).Warn("pprof listener failed")
			}
		}()
	}
	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer cancel()
	storage, err := database.New(ctx, cancel, cfg.DbPath)
	if err != nil {
		log.WithError(err).Error("failed to open event store")
		os.Exit(1)
	}
	srv := server.NewServer(
		&server.Params{
			Ctx:      ctx,
			Cancel:   cancel,
			Cfg:      cfg,
			Store:    storage,
			MaxLimit: cfg.MaxLimit,
		},
	)
	socketapi.New(srv, "/", srv.Mux())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port))
	})
	g.Go(func() error {
		<-gctx.Done()
		srv.Shutdown()
		return nil
	})
	if err = g.Wait(); err != nil {
		log.WithError(err).Error("relay terminated")
		os.Exit(1)
	}
}
