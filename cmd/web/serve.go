// cmd/web/serve.go
//
// HTTP server.
//
// Request life-cycle
// ------------------
//
//  1. chi middleware: request id, real IP, panic recovery.
//
//  2. requestinfo.Enrich attaches UA, GeoIP, and language to the context.
//
//  3. Security headers, then the optional HTTPS redirect.
//
//  4. /metrics serves Prometheus; every other path goes to the component
//     routers mounted at “/”.
//
// SIGHUP re-reads the configuration.  Only http.force_https is read live;
// listener, database, and session settings need a restart.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/cadastro/internal/component"
	"github.com/yanizio/cadastro/internal/config"
	"github.com/yanizio/cadastro/internal/middleware"
	"github.com/yanizio/cadastro/internal/requestinfo"
	"github.com/yanizio/cadastro/internal/server"
	"github.com/yanizio/cadastro/internal/view"
)

func serve(ctx context.Context) error {
	cfg, err := boot(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	closeGeo, err := requestinfo.InitGeo(cfg.RequestInfo.GeoIPDB)
	if err != nil {
		return err
	}
	defer closeGeo()

	view.SetOverrideRoot(cfg.Paths.Root)

	comps := component.All()
	env := component.Resources{DB: db, Config: cfg}
	for _, c := range comps {
		if err := c.Init(env); err != nil {
			return fmt.Errorf("init %s: %w", c.Name(), err)
		}
		if cl, ok := c.(io.Closer); ok {
			defer cl.Close()
		}
	}

	srv := server.New(cfg.HTTP.ListenAddr, router(cfg, comps), server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})
	go reloadOnHangup(ctx)

	zap.S().Infow("cadastro starting", "addr", cfg.HTTP.ListenAddr, "components", len(comps))
	return server.Run(ctx, srv)
}

// reloadOnHangup calls config.Reload for every SIGHUP until ctx ends.
func reloadOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := config.Reload(ctx); err != nil {
				zap.S().Errorw("config reload failed, keeping previous", "err", err)
				continue
			}
			zap.S().Infow("config reloaded", "force_https", config.Get().HTTP.ForceHTTPS)
		}
	}
}

// forceHTTPS reads the flag from the live config, falling back to cfg.
func forceHTTPS(cfg *config.Config) func() bool {
	return func() bool {
		if c := config.Get(); c != nil {
			return c.HTTP.ForceHTTPS
		}
		return cfg.HTTP.ForceHTTPS
	}
}

// router builds the root handler.  Component routers share “/”, so at most
// one component may serve the root page.
func router(cfg *config.Config, comps []component.Component) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(requestinfo.Enrich)
	r.Use(middleware.Security)
	r.Use(middleware.ForceHTTPS(forceHTTPS(cfg)))

	r.Handle("/metrics", promhttp.Handler())
	for _, c := range comps {
		r.Mount("/", c.Routes())
	}
	return r
}
