// CLAUDE:SUMMARY serve command: loads the library, serves HTTP (+ HTTP/3 and MCP), hot-reloads on SIGHUP or file changes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/pacm-search/pkg/api"
	"github.com/hazyhaar/pacm-search/pkg/chassis"
	"github.com/hazyhaar/pacm-search/pkg/importer"
	"github.com/hazyhaar/pacm-search/pkg/library"
)

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string `short:"a" help:"Listen address, overrides addr"`
	Watch bool   `help:"Reload when the data directory changes"`
	HTTP3 bool   `name:"http3" help:"Also serve HTTP/3 and MCP over QUIC"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg, logger := deps.Config, deps.Logger
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	cfg.Watch = cfg.Watch || c.Watch
	cfg.HTTP3 = cfg.HTTP3 || c.HTTP3

	search, err := cfg.SearchOptions()
	if err != nil {
		return err
	}
	lib, err := deps.openLibrary()
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	ctx, cancel := context.WithCancel(deps.Ctx)
	defer cancel()

	mcpSrv := api.NewMCPServer("pacm", version, lib, search, logger)
	router := api.NewRouter(api.Config{
		Library:   lib,
		Search:    search,
		Logger:    logger,
		RateLimit: cfg.RateLimit.RPS,
		Burst:     cfg.RateLimit.Burst,
		MCP:       mcpSrv,

		ReloadToken: cfg.ReloadToken,
	})

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.TLS.CertFile,
		KeyFile:   cfg.TLS.KeyFile,
		DevTLS:    cfg.TLS.Dev,
		HTTP3:     cfg.HTTP3,
		Handler:   router,
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	go reloadOnSIGHUP(ctx, lib, deps)
	if cfg.Watch {
		go func() {
			if err := lib.Watch(ctx, cfg.WatchDebounce); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}
	if cfg.CheckInterval > 0 {
		sdb, err := openSources(cfg)
		if err != nil {
			return err
		}
		defer sdb.Close()
		importer.SetRateLimit(cfg.ImportRate)
		go importer.NewChecker(sdb, logger, cfg.CheckInterval).Start(ctx)
	}

	err = srv.Start(ctx)
	logger.Info("shutting down")
	stopCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if serr := srv.Stop(stopCtx); serr != nil {
		logger.Warn("shutdown", "error", serr)
	}
	return err
}

func reloadOnSIGHUP(ctx context.Context, lib *library.Library, deps *Dependencies) {
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	for {
		select {
		case <-ctx.Done():
			return
		case <-sighup:
			deps.Logger.Info("SIGHUP received, reloading library")
			if err := lib.Reload(ctx); err != nil {
				deps.Logger.Error("reload failed", "error", err)
			}
		}
	}
}
