package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xhad/sitekb/server"
)

const shutdownTimeout = 10 * time.Second

// Run executes the serve command.
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.Store != "" {
		cfg.Store.Path = c.Store
	}
	if err := checkConfig(deps.Stderr, cfg.ValidateForServe()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := loadStore(ctx, deps, c.FromDB)
	r, err := newRetriever(deps, s, true)
	if err != nil {
		return err
	}

	srv := server.New(r, server.Config{Addr: cfg.Server.Addr}, deps.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	deps.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
