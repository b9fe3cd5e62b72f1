// Command httpd serves the echo, user-agent and /files routes over HTTP/1.1.
//
//	httpd --directory /tmp/files --addr 127.0.0.1:4221
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frankli0324/go-httpd/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := parseConfig(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "httpd:", err)
		os.Exit(2)
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "httpd:", err)
		os.Exit(2)
	}

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("directory", cfg.directory).Msg("httpd: bad serving directory")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = srv.ListenAndServe(ctx)
	if !errors.Is(err, server.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("httpd: server stopped")
	}

	logger.Info().Msg("httpd: shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("httpd: connections still open after shutdown timeout")
	}
}
