// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command spafallback serves a single-page application from a directory,
// falling back to the SPA's index.html for client-side routes.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"

	"github.com/thediveo/spafallback"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "spafallback: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	log := newLogger(cfg.Verbose)
	if err := loadMIMETypes(log); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	handler := newRouter(cfg, newSPAHandler(cfg, reg, log), reg, log)

	l, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("cannot listen: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("serving SPA", "root", cfg.Root, "address", l.Addr().String())
	return serve(ctx, l, handler, log)
}

// newSPAHandler returns the fallback handler serving the SPA from the
// configured root directory.
func newSPAHandler(cfg *Config, reg prometheus.Registerer, log logr.Logger) *spafallback.FallbackHandler {
	return spafallback.NewFallbackHandler(
		spafallback.NewFSServer(os.DirFS(cfg.Root),
			spafallback.WithMaxAge(cfg.MaxAge),
			spafallback.WithLogger(log.WithName("files")),
			spafallback.WithMetrics(spafallback.NewMetrics(reg))))
}

// newLogger returns a JSON logger writing to stderr.
func newLogger(verbose bool) logr.Logger {
	opts := funcr.Options{LogTimestamp: true}
	if verbose {
		opts.Verbosity = 1
	}
	return funcr.NewJSON(func(obj string) {
		fmt.Fprintln(os.Stderr, obj)
	}, opts)
}

// serve serves HTTP requests on the specified listener until the context gets
// cancelled, then gracefully shuts down.
func serve(ctx context.Context, l net.Listener, handler http.Handler, log logr.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(l)
	}()
	select {
	case err := <-done:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("cannot serve: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shut down: %w", err)
	}
	return nil
}
