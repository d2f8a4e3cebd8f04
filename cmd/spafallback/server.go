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

package main

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/thediveo/spafallback"
)

// newRouter returns the HTTP handler routing health checks, metrics and API
// requests, and everything else to the specified SPA handler.
func newRouter(cfg *Config, spa http.Handler, reg *prometheus.Registry, log logr.Logger) http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spafallback_http_requests_total",
		Help: "The total number of HTTP requests to the SPA, by status code and method",
	}, []string{"code", "method"})
	reg.MustRegister(
		requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(log))
	r.Use(middleware.Recoverer)

	if cfg.HealthPath != "" {
		r.Get(cfg.HealthPath, handleHealth)
		r.Head(cfg.HealthPath, handleHealth)
	}
	if cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	// API paths must never see the SPA's root document.
	if cfg.APIPrefix != "" {
		r.HandleFunc(cfg.APIPrefix, handleNotFound)
		r.HandleFunc(cfg.APIPrefix+"/*", handleNotFound)
	}

	spa = promhttp.InstrumentHandlerCounter(requests, spa)
	r.Method(http.MethodGet, "/*", spa)
	r.Method(http.MethodHead, "/*", spa)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write([]byte("ok\n"))
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	spafallback.NormalizedHttpError(w, fs.ErrNotExist)
}

// accessLog returns middleware logging every request after it has been
// served.
func accessLog(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start).String(),
					"requestID", middleware.GetReqID(r.Context()),
					"remote", r.RemoteAddr)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
