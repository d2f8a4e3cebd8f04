// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

const indexHTML = `<!DOCTYPE html><html><head><base href="/" /></head><body>CANARY HTML</body></html>`

var _ = Describe("SPA server", func() {

	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "index.html"), []byte(indexHTML), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "app.js"), []byte("console.log('CANARY JS');"), 0o644)).To(Succeed())
		Expect(loadMIMETypes(GinkgoLogr)).To(Succeed())
	})

	newTestRouter := func(cfg *Config) http.Handler {
		reg := prometheus.NewRegistry()
		return newRouter(cfg, newSPAHandler(cfg, reg, GinkgoLogr), reg, GinkgoLogr)
	}

	get := func(h http.Handler, method, path string) *httptest.ResponseRecorder {
		GinkgoHelper()
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	DescribeTable("routes requests",
		func(method, path string, expectedStatus int, expectedType, expectedBody string) {
			cfg := defaultConfig()
			cfg.Root = root
			w := get(newTestRouter(&cfg), method, path)
			Expect(w.Code).To(Equal(expectedStatus))
			Expect(w.Header().Get("Content-Type")).To(MatchRegexp("^" + expectedType))
			Expect(w.Body.String()).To(ContainSubstring(expectedBody))
		},
		Entry("exact asset", http.MethodGet, "/app.js",
			http.StatusOK, "(text|application)/javascript", "CANARY JS"),
		Entry("client-side route", http.MethodGet, "/dashboard/settings",
			http.StatusOK, "text/html", "CANARY HTML"),
		Entry("root", http.MethodGet, "/",
			http.StatusOK, "text/html", "CANARY HTML"),
		Entry("traversal", http.MethodGet, "/../../etc/passwd",
			http.StatusOK, "text/html", "CANARY HTML"),
		Entry("health", http.MethodGet, "/healthz",
			http.StatusOK, "text/plain", "ok"),
		Entry("metrics", http.MethodGet, "/metrics",
			http.StatusOK, "text/plain", "go_goroutines"),
		Entry("API", http.MethodGet, "/api/v1/foo",
			http.StatusNotFound, "text/plain", "404 page not found"),
		Entry("API root", http.MethodPost, "/api",
			http.StatusNotFound, "text/plain", "404 page not found"),
	)

	It("serves HEAD requests without body", func() {
		cfg := defaultConfig()
		cfg.Root = root
		w := get(newTestRouter(&cfg), http.MethodHead, "/dashboard")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.Len()).To(BeZero())
	})

	It("rejects other methods", func() {
		cfg := defaultConfig()
		cfg.Root = root
		w := get(newTestRouter(&cfg), http.MethodPost, "/dashboard")
		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("rewrites the base element behind a path rewriting proxy", func() {
		cfg := defaultConfig()
		cfg.Root = root
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		r.Header.Set("X-Forwarded-Prefix", "/myspa")
		w := httptest.NewRecorder()
		newTestRouter(&cfg).ServeHTTP(w, r)
		Expect(w.Body.String()).To(ContainSubstring(`<base href="/myspa/" />`))
	})

	It("serves the unavailable page without a frontend build", func() {
		cfg := defaultConfig()
		cfg.Root = filepath.Join(root, "nonexisting")
		w := get(newTestRouter(&cfg), http.MethodGet, "/dashboard")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/html"))
		Expect(w.Body.String()).To(Equal(
			"<html><body><h1>Frontend build not available</h1></body></html>"))
	})

	It("disables endpoints", func() {
		cfg := defaultConfig()
		cfg.Root = root
		cfg.HealthPath = ""
		cfg.MetricsPath = ""
		cfg.APIPrefix = ""
		h := newTestRouter(&cfg)
		for _, path := range []string{"/healthz", "/metrics", "/api/foo"} {
			w := get(h, http.MethodGet, path)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("CANARY HTML"))
		}
	})

	It("counts requests", func() {
		cfg := defaultConfig()
		cfg.Root = root
		h := newTestRouter(&cfg)
		get(h, http.MethodGet, "/app.js")
		get(h, http.MethodGet, "/nothing")
		w := get(h, http.MethodGet, "/metrics")
		Expect(w.Body.String()).To(ContainSubstring(
			`spafallback_http_requests_total{code="200",method="get"} 2`))
		Expect(w.Body.String()).To(ContainSubstring(
			`spafallback_resolves_total{outcome="not_found"} 1`))
	})

	It("logs requests", func() {
		var lines []string
		log := logr.New(&sinkRecorder{lines: &lines})
		h := accessLog(log)(http.HandlerFunc(handleHealth))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
		Expect(lines).To(HaveLen(1))
		Expect(lines[0]).To(ContainSubstring("status=200"))
		Expect(lines[0]).To(ContainSubstring("path=/healthz"))
	})

	It("serves until cancelled", func() {
		cfg := defaultConfig()
		cfg.Root = root
		l := Successful(net.Listen("tcp", "127.0.0.1:0"))
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			defer GinkgoRecover()
			done <- serve(ctx, l, newTestRouter(&cfg), GinkgoLogr)
		}()

		resp := Successful(http.Get("http://" + l.Addr().String() + "/dashboard"))
		body := Successful(io.ReadAll(resp.Body))
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("CANARY HTML"))

		cancel()
		Eventually(done).Within(5 * time.Second).Should(Receive(BeNil()))
	})

	It("reports listener failures", func() {
		l := Successful(net.Listen("tcp", "127.0.0.1:0"))
		Expect(l.Close()).To(Succeed())
		err := serve(context.Background(), l, http.NotFoundHandler(), GinkgoLogr)
		Expect(err).To(MatchError(ContainSubstring("cannot serve")))
	})

})

// sinkRecorder is a minimal logr.LogSink recording Info messages with their
// key/value pairs.
type sinkRecorder struct {
	lines *[]string
}

func (s *sinkRecorder) Init(logr.RuntimeInfo)  {}
func (s *sinkRecorder) Enabled(level int) bool { return true }
func (s *sinkRecorder) Error(err error, msg string, kv ...any) {
	s.Info(0, msg, append(kv, "error", err)...)
}
func (s *sinkRecorder) WithValues(kv ...any) logr.LogSink { return s }
func (s *sinkRecorder) WithName(name string) logr.LogSink { return s }

func (s *sinkRecorder) Info(level int, msg string, kv ...any) {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteString(" ")
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteString("=")
		b.WriteString(fmt.Sprint(kv[i+1]))
	}
	*s.lines = append(*s.lines, b.String())
}
