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

package spafallback

import (
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-logr/logr"
)

// FSServer is a StaticFileServer serving static resources from an fs.FS. It
// serves only regular files, never directory listings. The root document
// (FallbackDocument) gets its HTML base element rewritten to the correct
// request base path, based on forwarding proxy headers.
type FSServer struct {
	fs            fs.FS         // the FS to serve static resources from.
	indexRewriter IndexRewriter // optional user function to rewrite the root document.
	maxAge        time.Duration // optional caching duration of assets other than the root document.
	log           logr.Logger
	metrics       *Metrics
}

// FSServerOption sets optional properties at the time of creating an
// FSServer.
type FSServerOption func(*FSServer)

// IndexRewriter rewrites (parts) of a root document's contents to be delivered
// to a requesting client, after the base element has been updated.
type IndexRewriter func(r *http.Request, index string) string

// WithIndexRewriter sets the specified IndexRewriter that gets called before
// delivering the root document's contents to requesting clients, allowing for
// application-specific changes.
func WithIndexRewriter(rewriter IndexRewriter) FSServerOption {
	return func(s *FSServer) {
		s.indexRewriter = rewriter
	}
}

// WithMaxAge lets clients cache static assets other than the root document
// for the specified duration. The root document is never to be cached without
// revalidation, so clients pick up new SPA builds.
func WithMaxAge(d time.Duration) FSServerOption {
	return func(s *FSServer) {
		s.maxAge = d
	}
}

// WithLogger sets the logger for resolution failures.
func WithLogger(log logr.Logger) FSServerOption {
	return func(s *FSServer) {
		s.log = log
	}
}

// WithMetrics instruments the FSServer.
func WithMetrics(m *Metrics) FSServerOption {
	return func(s *FSServer) {
		s.metrics = m
	}
}

// NewFSServer returns a new StaticFileServer serving static resources from the
// specified fs.
//
// In order to serve the static resources from a directory on the OS file
// system, use os.DirFS:
//
//	s := NewFSServer(os.DirFS("/opt/data/myspa"))
func NewFSServer(fsys fs.FS, opts ...FSServerOption) *FSServer {
	s := &FSServer{
		fs:  fsys,
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the static asset at the specified path as a Response. The
// path gets sanitized first in order to prevent parent directory traversal
// outside the static assets. Resolving "/" (or "") always fails with a not
// found error, as hitting the root is always a case for the root document.
// All errors returned are of type *ResolveError.
func (s *FSServer) Resolve(p string, r *http.Request) (*Response, error) {
	// Slapping "/" ensures that path.Clean does NOT use the current working
	// dir for resolving; fs.FS then uses unrooted paths.
	name := path.Clean("/" + p)[1:]
	resp, err := s.resolve(name, r)
	if err != nil {
		err = &ResolveError{Path: name, Err: err}
		s.metrics.observe(outcomeOf(err), 0)
		if IsNotFound(err) {
			s.log.V(1).Info("static asset not found", "path", name)
		} else {
			s.log.Error(err, "cannot serve static asset", "path", name,
				"kind", KindOf(err).String())
		}
		return nil, err
	}
	s.metrics.observe(OutcomeServed, len(resp.Body))
	return resp, nil
}

func (s *FSServer) resolve(name string, r *http.Request) (*Response, error) {
	if name == "" {
		return nil, fs.ErrNotExist
	}
	// fs.Stat deals with fs.FS implementations that don't support fs.StatFS,
	// so we can rely on it whatever measures that takes.
	info, err := fs.Stat(s.fs, name)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %w", fs.ErrNotExist)
	}
	contents, err := fs.ReadFile(s.fs, name)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", detectContentType(name, contents))
	if name == FallbackDocument {
		document := rewriteBase(r, string(contents))
		if s.indexRewriter != nil {
			document = s.indexRewriter(r, document)
		}
		contents = []byte(document)
		header.Set("Cache-Control", "no-cache")
	} else if s.maxAge > 0 {
		header.Set("Cache-Control", "max-age="+strconv.Itoa(int(s.maxAge.Seconds())))
	}
	return &Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       contents,
		Name:       path.Base(name),
		ModTime:    info.ModTime(),
	}, nil
}

// detectContentType returns the content type of the named file, either by
// extension or by sniffing its contents.
func detectContentType(name string, contents []byte) string {
	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		return contentType
	}
	if len(contents) > 512 {
		contents = contents[:512]
	}
	return http.DetectContentType(contents)
}
