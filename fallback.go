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
	"net/http"
)

// FallbackDocument is the fixed (unrooted) path of the SPA's root document
// that gets served whenever the requested path cannot be resolved.
const FallbackDocument = "index.html"

// UnavailableBody is the HTML body of the terminal fallback response, served
// with status 500 when neither the requested path nor the FallbackDocument
// can be resolved.
const UnavailableBody = "<html><body><h1>Frontend build not available</h1></body></html>"

// StaticFileServer resolves (request) paths to static asset responses. It
// returns an error when the path does not correspond to a servable asset;
// such errors should satisfy errors.Is(err, fs.ErrNotExist), see also
// IsNotFound.
//
// The request passed to Resolve carries the routing context, such as method
// and headers; implementations must not modify it.
type StaticFileServer interface {
	Resolve(path string, r *http.Request) (*Response, error)
}

// StaticFileServerFunc adapts an ordinary function to a StaticFileServer.
type StaticFileServerFunc func(path string, r *http.Request) (*Response, error)

// Resolve calls f(path, r).
func (f StaticFileServerFunc) Resolve(path string, r *http.Request) (*Response, error) {
	return f(path, r)
}

// FallbackHandler implements an http.Handler that serves the static asset
// matching the request path, if any, otherwise the FallbackDocument. This
// behavior is required for SPAs with client-side DOM routers, as otherwise
// bookmarking (router) links or reloading an SPA with the current route other
// than "/" would fail.
//
// A FallbackHandler has no state of its own, so it can be used concurrently
// as long as its StaticFileServer can.
type FallbackHandler struct {
	files StaticFileServer
}

// NewFallbackHandler returns a new FallbackHandler resolving paths using the
// specified StaticFileServer.
func NewFallbackHandler(files StaticFileServer) *FallbackHandler {
	return &FallbackHandler{files: files}
}

// ServeHTTP serves the Response resolved for the request's URL path.
func (h *FallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.Resolve(r.URL.Path, r).Serve(w, r)
}

// Resolve returns the Response for the specified path, trying the path
// itself first, then the FallbackDocument, and finally synthesizing a fresh
// 500 "Frontend build not available" response. Every failure of the
// StaticFileServer counts the same, be it an error, a missing response, or a
// panic. Resolve never returns nil.
func (h *FallbackHandler) Resolve(path string, r *http.Request) *Response {
	if resp, err := h.try(path, r); err == nil {
		return resp
	}
	if resp, err := h.try(FallbackDocument, r); err == nil {
		return resp
	}
	return unavailableResponse()
}

// try resolves the specified path using the StaticFileServer, turning panics,
// absent responses and unsendable status codes into errors.
func (h *FallbackHandler) try(path string, r *http.Request) (resp *Response, err error) {
	if h.files == nil {
		return nil, ErrNoResponse
	}
	defer func() {
		if value := recover(); value != nil {
			resp, err = nil, &PanicError{Path: path, Value: value}
		}
	}()
	resp, err = h.files.Resolve(path, r)
	switch {
	case err != nil:
	case resp == nil:
		err = ErrNoResponse
	case resp.StatusCode < 100 || resp.StatusCode > 999:
		resp, err = nil, ErrInvalidStatus
	}
	return resp, err
}

// unavailableResponse returns a new terminal fallback response.
func unavailableResponse() *Response {
	return &Response{
		StatusCode: http.StatusInternalServerError,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte(UnavailableBody),
	}
}
