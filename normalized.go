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
	"errors"
	"fmt"
	"io/fs"
	"net/http"
)

// ErrNoResponse signals that a StaticFileServer returned neither a Response
// nor an error.
var ErrNoResponse = errors.New("static file server returned no response")

// ErrInvalidStatus signals that a StaticFileServer returned a Response with a
// status code that cannot be sent.
var ErrInvalidStatus = errors.New("static file server returned invalid status code")

// Kind classifies static asset resolution failures.
type Kind int

// Resolution failure kinds.
const (
	KindInternal  Kind = iota // anything else, such as I/O errors.
	KindNotFound              // there is no servable asset at the path.
	KindForbidden             // the asset exists, but is out of reach.
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// ResolveError reports failing to resolve a path to a static asset.
type ResolveError struct {
	Path string // unrooted, sanitized path of the asset.
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %s", e.Path, e.Err.Error())
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Kind returns the kind of resolution failure.
func (e *ResolveError) Kind() Kind { return KindOf(e.Err) }

// StatusCode returns the HTTP status code corresponding with this resolution
// failure, see also NormalizedHttpError.
func (e *ResolveError) StatusCode() int { return StatusCodeOf(e.Err) }

// PanicError wraps a value a StaticFileServer panicked with.
type PanicError struct {
	Path  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("static file server panicked resolving %q: %v", e.Path, e.Value)
}

// KindOf classifies the specified error.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return KindNotFound
	case errors.Is(err, fs.ErrPermission):
		return KindForbidden
	}
	return KindInternal
}

// IsNotFound returns true if the specified error reports a missing (or
// unservable) static asset.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// StatusCodeOf returns the HTTP status code for the specified error.
func StatusCodeOf(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	switch code := StatusCodeOf(err); code {
	case http.StatusNotFound:
		http.Error(w, "404 page not found", code)
	case http.StatusForbidden:
		http.Error(w, "403 Forbidden", code)
	default:
		http.Error(w, "500 Internal Server Error", code)
	}
}
