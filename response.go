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
	"bytes"
	"net/http"
	"strconv"
	"time"
)

// Response is a fully resolved HTTP response, as produced by a
// StaticFileServer or the FallbackHandler. Responses are treated as immutable
// values once returned: Serve only copies from them.
type Response struct {
	StatusCode int         // HTTP status code to send.
	Header     http.Header // content metadata, such as Content-Type.
	Body       []byte      // complete body contents.
	// Name and ModTime, if Name is non-empty, allow serving a 200 response
	// with support for range and conditional requests.
	Name    string
	ModTime time.Time
}

// Serve writes the response to the specified http.ResponseWriter. Successful
// responses with a name get served using http.ServeContent, so clients
// benefit from range requests and If-Modified-Since et al. All other
// responses get written as-is, but without a body in case of HEAD requests.
func (resp *Response) Serve(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	for key, values := range resp.Header {
		header[key] = append([]string(nil), values...)
	}
	if resp.StatusCode == http.StatusOK && resp.Name != "" {
		http.ServeContent(w, r, resp.Name, resp.ModTime, bytes.NewReader(resp.Body))
		return
	}
	header.Set("Content-Length", strconv.Itoa(len(resp.Body)))
	w.WriteHeader(resp.StatusCode)
	if r.Method != http.MethodHead {
		_, _ = w.Write(resp.Body)
	}
}
