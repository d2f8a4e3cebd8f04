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
	"net/url"
	"path"
	"regexp"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix that need to be
// preprended to the request's URI path in order to learn the original path
// when hitting the path rewriting proxy.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI (or sometimes only
// the original URI path) of a request when hitting the first path rewriting
// proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// baseRe matches the base element in the root document in order to allow us
// to dynamically rewrite the base the SPA is served from. Go's templating is
// of no use here, as for development reasons the root document must be
// perfectly usable without any Go templating at any time.
//
// Please note: "*?" instead of "*" ensures that our irregular expression
// doesn't get too greedy, gobbling much more than it should until the last(!)
// empty element.
var baseRe = regexp.MustCompile(`(<base href=").*?("\s*/?>)`)

// rewriteBase returns the document with the href of its base element (if
// any) replaced by the base path derived from the specified request. Without
// a request, the base path is "/".
func rewriteBase(r *http.Request, document string) string {
	// Sanitize the base path so it cannot interfere with our regexp
	// replacement where we need to use "$1" and "$2" back references. As this
	// ain't VMS (shudder), we don't need "$" in SPA paths anyway.
	base := "/"
	if r != nil && r.URL != nil {
		base = strings.ReplaceAll(basePath(r), "$", "")
	}
	return baseRe.ReplaceAllString(document, "${1}"+base+"${2}")
}

// requestPath returns the absolute and cleaned request URL path, leaving the
// request itself untouched.
func requestPath(r *http.Request) string {
	return path.Clean("/" + r.URL.Path)
}

// originalRequestPath returns the (hopefully) original path when hitting the
// first proxy in a chain, based on what has been passed down to us. If no
// suitable forwarding information is present, the sanitized request URL path.
func originalRequestPath(r *http.Request) string {
	reqPath := requestPath(r)
	// Was the request path rewritten? Then the original request path was the
	// forwarded prefix, followed by the remaining part we now see in the
	// request.
	if fwprefix := r.Header.Get(ForwardedPrefixHeader); fwprefix != "" {
		fwprefix = path.Clean("/" + fwprefix)
		return path.Join(fwprefix, reqPath)
	}
	// Was the original HTTP request URL passed upon us? There seem to be
	// different interpretations with some proxy implementations only passing
	// the request path, but not the full original URI to us...
	if fwurl := r.Header.Get(ForwardedUriHeader); fwurl != "" {
		if strings.HasPrefix(fwurl, "/") {
			return path.Clean(fwurl)
		}
		// If parsing fails, just ignore it.
		if u, err := url.Parse(fwurl); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return reqPath
}

// basePath returns the URI request path base based on the given request, by
// consulting proxy headers when available. Rewriting forwarding proxies need
// to preserve the original client-side request URI path for this to work; if
// deriving the base path is impossible, the base is taken to be "/" from the
// clients' perspective.
func basePath(r *http.Request) string {
	reqPath := requestPath(r)
	origPath := originalRequestPath(r)
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(origPath, "/") {
		// take care of the situation where the reverse proxy redirects from
		// /foo to /foo/ and then rewrites the path to /.
		origPath += "/"
	}
	var base string
	// If the request path we see is a proper suffix of the original request
	// path, take only the common base part (~prefix).
	if strings.HasSuffix(origPath, reqPath) {
		base = origPath[:len(origPath)-len(reqPath)]
	}
	// The base path must always end with a "/", as otherwise browsers throw
	// its final element away in a dirname() operation.
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
