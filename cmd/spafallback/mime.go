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
	"fmt"
	"mime"

	"github.com/go-logr/logr"
	"gitlab.com/gitlab-org/go-mimedb"
)

// extraMIMETypes lists types of SPA build artifacts that the MIME database
// might lack or get wrong.
var extraMIMETypes = map[string]string{
	".avif":        "image/avif",
	".mjs":         "text/javascript",
	".webmanifest": "application/manifest+json",
}

// loadMIMETypes registers the MIME database's types as well as our extra
// types with the mime package.
func loadMIMETypes(log logr.Logger) error {
	if err := mimedb.LoadTypes(); err != nil {
		return fmt.Errorf("cannot load MIME types: %w", err)
	}
	for ext, mimeType := range extraMIMETypes {
		if err := mime.AddExtensionType(ext, mimeType); err != nil {
			log.Error(err, "cannot add MIME type", "extension", ext, "type", mimeType)
		}
	}
	return nil
}
