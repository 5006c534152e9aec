// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"net/http"
	"slices"
	"strings"
)

// DefaultAPIVersion is used when the client does not negotiate one.
const DefaultAPIVersion = "v1"

const (
	apiVersionHeader = "X-API-Version"
	vendorMediaType  = "application/vnd.nvidia.cookbook."
)

var supportedAPIVersions = []string{"v1"}

// negotiateAPIVersion reads a vendor media type such as
// application/vnd.nvidia.cookbook.v1+json from Accept.
func negotiateAPIVersion(r *http.Request) string {
	for _, accept := range strings.Split(r.Header.Get("Accept"), ",") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(accept), vendorMediaType)
		if !ok {
			continue
		}
		version, _, _ := strings.Cut(rest, "+")
		if slices.Contains(supportedAPIVersions, version) {
			return version
		}
	}
	return DefaultAPIVersion
}

// APIVersionFromRequest returns the negotiated version stored by the middleware.
func APIVersionFromRequest(r *http.Request) string {
	if v, ok := r.Context().Value(contextKeyAPIVersion).(string); ok {
		return v
	}
	return DefaultAPIVersion
}
