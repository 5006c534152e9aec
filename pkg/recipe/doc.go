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

// Package recipe loads, validates and serves recipe declarations.
//
// A recipe declares how to obtain and build one third-party library: its
// version, licenses, source origin (a version-control remote or a release
// tarball), patches applied in order, build toggles and produced artifacts.
// Declarations are YAML documents named *.recipe.yaml:
//
//	kind: Recipe
//	apiVersion: cookbook.nvidia.com/v1alpha1
//	metadata:
//	  name: mingw-regex
//	spec:
//	  version: "2.5"
//	  source:
//	    remote:
//	      url: https://gitlab.freedesktop.org/gstreamer/meson-ports/mingw-regex.git
//	      revision: v2.5
//	  patches:
//	    - mingw-regex/0001-Build-a-shared-library.patch
//
// Load and Parse read one declaration strictly: unknown fields, extra
// documents and any validation violation reject it. The error carries the
// code of the first violation (MISSING_FIELD, MALFORMED_SOURCE_ORIGIN,
// INVALID_FIELD) or UNREADABLE_FILE, and wraps a *ValidationError listing
// every violation.
//
// A Cookbook is the loaded set, indexed by name. LoadDir, LoadFS,
// LoadEmbedded and LoadConfigMap parse declarations concurrently and then
// register them in lexical path order, so DUPLICATE_NAME is reported
// deterministically. Loading is all-or-nothing. ValidateReferences checks
// that dependencies name loaded recipes and contain no cycle.
//
// Recipe.Steps describes the build plan: fetch, extract, patches in order,
// then the enabled build stages. It is data for an orchestrator; nothing
// here runs a build.
//
// Handler exposes a Cookbook over HTTP through pkg/server.
package recipe
