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

// Package api serves a loaded cookbook over HTTP.
//
// It wires the recipe and package handlers into pkg/server, which owns the
// middleware chain, health endpoints and metrics. The served set is chosen
// from the environment:
//
//   - COOKBOOK_DATA_DIR: declarations overlaid on the embedded cookbook
//   - COOKBOOK_CONFIGMAP: cm://namespace/name to read recipes from a ConfigMap
//   - COOKBOOK_KUBECONFIG: kubeconfig used with COOKBOOK_CONFIGMAP
//   - LOG_LEVEL: debug, info, warn or error
//
// Server settings (COOKBOOK_PORT, COOKBOOK_RATE_LIMIT, ...) are read by
// pkg/server.
//
// # Endpoints
//
//   - GET  /v1/recipes
//   - GET  /v1/recipes/{name}
//   - GET  /v1/recipes/{name}/steps
//   - POST /v1/recipes/validate
//   - GET  /v1/packages
//   - GET  /v1/packages/{name}
//   - GET  /v1/packages/{name}/files
//   - GET  /v1/packages/{name}/deps
//   - GET  /health, /ready, /metrics
//
// Version information is set at build time:
//
//	go build -ldflags="-X 'github.com/NVIDIA/cookbook/pkg/api.version=1.0.0'"
package api
