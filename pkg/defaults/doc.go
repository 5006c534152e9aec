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

// Package defaults provides centralized configuration constants for cookbook.
//
// This package defines timeout values, size limits and file naming
// conventions used across the codebase.
//
// # Timeout Categories
//
//   - Handler timeouts: For HTTP request processing
//   - Server timeouts: For HTTP server configuration
//   - HTTP client timeouts: For fetching remote declaration files
//   - Kubernetes timeouts: For ConfigMap reads and writes
//   - CLI timeouts: For loading and publishing from the command line
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CLILoadTimeout)
//	defer cancel()
package defaults
