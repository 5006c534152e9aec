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

// Package server hosts the read-only cookbook HTTP API.
//
// Routes are supplied by the caller with WithHandler using http.ServeMux
// patterns; each one runs behind the middleware chain
//
//	metrics -> version -> request id -> panic recovery -> rate limit -> logging
//
// System endpoints /health, /ready and /metrics are registered by the
// server itself and skip rate limiting. Errors are written as ErrorResponse
// bodies; WriteErrorFromErr maps pkg/errors codes to HTTP statuses.
//
// Configuration comes from NewConfig, which reads COOKBOOK_ADDRESS,
// COOKBOOK_PORT, COOKBOOK_RATE_LIMIT, COOKBOOK_RATE_LIMIT_BURST,
// COOKBOOK_READ_TIMEOUT, COOKBOOK_WRITE_TIMEOUT and COOKBOOK_SHUTDOWN_TIMEOUT.
package server
