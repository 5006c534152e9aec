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

// Package cli implements the cookbook command-line tool.
//
// # Commands
//
//	cookbook recipes list|show NAME|steps NAME
//	cookbook validate PATH...
//	cookbook packages list|show NAME|deps NAME|files NAME|validate
//	cookbook wix merge-module NAME|config NAME|msi NAME
//	cookbook verify-source NAME [--file PATH]
//	cookbook export -o DIR|cm://namespace/name
//	cookbook publish --to DIR|oci://registry/repository[:tag]
//
// Recipes and packages come from the built-in cookbook with --data-dir
// (COOKBOOK_DATA_DIR) overlaid on top.
//
// # Global Flags
//
//	--log-level     debug, info, warn or error (COOKBOOK_LOG_LEVEL, LOG_LEVEL)
//	--data-dir, -d  declaration overlay directory (COOKBOOK_DATA_DIR)
//
// Query commands accept --output/-o (file, cm://namespace/name or stdout)
// and --format/-t (yaml, json or table; COOKBOOK_FORMAT). Logs go to
// stderr so stdout stays parseable.
//
// # Exit Codes
//
//	0  success
//	1  invalid arguments, invalid declarations or a failed operation
//
// Version information is embedded at build time:
//
//	go build -ldflags="-X 'github.com/NVIDIA/cookbook/pkg/cli.version=1.0.0'"
package cli
