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

// Package version parses and compares upstream release versions as they
// appear in recipe declarations.
//
// Upstream projects use up to four numeric components and often append a
// letter or pre-release marker:
//
//	2.5        -> [2 5]
//	1.0.2k     -> [1 0 2] + "k"
//	3.6.0-rc1  -> [3 6 0] + "-rc1"
//
// Compare treats missing components as zero, so 2.5 equals 2.5.0.
//
// Windows installers only accept numeric major.minor.build.revision
// versions; Wix and WixVersion produce that form or report ErrOutOfRange.
package version
