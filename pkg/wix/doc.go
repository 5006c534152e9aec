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

// Package wix renders WiX Toolset sources for packages.
//
// A MergeModule lays one package's files out under TARGETDIR, one
// Directory per path segment and one Component with a File per file. A
// Config fills the Config.wxi preprocessor template. An MSI fills the
// installer template of a MetaPackage with its install directory, a
// Feature per member package and a Merge per merge module.
//
// Element ids follow FormatID; repeated ids get a numeric suffix. When the
// tools run under Wine, file sources and the config include are written as
// Wine paths.
package wix
