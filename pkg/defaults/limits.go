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

package defaults

// Declaration loading limits.
const (
	// MaxDeclarationFileSize is the largest recipe or package file accepted.
	MaxDeclarationFileSize = 1 << 20

	// MaxValidateRequestBytes bounds POSTed declaration bodies.
	MaxValidateRequestBytes = 1 << 20

	// LoadConcurrency is the number of declaration files parsed in parallel.
	LoadConcurrency = 8
)

// File name suffixes recognized when walking declaration directories.
const (
	RecipeFileSuffix      = ".recipe.yaml"
	RecipeFileSuffixAlt   = ".recipe.yml"
	PackageFileSuffix     = ".package.yaml"
	PackageFileSuffixAlt  = ".package.yml"
	ChecksumFileName      = "checksums.txt"
	DefaultRemoteName     = "origin"
	DefaultWixLanguage    = "1033"
	DefaultWixDiskID      = "1"
	ConfigMapFieldManager = "cookbook"
)
