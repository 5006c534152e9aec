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

// Package header provides the envelope shared by cookbook declarations and
// the reports generated from them.
//
// Every declaration file starts with the same three fields:
//
//	kind: Recipe
//	apiVersion: cookbook.nvidia.com/v1alpha1
//	metadata:
//	  name: mingw-regex
//
// Reports (validation results, step plans) use Init to stamp the kind,
// a UTC timestamp and the producing tool version into metadata:
//
//	var h header.Header
//	h.Init(header.KindValidationResult, version)
package header
