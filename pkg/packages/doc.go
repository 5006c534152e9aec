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

// Package packages loads package declarations and resolves them against a
// recipe Cookbook.
//
// A Package groups recipe artifacts into one installable unit. Its files are
// declared as "recipe:category[:category...]" entries, where category is one
// of libs, headers, devel or bins:
//
//	kind: Package
//	apiVersion: cookbook.nvidia.com/v1alpha1
//	metadata:
//	  name: glib
//	spec:
//	  shortdesc: GLib runtime
//	  version: 2.82.4
//	  deps: [base-libs]
//	  files:
//	    - glib:libs:bins
//
// A MetaPackage groups packages into an installer. Each member is marked
// required (cannot be deselected) and selected (installed by default):
//
//	kind: MetaPackage
//	...
//	spec:
//	  title: Cookbook SDK
//	  packages:
//	    - {name: base-libs, required: true, selected: true}
//	    - {name: regex}
//	  installDir:
//	    windows: cookbook-sdk
//
// A Store answers dependency, file list and recipe queries:
//
//	cb, _ := recipe.LoadEmbedded(ctx)
//	store, _ := packages.LoadEmbedded(ctx, cb)
//	files, _ := store.Files("sdk")
//	deps, _ := store.Deps("glib-devel", true)
//
// Loading checks each declaration on its own; Store.Validate checks that
// every referenced package and recipe exists and that package dependencies
// contain no cycle.
package packages
