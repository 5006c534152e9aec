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

package recipe

import (
	"context"
	"embed"
	"io/fs"
)

//go:embed data/recipes/*.recipe.yaml
var dataFS embed.FS

const embeddedSource = "embedded"

// EmbeddedFS returns the built-in sample cookbook rooted at its recipe directory.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(dataFS, "data/recipes")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// EmbeddedProvider serves the built-in sample cookbook.
func EmbeddedProvider() *FSDataProvider {
	return NewFSDataProvider(EmbeddedFS(), embeddedSource)
}

// LoadEmbedded loads the built-in sample cookbook.
func LoadEmbedded(ctx context.Context) (*Cookbook, error) {
	return LoadProvider(ctx, EmbeddedProvider())
}

// LoadWithOverlay loads the built-in cookbook with the declarations in dir
// layered on top. A file in dir replaces the built-in file at the same path;
// a new name is added. An empty dir loads the built-in cookbook alone.
func LoadWithOverlay(ctx context.Context, dir string) (*Cookbook, error) {
	if dir == "" {
		return LoadEmbedded(ctx)
	}
	overlay, err := NewDirDataProvider(DirProviderConfig{Dir: dir, Match: IsRecipeFile})
	if err != nil {
		return nil, err
	}
	return LoadProvider(ctx, NewLayeredDataProvider(EmbeddedProvider(), overlay))
}
