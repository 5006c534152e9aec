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

package packages

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

//go:embed data/packages/*.package.yaml
var dataFS embed.FS

// EmbeddedFS returns the built-in sample packages.
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(dataFS, "data/packages")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// LoadEmbedded loads the built-in sample packages against cb.
func LoadEmbedded(ctx context.Context, cb *recipe.Cookbook) (*Store, error) {
	return LoadProvider(ctx, recipe.NewFSDataProvider(EmbeddedFS(), "embedded"), cb)
}

// LoadWithOverlay loads the built-in packages with the declarations in dir
// layered on top. An empty dir loads the built-in packages alone.
func LoadWithOverlay(ctx context.Context, dir string, cb *recipe.Cookbook) (*Store, error) {
	if dir == "" {
		return LoadEmbedded(ctx, cb)
	}
	overlay, err := recipe.NewDirDataProvider(recipe.DirProviderConfig{Dir: dir, Match: IsPackageFile})
	if err != nil {
		return nil, err
	}
	base := recipe.NewFSDataProvider(EmbeddedFS(), "embedded")
	return LoadProvider(ctx, recipe.NewLayeredDataProvider(base, overlay), cb)
}

// LoadDir loads every package declaration under dir against cb.
func LoadDir(ctx context.Context, dir string, cb *recipe.Cookbook) (*Store, error) {
	p, err := recipe.NewDirDataProvider(recipe.DirProviderConfig{Dir: dir, Match: IsPackageFile})
	if err != nil {
		return nil, err
	}
	return LoadProvider(ctx, p, cb)
}

// LoadProvider loads every package declaration p serves. Files are parsed
// concurrently and registered in path order; any failure rejects the set.
// References are not checked here; see Store.Validate.
func LoadProvider(ctx context.Context, p recipe.DataProvider, cb *recipe.Cookbook) (*Store, error) {
	start := time.Now()

	paths, err := recipe.DeclarationPaths(p, IsPackageFile)
	if err != nil {
		return nil, err
	}

	pkgs := make([]*Package, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaults.LoadConcurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := p.ReadFile(path)
			if err != nil {
				errs[i] = cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
					"failed to read "+p.Source(path), err, map[string]any{"path": path})
				return nil
			}
			pkgs[i], errs[i] = Parse(data, p.Source(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeTimeout, "package loading interrupted", err)
	}

	s := NewStore(cb)
	for i := range paths {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if err := s.Add(pkgs[i]); err != nil {
			return nil, err
		}
	}

	storePackages.Set(float64(s.Len()))
	slog.Debug("package store loaded", "packages", s.Len(), "duration", time.Since(start))
	return s, nil
}
