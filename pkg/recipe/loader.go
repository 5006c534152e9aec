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
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// LoadDir loads every recipe declaration under dir into a new Cookbook.
func LoadDir(ctx context.Context, dir string) (*Cookbook, error) {
	p, err := NewDirDataProvider(DirProviderConfig{Dir: dir, Match: IsRecipeFile})
	if err != nil {
		return nil, err
	}
	return LoadProvider(ctx, p)
}

// LoadFS loads every recipe declaration in fsys into a new Cookbook.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (*Cookbook, error) {
	return LoadProvider(ctx, NewFSDataProvider(fsys, name))
}

// LoadProvider loads every recipe declaration p serves. Files are parsed
// concurrently, then registered in lexical path order so that the reported
// failure, including DUPLICATE_NAME, does not depend on scheduling. Any
// failure rejects the whole set. The call returns once every file is processed.
func LoadProvider(ctx context.Context, p DataProvider) (*Cookbook, error) {
	start := time.Now()

	paths, err := DeclarationPaths(p, IsRecipeFile)
	if err != nil {
		return nil, err
	}

	recipes := make([]*Recipe, len(paths))
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
			recipes[i], errs[i] = Parse(data, p.Source(path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeTimeout, "recipe loading interrupted", err)
	}

	cb := NewCookbook()
	for i := range paths {
		if errs[i] != nil {
			return nil, errs[i]
		}
		if err := cb.Add(recipes[i]); err != nil {
			return nil, err
		}
	}

	cookbookRecipes.Set(float64(cb.Len()))
	slog.Debug("cookbook loaded", "recipes", cb.Len(), "duration", time.Since(start))
	return cb, nil
}

// DeclarationPaths returns the sorted paths of regular files accepted by match.
func DeclarationPaths(p DataProvider, match func(string) bool) ([]string, error) {
	var paths []string
	err := p.WalkDir("", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !match(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to list declarations", err)
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// LoadFiles loads the named declaration files into a new Cookbook, in the
// given order.
func LoadFiles(paths []string) (*Cookbook, error) {
	cb := NewCookbook()
	for _, path := range paths {
		r, err := Load(path)
		if err != nil {
			return nil, err
		}
		if err := cb.Add(r); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cb, nil
}
