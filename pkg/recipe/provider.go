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
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// DataProvider abstracts access to declaration files.
// Paths are slash-separated and relative to the provider root.
type DataProvider interface {
	// ReadFile reads a file by path.
	ReadFile(path string) ([]byte, error)

	// WalkDir walks the directory tree rooted at root.
	WalkDir(root string, fn fs.WalkDirFunc) error

	// Source returns a description of where path is read from.
	Source(path string) string
}

// FSDataProvider serves declarations from any fs.FS, typically an embed.FS.
type FSDataProvider struct {
	fsys fs.FS
	name string
}

// NewFSDataProvider creates a provider over fsys; name labels its sources.
func NewFSDataProvider(fsys fs.FS, name string) *FSDataProvider {
	return &FSDataProvider{fsys: fsys, name: name}
}

// ReadFile reads a file from the filesystem.
func (p *FSDataProvider) ReadFile(path string) ([]byte, error) {
	slog.Debug("reading declaration", "provider", p.name, "path", path)
	return fs.ReadFile(p.fsys, path)
}

// WalkDir walks the filesystem.
func (p *FSDataProvider) WalkDir(root string, fn fs.WalkDirFunc) error {
	if root == "" {
		root = "."
	}
	return fs.WalkDir(p.fsys, root, fn)
}

// Source returns name:path.
func (p *FSDataProvider) Source(path string) string {
	return p.name + ":" + path
}

// DirProviderConfig configures a directory data provider.
type DirProviderConfig struct {
	// Dir is the declaration directory.
	Dir string

	// MaxFileSize is the largest accepted file (default: defaults.MaxDeclarationFileSize).
	MaxFileSize int64

	// AllowSymlinks allows symlinks in the directory (default: false).
	AllowSymlinks bool

	// Match selects the files the provider serves by base name. Patches and
	// other files kept next to declarations are skipped. Nil serves all files.
	Match func(name string) bool
}

// DirDataProvider serves declarations from a directory on disk after
// checking every file for traversal, symlinks and size.
type DirDataProvider struct {
	dir   string
	max   int64
	files map[string]bool
}

// NewDirDataProvider scans config.Dir and returns a provider over it.
func NewDirDataProvider(config DirProviderConfig) (*DirDataProvider, error) {
	if config.MaxFileSize == 0 {
		config.MaxFileSize = defaults.MaxDeclarationFileSize
	}

	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("declaration directory not found: %s", config.Dir), err)
	}
	if !info.IsDir() {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("declaration path is not a directory: %s", config.Dir))
	}

	files := make(map[string]bool)
	err = filepath.WalkDir(config.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to walk "+path, walkErr)
		}
		if d.IsDir() || (config.Match != nil && !config.Match(d.Name())) {
			return nil
		}

		rel, relErr := filepath.Rel(config.Dir, path)
		if relErr != nil {
			return fmt.Errorf("failed to get relative path: %w", relErr)
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "../") || rel == ".." {
			return cberrors.New(cberrors.ErrCodeInvalidRequest,
				fmt.Sprintf("path traversal detected: %s", rel))
		}

		if d.Type()&fs.ModeSymlink != 0 && !config.AllowSymlinks {
			return cberrors.New(cberrors.ErrCodeInvalidRequest,
				fmt.Sprintf("symlinks not allowed: %s", rel))
		}

		fi, statErr := os.Stat(path)
		if statErr != nil {
			return cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to stat "+rel, statErr)
		}
		if fi.Size() > config.MaxFileSize {
			return cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
				fmt.Sprintf("file too large (%d bytes, max %d): %s", fi.Size(), config.MaxFileSize, rel),
				map[string]any{"path": path})
		}

		files[rel] = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("directory data provider initialized", "dir", config.Dir, "files", len(files))
	return &DirDataProvider{dir: config.Dir, max: config.MaxFileSize, files: files}, nil
}

// ReadFile reads a scanned file.
func (p *DirDataProvider) ReadFile(path string) ([]byte, error) {
	if !p.files[path] {
		return nil, cberrors.New(cberrors.ErrCodeNotFound, fmt.Sprintf("%s not found in %s", path, p.dir))
	}
	return ReadDeclaration(filepath.Join(p.dir, filepath.FromSlash(path)), p.max)
}

// WalkDir walks the directory.
func (p *DirDataProvider) WalkDir(root string, fn fs.WalkDirFunc) error {
	if root == "" {
		root = "."
	}
	return fs.WalkDir(os.DirFS(p.dir), root, fn)
}

// Source returns the on-disk path.
func (p *DirDataProvider) Source(path string) string {
	return filepath.Join(p.dir, filepath.FromSlash(path))
}

// Has reports whether path was found while scanning.
func (p *DirDataProvider) Has(path string) bool {
	return p.files[path]
}

// LayeredDataProvider overlays a directory on top of a base provider.
// A file present in the overlay replaces the base file at the same path.
type LayeredDataProvider struct {
	base    DataProvider
	overlay *DirDataProvider
}

// NewLayeredDataProvider layers overlay over base.
func NewLayeredDataProvider(base DataProvider, overlay *DirDataProvider) *LayeredDataProvider {
	return &LayeredDataProvider{base: base, overlay: overlay}
}

// ReadFile reads from the overlay when it has path, else from base.
func (p *LayeredDataProvider) ReadFile(path string) ([]byte, error) {
	if p.overlay.Has(path) {
		return p.overlay.ReadFile(path)
	}
	return p.base.ReadFile(path)
}

// WalkDir walks the overlay, then the base skipping paths the overlay provided.
func (p *LayeredDataProvider) WalkDir(root string, fn fs.WalkDirFunc) error {
	visited := make(map[string]bool)
	err := p.overlay.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		visited[path] = true
		return fn(path, d, nil)
	})
	if err != nil {
		return err
	}

	return p.base.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if visited[path] && !d.IsDir() {
			slog.Debug("skipping base file, overlay takes precedence", "path", path)
			return nil
		}
		return fn(path, d, nil)
	})
}

// Source reports which layer serves path.
func (p *LayeredDataProvider) Source(path string) string {
	if p.overlay.Has(path) {
		return p.overlay.Source(path)
	}
	return p.base.Source(path)
}
