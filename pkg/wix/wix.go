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

package wix

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// Platforms and architectures understood by the generators.
const (
	PlatformWindows = "windows"
	ArchX86         = "x86"
	ArchX86_64      = "x86_64"
)

// Options configures the WiX generators.
type Options struct {
	// Platform is the platform the WiX tools run on. Sources are written as
	// Wine paths when it is not Windows. Defaults to the running OS.
	Platform string

	// TargetPlatform selects the MetaPackage install directory. Defaults to windows.
	TargetPlatform string

	// Arch is the target architecture, x86 or x86_64. Defaults to x86_64.
	Arch string

	// Prefix is the directory the built files were installed into.
	Prefix string

	// NewGUID returns a fresh component or package GUID.
	NewGUID func() string
}

func (o Options) withDefaults() Options {
	if o.Platform == "" {
		o.Platform = runtime.GOOS
	}
	if o.TargetPlatform == "" {
		o.TargetPlatform = PlatformWindows
	}
	if o.Arch == "" {
		o.Arch = ArchX86_64
	}
	if o.NewGUID == nil {
		o.NewGUID = uuid.NewString
	}
	return o
}

func (o Options) withWine() bool {
	return o.Platform != PlatformWindows
}

// ids formats element ids and numbers repeated ones.
type ids struct {
	seen map[string]int
}

func newIDs() *ids {
	return &ids{seen: make(map[string]int)}
}

// FormatID turns s into a WiX identifier: underscores are doubled, path
// separators and other unsupported characters become underscores, and a
// leading underscore lets ids start with a digit. With replaceDots set,
// dots are removed.
func FormatID(s string, replaceDots bool) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.NewReplacer("/", "_", "-", "_", " ", "_", "@", "_", "+", "_").Replace(s)
	if replaceDots {
		s = strings.ReplaceAll(s, ".", "")
	}
	return "_" + s
}

// pathID formats the base name of p and appends _N to the N-th repeat.
func (i *ids) pathID(p string, replaceDots bool) string {
	id := FormatID(path.Base(p), replaceDots)
	n, ok := i.seen[id]
	if !ok {
		i.seen[id] = 0
		return id
	}
	n++
	i.seen[id] = n
	return fmt.Sprintf("%s_%d", id, n)
}

// WinePath converts a POSIX path to the path Wine maps it to.
func WinePath(p string) string {
	return "z:" + strings.ReplaceAll(p, "/", "\\")
}

func level(selected bool) string {
	if selected {
		return "1"
	}
	return "2"
}

func absent(required bool) string {
	if required {
		return "disallow"
	}
	return "allow"
}

// writeFile renders with render and writes the result to path.
func writeFile(path string, render func() ([]byte, error)) error {
	data, err := render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create output directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // WiX sources are not secret
		return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to write "+path, err)
	}
	return nil
}

const (
	language      = defaults.DefaultWixLanguage
	defaultDiskID = defaults.DefaultWixDiskID
)
