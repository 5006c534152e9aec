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
	"log/slog"
	"path/filepath"

	"github.com/NVIDIA/cookbook/pkg/packages"
)

// Generate writes the WiX sources of the named package into dir and
// returns the written paths. A Package yields its merge module source. A
// MetaPackage yields a merge module source for every merged package, the
// config and the installer source.
func Generate(store *packages.Store, name, dir string, opts Options) ([]string, error) {
	p, err := store.Get(name)
	if err != nil {
		return nil, err
	}
	if !p.IsMeta() {
		out, err := writeMergeModule(store, p, dir, opts)
		if err != nil {
			return nil, err
		}
		return []string{out}, nil
	}

	cfg, err := NewConfig(p, opts).Write(dir)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(cfg); err == nil {
		cfg = abs
	}

	msi := NewMSI(p, store, filepath.ToSlash(cfg), opts)
	modules, err := msi.MergeModules()
	if err != nil {
		return nil, err
	}

	written := []string{cfg}
	for _, m := range modules {
		out, err := writeMergeModule(store, m, dir, opts)
		if err != nil {
			return nil, err
		}
		written = append(written, out)
	}

	out := filepath.Join(dir, p.Name()+".wxs")
	if err := msi.Write(out); err != nil {
		return nil, err
	}
	written = append(written, out)

	slog.Info("wix sources generated", "package", name, "files", len(written), "dir", dir)
	return written, nil
}

func writeMergeModule(store *packages.Store, p *packages.Package, dir string, opts Options) (string, error) {
	files, err := store.Files(p.Name())
	if err != nil {
		return "", err
	}
	out := filepath.Join(dir, p.Name()+"-merge.wxs")
	return out, NewMergeModule(p, files, opts).Write(out)
}
