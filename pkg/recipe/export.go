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
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// Marshal encodes r as a declaration document that Parse accepts.
func Marshal(r *Recipe) ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, fmt.Sprintf("failed to encode recipe %q", r.Name()), err)
	}
	return data, nil
}

// Export returns every recipe encoded as a declaration, keyed by
// "<name>.recipe.yaml".
func (c *Cookbook) Export() (map[string]string, error) {
	out := make(map[string]string, c.Len())
	for _, r := range c.List() {
		data, err := Marshal(r)
		if err != nil {
			return nil, err
		}
		out[r.Name()+defaults.RecipeFileSuffix] = string(data)
	}
	return out, nil
}

// ConfigMapData lets a Cookbook be written with a serializer.ConfigMapWriter,
// one data key per recipe.
func (c *Cookbook) ConfigMapData() (map[string]string, error) {
	return c.Export()
}

// WriteDir writes the exported declarations into dir, creating it if needed.
// It returns the written file names, sorted.
func (c *Cookbook) WriteDir(dir string) ([]string, error) {
	files, err := c.Export()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create "+dir, err)
	}

	names := c.Names()
	written := make([]string, 0, len(names))
	for _, name := range names {
		file := name + defaults.RecipeFileSuffix
		if err := os.WriteFile(filepath.Join(dir, file), []byte(files[file]), 0o644); err != nil { //nolint:gosec // declarations are not secret
			return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to write "+file, err)
		}
		written = append(written, file)
	}
	return written, nil
}
