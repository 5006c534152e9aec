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
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
)

// Load reads the recipe declaration at path. The file must hold exactly one
// Recipe document. A declaration with any violation is rejected; the
// returned error carries the code of the first violation and wraps a
// *ValidationError listing all of them.
func Load(path string) (*Recipe, error) {
	data, err := ReadDeclaration(path, defaults.MaxDeclarationFileSize)
	if err != nil {
		recipeLoadTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes and validates one recipe declaration held in memory.
// source names the origin in errors and is kept on the returned Recipe.
func Parse(data []byte, source string) (*Recipe, error) {
	start := time.Now()
	defer func() {
		recipeLoadDuration.Observe(time.Since(start).Seconds())
	}()

	r, err := decode(data, source)
	if err != nil {
		recipeLoadTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}

	if vs := Validate(r); len(vs) > 0 {
		recipeLoadTotal.WithLabelValues(resultInvalid).Inc()
		slog.Debug("recipe declaration rejected", "source", source, "violations", len(vs))
		return nil, violationsError(source, vs)
	}

	recipeLoadTotal.WithLabelValues(resultOK).Inc()
	slog.Debug("recipe declaration loaded", "source", source, "name", r.Name(), "version", r.Spec.Version)
	return r, nil
}

// decode reads exactly one strict YAML document and checks the envelope.
func decode(data []byte, source string) (*Recipe, error) {
	ctx := map[string]any{"source": source}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var r Recipe
	if err := dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
				fmt.Sprintf("%s: no recipe declaration found", source), ctx)
		}
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: failed to parse recipe declaration", source), err, ctx)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: file must define exactly one recipe", source), ctx)
	}

	if r.Kind != header.KindRecipe {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: expected kind %q, got %q", source, header.KindRecipe, r.Kind), ctx)
	}
	if r.APIVersion != header.APIVersion {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: unsupported apiVersion %q (want %q)", source, r.APIVersion, header.APIVersion), ctx)
	}

	r.source = source
	r.applyDefaults()
	return &r, nil
}

// ReadDeclaration reads a regular file no larger than limit bytes. Failures
// carry UNREADABLE_FILE.
func ReadDeclaration(path string, limit int64) ([]byte, error) {
	ctx := map[string]any{"path": path}

	info, err := os.Stat(path)
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("failed to stat %s", path), err, ctx)
	}
	if info.IsDir() {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s is a directory", path), ctx)
	}
	if info.Size() > limit {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s is too large (%d bytes, max %d)", path, info.Size(), limit), ctx)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("failed to open %s", path), err, ctx)
	}
	defer f.Close()

	// The file may have grown since Stat.
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("failed to read %s", path), err, ctx)
	}
	if int64(len(data)) > limit {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s exceeds %d bytes", path, limit), ctx)
	}
	return data, nil
}

// IsRecipeFile reports whether name carries a recipe declaration suffix.
func IsRecipeFile(name string) bool {
	return strings.HasSuffix(name, defaults.RecipeFileSuffix) || strings.HasSuffix(name, defaults.RecipeFileSuffixAlt)
}
