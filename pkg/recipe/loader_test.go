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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

func TestLoadEmbedded(t *testing.T) {
	cb, err := LoadEmbedded(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"glib", "libffi", "mingw-regex", "pcre2", "zlib"}, cb.Names())
	assert.Empty(t, cb.ValidateReferences())

	r, err := cb.Get("mingw-regex")
	require.NoError(t, err)
	assert.Equal(t, "2.5", r.Spec.Version)
	assert.Equal(t, SourceKindRemote, r.Spec.Source.Kind())
	assert.Len(t, r.Spec.Patches, 1)
	assert.Equal(t, "embedded:mingw-regex.recipe.yaml", r.Source())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "zlib.recipe.yaml", named("zlib"))
	writeRecipe(t, dir, "nested/glib.recipe.yml", withDeps("glib", "zlib"))
	writeRecipe(t, dir, "glib/0001-fix.patch", "not yaml: [")
	writeRecipe(t, dir, "README.md", "# cookbook")

	cb, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"glib", "zlib"}, cb.Names())
}

func TestLoadDir_DuplicateIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "a.recipe.yaml", named("zlib"))
	writeRecipe(t, dir, "b.recipe.yaml", named("zlib"))
	for i := range 10 {
		writeRecipe(t, dir, filepath.Join("filler", string(rune('c'+i))+".recipe.yaml"), named(string(rune('c'+i))+"lib"))
	}

	for range 5 {
		_, err := LoadDir(context.Background(), dir)
		require.Error(t, err)
		assert.Equal(t, cberrors.ErrCodeDuplicateName, cberrors.CodeOf(err))

		var se *cberrors.StructuredError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, filepath.Join(dir, "a.recipe.yaml"), se.Context["first"])
		assert.Equal(t, filepath.Join(dir, "b.recipe.yaml"), se.Context["conflict"])
	}
}

func TestLoadDir_FirstFailureInPathOrder(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "a.recipe.yaml", named("a"))
	writeRecipe(t, dir, "b.recipe.yaml", "kind: Recipe\n")
	writeRecipe(t, dir, "c.recipe.yaml", "kind: [")

	_, err := LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.recipe.yaml")
}

func TestLoadDir_Errors(t *testing.T) {
	_, err := LoadDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeUnreadableFile, cberrors.CodeOf(err))

	file := writeRecipe(t, t.TempDir(), "x.recipe.yaml", named("x"))
	_, err = LoadDir(context.Background(), file)
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeInvalidRequest, cberrors.CodeOf(err))
}

func TestLoadDir_RejectsSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := writeRecipe(t, t.TempDir(), "real.recipe.yaml", named("real"))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.recipe.yaml")))

	_, err := LoadDir(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "symlinks not allowed")
}

func TestLoadDir_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "a.recipe.yaml", named("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadDir(ctx, dir)
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeTimeout, cberrors.CodeOf(err))
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"recipes/zlib.recipe.yaml": {Data: []byte(named("zlib"))},
		"recipes/notes.txt":        {Data: []byte("ignored")},
	}
	cb, err := LoadFS(context.Background(), fsys, "mem")
	require.NoError(t, err)

	r, err := cb.Get("zlib")
	require.NoError(t, err)
	assert.Equal(t, "mem:recipes/zlib.recipe.yaml", r.Source())
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeRecipe(t, dir, "zlib.recipe.yaml", strings.Replace(named("zlib"), "revision: v1.0", "revision: v1.3.2", 1))
	writeRecipe(t, dir, "extra.recipe.yaml", named("extra"))

	cb, err := LoadWithOverlay(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 6, cb.Len())

	z, err := cb.Get("zlib")
	require.NoError(t, err)
	assert.Equal(t, SourceKindRemote, z.Spec.Source.Kind())
	assert.Equal(t, "v1.3.2", z.Spec.Source.Remote.Revision)
	assert.Equal(t, filepath.Join(dir, "zlib.recipe.yaml"), z.Source())

	plain, err := LoadWithOverlay(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 5, plain.Len())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeRecipe(t, dir, "a.recipe.yaml", named("a"))
	b := writeRecipe(t, dir, "b.recipe.yaml", named("a"))

	_, err := LoadFiles([]string{a, b})
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeDuplicateName, cberrors.CodeOf(err))

	cb, err := LoadFiles([]string{a})
	require.NoError(t, err)
	assert.Equal(t, 1, cb.Len())
}
