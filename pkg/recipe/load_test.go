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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

func TestLoad_Valid(t *testing.T) {
	r, err := Load("testdata/mingw-regex.recipe.yaml")
	require.NoError(t, err)

	assert.Equal(t, "mingw-regex", r.Name())
	assert.Equal(t, "2.5", r.Spec.Version)
	assert.Equal(t, SourceKindRemote, r.Spec.Source.Kind())
	assert.Equal(t, "origin", r.Spec.Source.Remote.Name)
	assert.Equal(t, BuildTypeAutotools, r.Spec.Build.Type)
	assert.Equal(t, "testdata/mingw-regex.recipe.yaml", r.Source())
	assert.Empty(t, Validate(r))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		code cberrors.ErrorCode
	}{
		{"missing name", "testdata/missing-name.recipe.yaml", cberrors.ErrCodeMissingField},
		{"missing name and envelope", "testdata/no-envelope.recipe.yaml", cberrors.ErrCodeUnreadableFile},
		{"tarball without url", "testdata/tarball-no-url.recipe.yaml", cberrors.ErrCodeMalformedSourceOrigin},
		{"nonexistent file", "testdata/nope.recipe.yaml", cberrors.ErrCodeUnreadableFile},
		{"directory", "testdata", cberrors.ErrCodeUnreadableFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.Equal(t, tt.code, cberrors.CodeOf(err))
		})
	}
}

func TestLoad_TooLarge(t *testing.T) {
	path := writeRecipe(t, t.TempDir(), "big.recipe.yaml", baseRecipe+"# "+strings.Repeat("x", 1<<20)+"\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeUnreadableFile, cberrors.CodeOf(err))
}

func TestParse_Envelope(t *testing.T) {
	tests := []struct {
		name string
		data string
		code cberrors.ErrorCode
	}{
		{"empty", "", cberrors.ErrCodeUnreadableFile},
		{"syntax error", "kind: [", cberrors.ErrCodeUnreadableFile},
		{"unknown field", baseRecipe + "  flavour: spicy\n", cberrors.ErrCodeUnreadableFile},
		{"two documents", baseRecipe + "---\n" + named("bar"), cberrors.ErrCodeUnreadableFile},
		{"wrong kind", strings.Replace(baseRecipe, "kind: Recipe", "kind: Package", 1), cberrors.ErrCodeUnreadableFile},
		{"wrong apiVersion", strings.Replace(baseRecipe, "v1alpha1", "v9", 1), cberrors.ErrCodeUnreadableFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test")
			require.Error(t, err)
			assert.Equal(t, tt.code, cberrors.CodeOf(err))
		})
	}
}

func TestParse_ReportsAllViolations(t *testing.T) {
	data := `kind: Recipe
apiVersion: cookbook.nvidia.com/v1alpha1
metadata: {}
spec:
  source: {}
  licenses: [MIT, MIT]
`
	_, err := Parse([]byte(data), "inline")
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeMissingField, cberrors.CodeOf(err))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "inline", ve.Source)

	fields := make([]string, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		fields = append(fields, v.Field)
	}
	assert.Equal(t, []string{"metadata.name", "spec.version", "spec.source", "spec.licenses[1]"}, fields)
}

func TestParse_Defaults(t *testing.T) {
	r, err := Parse([]byte(baseRecipe), "inline")
	require.NoError(t, err)
	assert.Equal(t, BuildTypeAutotools, r.Spec.Build.Type)
	assert.Equal(t, "origin", r.Spec.Source.Remote.Name)
}

func TestIsRecipeFile(t *testing.T) {
	assert.True(t, IsRecipeFile("zlib.recipe.yaml"))
	assert.True(t, IsRecipeFile("zlib.recipe.yml"))
	assert.False(t, IsRecipeFile("zlib.package.yaml"))
	assert.False(t, IsRecipeFile("zlib.yaml"))
	assert.False(t, IsRecipeFile("0001-fix.patch"))
}

func TestLoad_Unreadable(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	path := writeRecipe(t, t.TempDir(), "locked.recipe.yaml", baseRecipe)
	require.NoError(t, os.Chmod(path, 0o000))

	_, err := Load(filepath.Clean(path))
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeUnreadableFile, cberrors.CodeOf(err))
}
