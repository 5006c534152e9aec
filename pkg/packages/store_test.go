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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

func names(pkgs []*Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name()
	}
	return out
}

func TestStore_Embedded(t *testing.T) {
	s := embeddedStore(t)
	assert.Equal(t, []string{"base-libs", "base-libs-devel", "glib", "glib-devel", "regex", "sdk"}, s.Names())
	assert.Equal(t, 6, s.Len())
	assert.Empty(t, s.Validate())

	sdk, err := s.Get("sdk")
	require.NoError(t, err)
	assert.True(t, sdk.IsMeta())
	assert.Equal(t, "Cookbook SDK", sdk.DisplayTitle())

	devel, err := s.Get("glib-devel")
	require.NoError(t, err)
	assert.Equal(t, "Glib Devel", devel.DisplayTitle())
}

func TestStore_Deps(t *testing.T) {
	s := embeddedStore(t)

	tests := []struct {
		name      string
		pkg       string
		recursive bool
		want      []string
	}{
		{"direct", "glib-devel", false, []string{"base-libs-devel", "glib"}},
		{"recursive", "glib-devel", true, []string{"base-libs", "base-libs-devel", "glib"}},
		{"no deps", "base-libs", true, []string{}},
		{"metapackage", "sdk", false, []string{"base-libs", "base-libs-devel", "glib", "glib-devel", "regex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, err := s.Deps(tt.pkg, tt.recursive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(deps))
		})
	}

	_, err := s.Deps("nope", false)
	assert.Equal(t, cberrors.ErrCodeNotFound, cberrors.CodeOf(err))
}

func TestStore_Files(t *testing.T) {
	s := embeddedStore(t)

	files, err := s.Files("glib")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"bin/gdbus.exe",
		"bin/gspawn-win64-helper.exe",
		"bin/libgio-2.0.dll",
		"bin/libglib-2.0.dll",
		"bin/libgobject-2.0.dll",
	}, files)

	files, err = s.Files("base-libs")
	require.NoError(t, err)
	assert.Equal(t, []string{"bin/libffi.dll", "bin/libpcre2-8.dll", "bin/libz.dll"}, files)

	sdk, err := s.Files("sdk")
	require.NoError(t, err)
	assert.Contains(t, sdk, "bin/libz.dll")
	assert.Contains(t, sdk, "include/regex.h")
	assert.Contains(t, sdk, "include/glib-2.0")
	assert.IsNonDecreasing(t, sdk)

	_, err = s.Files("nope")
	assert.Equal(t, cberrors.ErrCodeNotFound, cberrors.CodeOf(err))
}

func TestStore_RecipeDeps(t *testing.T) {
	s := embeddedStore(t)

	tests := []struct {
		pkg  string
		want []string
	}{
		{"glib", []string{"glib", "libffi", "pcre2", "zlib"}},
		{"regex", []string{"mingw-regex"}},
		{"sdk", []string{"glib", "libffi", "mingw-regex", "pcre2", "zlib"}},
	}
	for _, tt := range tests {
		t.Run(tt.pkg, func(t *testing.T) {
			recipes, err := s.RecipeDeps(tt.pkg)
			require.NoError(t, err)
			got := make([]string, len(recipes))
			for i, r := range recipes {
				got[i] = r.Name()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_AddDuplicate(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Add(mustParse(t, pkgDecl("a", nil, nil))))

	err := s.Add(mustParse(t, pkgDecl("a", nil, nil)))
	require.Error(t, err)
	assert.Equal(t, cberrors.ErrCodeDuplicateName, cberrors.CodeOf(err))
}

func TestStore_Validate(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Add(mustParse(t, pkgDecl("a", []string{"b"}, []string{"zlib:libs"}))))
	require.NoError(t, s.Add(mustParse(t, pkgDecl("b", []string{"a", "ghost"}, nil))))

	vs := s.Validate()
	require.Len(t, vs, 3)
	assert.Equal(t, "a", vs[0].Package)
	assert.Equal(t, "spec.files[0]", vs[0].Field)
	assert.Equal(t, "b", vs[1].Package)
	assert.Equal(t, "spec.deps[1]", vs[1].Field)
	assert.Equal(t, "circular dependency: a -> b -> a", vs[2].Message)

	_, err := s.Files("a")
	assert.Equal(t, cberrors.ErrCodeNotFound, cberrors.CodeOf(err))
}

func TestStore_DepsCycleTerminates(t *testing.T) {
	s := NewStore(nil)
	require.NoError(t, s.Add(mustParse(t, pkgDecl("a", []string{"b"}, nil))))
	require.NoError(t, s.Add(mustParse(t, pkgDecl("b", []string{"a"}, nil))))

	deps, err := s.Deps("a", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names(deps))
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "bin/libz.dll", ArtifactPath("libs", "libz"))
	assert.Equal(t, "lib/libz.dll.a", ArtifactPath("libs", "lib/libz.dll.a"))
	assert.Equal(t, "libz", ArtifactPath("bins", "libz"))
}
