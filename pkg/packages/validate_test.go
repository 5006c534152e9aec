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
	"reflect"
	"testing"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
)

func TestParseFileRef(t *testing.T) {
	tests := []struct {
		entry string
		want  FileRef
		ok    bool
	}{
		{"zlib:libs", FileRef{Recipe: "zlib", Categories: []string{"libs"}}, true},
		{"glib:libs:bins", FileRef{Recipe: "glib", Categories: []string{"libs", "bins"}}, true},
		{"zlib", FileRef{}, false},
		{":libs", FileRef{}, false},
		{"zlib:", FileRef{}, false},
		{"zlib:libs::bins", FileRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			got, ok := ParseFileRef(tt.entry)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFileRef(%q) = %+v, %v; want %+v, %v", tt.entry, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Package {
		return &Package{
			Header: *header.New(header.WithKind(header.KindPackage), header.WithName("glib")),
			Spec: Spec{
				ShortDesc: "GLib",
				Version:   "2.82.4",
				Deps:      []string{"base-libs"},
				Files:     []string{"glib:libs:bins"},
			},
		}
	}
	meta := func() *Package {
		return &Package{
			Header: *header.New(header.WithKind(header.KindMetaPackage), header.WithName("sdk")),
			Spec: Spec{
				ShortDesc:  "SDK",
				Version:    "1.0",
				Packages:   []Member{{Name: "glib", Required: true}},
				InstallDir: map[string]string{"windows": "sdk"},
			},
		}
	}

	tests := []struct {
		name      string
		pkg       func() *Package
		wantField string
		wantCode  cberrors.ErrorCode
	}{
		{name: "valid package", pkg: valid},
		{name: "valid metapackage", pkg: meta},
		{
			name:      "missing name",
			pkg:       func() *Package { p := valid(); p.Metadata = nil; return p },
			wantField: "metadata.name",
			wantCode:  cberrors.ErrCodeMissingField,
		},
		{
			name:      "missing version",
			pkg:       func() *Package { p := valid(); p.Spec.Version = ""; return p },
			wantField: "spec.version",
			wantCode:  cberrors.ErrCodeMissingField,
		},
		{
			name:      "bad uuid",
			pkg:       func() *Package { p := valid(); p.Spec.UUID = "not-a-uuid"; return p },
			wantField: "spec.uuid",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "relative url",
			pkg:       func() *Package { p := valid(); p.Spec.URL = "glib.org"; return p },
			wantField: "spec.url",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "self dependency",
			pkg:       func() *Package { p := valid(); p.Spec.Deps = []string{"glib"}; return p },
			wantField: "spec.deps[0]",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "malformed file entry",
			pkg:       func() *Package { p := valid(); p.Spec.Files = []string{"glib"}; return p },
			wantField: "spec.files[0]",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "unknown category",
			pkg:       func() *Package { p := valid(); p.Spec.Files = []string{"glib:docs"}; return p },
			wantField: "spec.files[0]",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "package with members",
			pkg:       func() *Package { p := valid(); p.Spec.Packages = []Member{{Name: "x"}}; return p },
			wantField: "spec.packages",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "metapackage without members",
			pkg:       func() *Package { p := meta(); p.Spec.Packages = nil; return p },
			wantField: "spec.packages",
			wantCode:  cberrors.ErrCodeMissingField,
		},
		{
			name:      "metapackage with files",
			pkg:       func() *Package { p := meta(); p.Spec.Files = []string{"glib:libs"}; return p },
			wantField: "spec.files",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name: "duplicate member",
			pkg: func() *Package {
				p := meta()
				p.Spec.Packages = append(p.Spec.Packages, Member{Name: "glib"})
				return p
			},
			wantField: "spec.packages[1]",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
		{
			name:      "empty install dir",
			pkg:       func() *Package { p := meta(); p.Spec.InstallDir["windows"] = " "; return p },
			wantField: "spec.installDir.windows",
			wantCode:  cberrors.ErrCodeInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := Validate(tt.pkg())
			if tt.wantField == "" {
				if len(vs) != 0 {
					t.Errorf("Validate() = %v, want no violations", vs)
				}
				return
			}
			if len(vs) == 0 {
				t.Fatalf("Validate() found no violations, want %s", tt.wantField)
			}
			if vs[0].Field != tt.wantField || vs[0].Code != tt.wantCode {
				t.Errorf("Validate() first violation = %s %s, want %s %s", vs[0].Field, vs[0].Code, tt.wantField, tt.wantCode)
			}
		})
	}
}

func TestParse(t *testing.T) {
	p := mustParse(t, pkgDecl("glib", []string{"base-libs"}, []string{"glib:libs"}))
	if p.Name() != "glib" || p.IsMeta() || p.Source() != "test" {
		t.Errorf("Parse() = name %q meta %v source %q", p.Name(), p.IsMeta(), p.Source())
	}

	tests := []struct {
		name string
		data string
		code cberrors.ErrorCode
	}{
		{"empty", "", cberrors.ErrCodeUnreadableFile},
		{"recipe kind", "kind: Recipe\napiVersion: cookbook.nvidia.com/v1alpha1\n", cberrors.ErrCodeUnreadableFile},
		{"unknown field", basePackage + "  color: blue\n", cberrors.ErrCodeUnreadableFile},
		{"two documents", basePackage + "---\n" + basePackage, cberrors.ErrCodeUnreadableFile},
		{"invalid", pkgDecl("foo", nil, []string{"zlib"}), cberrors.ErrCodeInvalidField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "test")
			if got := cberrors.CodeOf(err); err == nil || got != tt.code {
				t.Errorf("Parse() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestIsPackageFile(t *testing.T) {
	tests := map[string]bool{
		"glib.package.yaml": true,
		"glib.package.yml":  true,
		"glib.recipe.yaml":  false,
		"glib.package":      false,
	}
	for name, want := range tests {
		if got := IsPackageFile(name); got != want {
			t.Errorf("IsPackageFile(%q) = %v, want %v", name, got, want)
		}
	}
}
