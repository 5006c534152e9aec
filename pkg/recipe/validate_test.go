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
	"slices"
	"strings"
	"testing"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
)

func validRemote() *Recipe {
	r := &Recipe{
		Header: *header.New(header.WithKind(header.KindRecipe), header.WithName("foo")),
		Spec: Spec{
			Version: "1.0",
			Source:  Source{Remote: &Remote{Name: "origin", URL: "https://example.com/foo.git", Revision: "v1.0"}},
			Build:   Build{Type: BuildTypeAutotools},
		},
	}
	return r
}

func validTarball() *Recipe {
	r := validRemote()
	r.Spec.Source = Source{Tarball: &Tarball{URL: "https://example.com/foo-1.0.tar.gz"}}
	return r
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		recipe func() *Recipe
		field  string
		code   cberrors.ErrorCode
	}{
		{"valid remote", validRemote, "", ""},
		{"valid tarball", validTarball, "", ""},
		{"valid scp remote", func() *Recipe {
			r := validRemote()
			r.Spec.Source.Remote.URL = "git@github.com:foo/foo.git"
			return r
		}, "", ""},
		{"valid tarball checksum", func() *Recipe {
			r := validTarball()
			r.Spec.Source.Tarball.Checksum = "38ef96b8dfe510d42707d9c781877914792541133e1870841463bfa73f883e32"
			return r
		}, "", ""},
		{"missing name", func() *Recipe {
			r := validRemote()
			r.Metadata = nil
			return r
		}, "metadata.name", cberrors.ErrCodeMissingField},
		{"bad name", func() *Recipe {
			r := validRemote()
			r.Metadata["name"] = "../etc"
			return r
		}, "metadata.name", cberrors.ErrCodeInvalidField},
		{"missing version", func() *Recipe {
			r := validRemote()
			r.Spec.Version = " "
			return r
		}, "spec.version", cberrors.ErrCodeMissingField},
		{"no source", func() *Recipe {
			r := validRemote()
			r.Spec.Source = Source{}
			return r
		}, "spec.source", cberrors.ErrCodeMalformedSourceOrigin},
		{"both sources", func() *Recipe {
			r := validRemote()
			r.Spec.Source.Tarball = &Tarball{URL: "https://example.com/foo.tar.gz"}
			return r
		}, "spec.source", cberrors.ErrCodeMalformedSourceOrigin},
		{"remote without revision", func() *Recipe {
			r := validRemote()
			r.Spec.Source.Remote.Revision = ""
			return r
		}, "spec.source.remote.revision", cberrors.ErrCodeMalformedSourceOrigin},
		{"remote without url", func() *Recipe {
			r := validRemote()
			r.Spec.Source.Remote.URL = ""
			return r
		}, "spec.source.remote.url", cberrors.ErrCodeMalformedSourceOrigin},
		{"remote bad scheme", func() *Recipe {
			r := validRemote()
			r.Spec.Source.Remote.URL = "svn://example.com/foo"
			return r
		}, "spec.source.remote.url", cberrors.ErrCodeMalformedSourceOrigin},
		{"tarball without url", func() *Recipe {
			r := validTarball()
			r.Spec.Source.Tarball.URL = ""
			return r
		}, "spec.source.tarball.url", cberrors.ErrCodeMalformedSourceOrigin},
		{"tarball without host", func() *Recipe {
			r := validTarball()
			r.Spec.Source.Tarball.URL = "https:///foo.tar.gz"
			return r
		}, "spec.source.tarball.url", cberrors.ErrCodeMalformedSourceOrigin},
		{"tarball directory url", func() *Recipe {
			r := validTarball()
			r.Spec.Source.Tarball.URL = "https://example.com/releases/"
			return r
		}, "spec.source.tarball.url", cberrors.ErrCodeMalformedSourceOrigin},
		{"tarball bad checksum", func() *Recipe {
			r := validTarball()
			r.Spec.Source.Tarball.Checksum = "abc"
			return r
		}, "spec.source.tarball.checksum", cberrors.ErrCodeInvalidField},
		{"duplicate license", func() *Recipe {
			r := validRemote()
			r.Spec.Licenses = []string{"MIT", "MIT"}
			return r
		}, "spec.licenses[1]", cberrors.ErrCodeInvalidField},
		{"empty dep", func() *Recipe {
			r := validRemote()
			r.Spec.Deps = []string{""}
			return r
		}, "spec.deps[0]", cberrors.ErrCodeInvalidField},
		{"self dep", func() *Recipe {
			r := validRemote()
			r.Spec.Deps = []string{"foo"}
			return r
		}, "spec.deps[0]", cberrors.ErrCodeInvalidField},
		{"absolute patch", func() *Recipe {
			r := validRemote()
			r.Spec.Patches = []string{"/tmp/x.patch"}
			return r
		}, "spec.patches[0]", cberrors.ErrCodeInvalidField},
		{"escaping patch", func() *Recipe {
			r := validRemote()
			r.Spec.Patches = []string{"foo/../../x.patch"}
			return r
		}, "spec.patches[0]", cberrors.ErrCodeInvalidField},
		{"duplicate patch", func() *Recipe {
			r := validRemote()
			r.Spec.Patches = []string{"a.patch", "a.patch"}
			return r
		}, "spec.patches[1]", cberrors.ErrCodeInvalidField},
		{"unknown build type", func() *Recipe {
			r := validRemote()
			r.Spec.Build.Type = "bazel"
			return r
		}, "spec.build.type", cberrors.ErrCodeInvalidField},
		{"autoreconfSh without autoreconf", func() *Recipe {
			r := validRemote()
			r.Spec.Build.AutoreconfSh = "./autogen.sh"
			return r
		}, "spec.build.autoreconfSh", cberrors.ErrCodeInvalidField},
		{"autoreconf on cmake", func() *Recipe {
			r := validRemote()
			r.Spec.Build = Build{Type: BuildTypeCMake, Autoreconf: true}
			return r
		}, "spec.build.autoreconf", cberrors.ErrCodeInvalidField},
		{"configureOptions on makefile", func() *Recipe {
			r := validRemote()
			r.Spec.Build = Build{Type: BuildTypeMakefile, ConfigureOptions: "--x"}
			return r
		}, "spec.build.configureOptions", cberrors.ErrCodeInvalidField},
		{"configSh with no local build", func() *Recipe {
			r := validRemote()
			r.Spec.Build = Build{Type: BuildTypeNone, ConfigSh: "./configure"}
			return r
		}, "spec.build.configSh", cberrors.ErrCodeInvalidField},
		{"empty artifact", func() *Recipe {
			r := validRemote()
			r.Spec.Artifacts.Headers = []string{""}
			return r
		}, "spec.artifacts.headers[0]", cberrors.ErrCodeInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := Validate(tt.recipe())
			if tt.field == "" {
				if len(vs) != 0 {
					t.Errorf("Validate() = %v, want no violations", vs)
				}
				return
			}
			if len(vs) == 0 {
				t.Fatalf("Validate() found no violations, want %s", tt.field)
			}
			if vs[0].Field != tt.field || vs[0].Code != tt.code {
				t.Errorf("Validate() first violation = %s %s, want %s %s (all: %v)", vs[0].Field, vs[0].Code, tt.field, tt.code, vs)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	vs := Validate(nil)
	if len(vs) != 1 || vs[0].Code != cberrors.ErrCodeMissingField {
		t.Errorf("Validate(nil) = %v, want one MISSING_FIELD violation", vs)
	}
}

func TestValidate_BuildNoneReportsEveryToggle(t *testing.T) {
	r := validRemote()
	r.Spec.Build = Build{
		Type:               BuildTypeNone,
		Autoreconf:         true,
		ConfigSh:           "./configure",
		ConfigureOptions:   "--x",
		MakeCommand:        "make",
		MakeInstallCommand: "make install",
		AllowParallelBuild: true,
	}

	vs := Validate(r)
	fields := make([]string, 0, len(vs))
	for _, v := range vs {
		fields = append(fields, v.Field)
	}
	want := []string{
		"spec.build.autoreconf",
		"spec.build.configSh",
		"spec.build.configureOptions",
		"spec.build.makeCommand",
		"spec.build.makeInstallCommand",
		"spec.build.allowParallelBuild",
	}
	if !slices.Equal(fields, want) {
		t.Errorf("violation fields = %v, want %v", fields, want)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	r := validRemote()
	r.Spec.Build.Type = ""
	_ = Validate(r)
	if r.Spec.Build.Type != "" {
		t.Errorf("Validate() changed build type to %q", r.Spec.Build.Type)
	}
}

func TestViolation_String(t *testing.T) {
	v := Violation{Recipe: "zlib", Field: "spec.version", Code: cberrors.ErrCodeMissingField, Message: "version is required"}
	for _, part := range []string{"spec.version", "version is required"} {
		if !strings.Contains(v.String(), part) {
			t.Errorf("String() = %q, want it to contain %q", v.String(), part)
		}
	}
}
