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
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/NVIDIA/cookbook/pkg/header"
)

// Package is one installable grouping of recipe artifacts, declared with
// kind Package, or an installer grouping other packages, declared with kind
// MetaPackage. A Package handed out by a Store must be treated as read-only.
type Package struct {
	header.Header `json:",inline" yaml:",inline"`

	Spec Spec `json:"spec" yaml:"spec"`

	source string
}

// Spec holds the declared attributes of a package.
type Spec struct {
	ShortDesc string `json:"shortdesc" yaml:"shortdesc"`
	LongDesc  string `json:"longdesc,omitempty" yaml:"longdesc,omitempty"`
	Version   string `json:"version" yaml:"version"`
	Vendor    string `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
	License   string `json:"license,omitempty" yaml:"license,omitempty"`

	// UUID is the stable WiX package or upgrade code. A fresh one is
	// generated for every merge module when empty.
	UUID string `json:"uuid,omitempty" yaml:"uuid,omitempty"`

	// Deps names other packages this one requires.
	Deps []string `json:"deps,omitempty" yaml:"deps,omitempty"`

	// Files are "recipe:category[:category...]" references to recipe artifacts.
	Files []string `json:"files,omitempty" yaml:"files,omitempty"`

	// Title is the installer title of a MetaPackage.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Packages lists the members of a MetaPackage.
	Packages []Member `json:"packages,omitempty" yaml:"packages,omitempty"`

	// InstallDir maps a target platform to the installation directory.
	InstallDir map[string]string `json:"installDir,omitempty" yaml:"installDir,omitempty"`
}

// Member is one package of a MetaPackage.
type Member struct {
	Name string `json:"name" yaml:"name"`

	// Required members cannot be deselected in the installer.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Selected members are installed by default.
	Selected bool `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// FileRef is a parsed file entry.
type FileRef struct {
	Recipe     string
	Categories []string
}

// ParseFileRef splits a "recipe:category[:category...]" entry. It reports
// false when the entry has no recipe or no category.
func ParseFileRef(entry string) (FileRef, bool) {
	parts := strings.Split(entry, ":")
	if len(parts) < 2 || parts[0] == "" {
		return FileRef{}, false
	}
	for _, c := range parts[1:] {
		if c == "" {
			return FileRef{}, false
		}
	}
	return FileRef{Recipe: parts[0], Categories: parts[1:]}, true
}

// Name returns the package name from metadata.
func (p *Package) Name() string {
	if p == nil {
		return ""
	}
	return p.Header.Name()
}

// Source returns where the declaration was read from.
func (p *Package) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// IsMeta reports whether p is a MetaPackage.
func (p *Package) IsMeta() bool {
	return p != nil && p.Kind == header.KindMetaPackage
}

// MemberNames returns the names of a MetaPackage's members in declared order.
func (p *Package) MemberNames() []string {
	names := make([]string, len(p.Spec.Packages))
	for i, m := range p.Spec.Packages {
		names[i] = m.Name
	}
	return names
}

// DisplayTitle returns the installer title. Without a declared title the
// name is title-cased with dashes and underscores read as spaces.
func (p *Package) DisplayTitle() string {
	if p.Spec.Title != "" {
		return p.Spec.Title
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(p.Name())
	return cases.Title(language.English).String(words)
}

// Clone returns a deep copy of p.
func (p *Package) Clone() *Package {
	if p == nil {
		return nil
	}
	c := *p
	c.Metadata = maps.Clone(p.Metadata)
	c.Spec.Deps = slices.Clone(p.Spec.Deps)
	c.Spec.Files = slices.Clone(p.Spec.Files)
	c.Spec.Packages = slices.Clone(p.Spec.Packages)
	c.Spec.InstallDir = maps.Clone(p.Spec.InstallDir)
	return &c
}
