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
	"maps"
	"slices"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	"github.com/NVIDIA/cookbook/pkg/header"
)

// BuildType selects how the orchestrator drives the local build.
type BuildType string

const (
	BuildTypeAutotools BuildType = "autotools"
	BuildTypeCMake     BuildType = "cmake"
	BuildTypeMeson     BuildType = "meson"
	BuildTypeMakefile  BuildType = "makefile"
	BuildTypeCustom    BuildType = "custom"
	BuildTypeNone      BuildType = "none"
)

// IsValid reports whether t is a recognized build type.
func (t BuildType) IsValid() bool {
	switch t {
	case BuildTypeAutotools, BuildTypeCMake, BuildTypeMeson, BuildTypeMakefile, BuildTypeCustom, BuildTypeNone:
		return true
	default:
		return false
	}
}

// SourceKind names the two supported source origins.
type SourceKind string

const (
	SourceKindRemote  SourceKind = "remote"
	SourceKindTarball SourceKind = "tarball"
)

// Artifact categories a package file entry may reference.
const (
	CategoryLibs    = "libs"
	CategoryHeaders = "headers"
	CategoryDevel   = "devel"
	CategoryBins    = "bins"
)

// Categories lists the artifact categories in declaration order.
var Categories = []string{CategoryLibs, CategoryHeaders, CategoryDevel, CategoryBins}

// Recipe is one third-party library declaration.
// A Recipe handed out by a Cookbook must be treated as read-only.
type Recipe struct {
	header.Header `json:",inline" yaml:",inline"`

	Spec Spec `json:"spec" yaml:"spec"`

	// source records where the declaration was read from.
	source string
}

// Spec holds the declared attributes of a recipe.
type Spec struct {
	// Version is the upstream release being built.
	Version string `json:"version" yaml:"version"`

	// Licenses is the set of licenses the library is distributed under.
	Licenses []string `json:"licenses,omitempty" yaml:"licenses,omitempty"`

	// Deps names other recipes this one builds against. Only checked for
	// reference integrity; no build order is derived from it here.
	Deps []string `json:"deps,omitempty" yaml:"deps,omitempty"`

	Source Source `json:"source" yaml:"source"`

	// Patches are applied after fetch, in the listed order.
	Patches []string `json:"patches,omitempty" yaml:"patches,omitempty"`

	Build Build `json:"build" yaml:"build,omitempty"`

	Artifacts Artifacts `json:"artifacts" yaml:"artifacts,omitempty"`
}

// Source is the origin of the upstream code. Exactly one of Remote and
// Tarball is set on a valid recipe.
type Source struct {
	Remote  *Remote  `json:"remote,omitempty" yaml:"remote,omitempty"`
	Tarball *Tarball `json:"tarball,omitempty" yaml:"tarball,omitempty"`
}

// Kind returns the declared source kind, or "" when none or both are set.
func (s Source) Kind() SourceKind {
	switch {
	case s.Remote != nil && s.Tarball == nil:
		return SourceKindRemote
	case s.Tarball != nil && s.Remote == nil:
		return SourceKindTarball
	default:
		return ""
	}
}

// Remote is a version-control checkout.
type Remote struct {
	// Name identifies the remote, "origin" when omitted.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url" yaml:"url"`

	// Revision is a branch, tag or commit.
	Revision string `json:"revision" yaml:"revision"`
}

// Tarball is a release archive download.
type Tarball struct {
	URL string `json:"url" yaml:"url"`

	// Checksum is the hex sha256 of the archive, when known.
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// Build carries the build configuration toggles.
type Build struct {
	Type BuildType `json:"type" yaml:"type,omitempty"`

	// Autoreconf regenerates the autotools scripts before configure.
	Autoreconf   bool   `json:"autoreconf,omitempty" yaml:"autoreconf,omitempty"`
	AutoreconfSh string `json:"autoreconfSh,omitempty" yaml:"autoreconfSh,omitempty"`

	// ConfigSh is the configure invocation; ConfigureOptions is appended to it.
	ConfigSh         string `json:"configSh,omitempty" yaml:"configSh,omitempty"`
	ConfigureOptions string `json:"configureOptions,omitempty" yaml:"configureOptions,omitempty"`

	MakeCommand        string `json:"makeCommand,omitempty" yaml:"makeCommand,omitempty"`
	MakeInstallCommand string `json:"makeInstallCommand,omitempty" yaml:"makeInstallCommand,omitempty"`

	AllowParallelBuild bool `json:"allowParallelBuild,omitempty" yaml:"allowParallelBuild,omitempty"`
}

// Artifacts lists what the build produces, by category.
type Artifacts struct {
	Libs    []string `json:"libs,omitempty" yaml:"libs,omitempty"`
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Devel   []string `json:"devel,omitempty" yaml:"devel,omitempty"`
	Bins    []string `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// Category returns the entries of one artifact category.
func (a Artifacts) Category(name string) ([]string, bool) {
	switch name {
	case CategoryLibs:
		return a.Libs, true
	case CategoryHeaders:
		return a.Headers, true
	case CategoryDevel:
		return a.Devel, true
	case CategoryBins:
		return a.Bins, true
	default:
		return nil, false
	}
}

// All returns every artifact in category order.
func (a Artifacts) All() []string {
	out := make([]string, 0, len(a.Libs)+len(a.Headers)+len(a.Devel)+len(a.Bins))
	out = append(out, a.Libs...)
	out = append(out, a.Headers...)
	out = append(out, a.Devel...)
	return append(out, a.Bins...)
}

// Name returns the recipe name from metadata.
func (r *Recipe) Name() string {
	if r == nil {
		return ""
	}
	return r.Header.Name()
}

// Source returns where the declaration was read from.
func (r *Recipe) Source() string {
	if r == nil {
		return ""
	}
	return r.source
}

// Clone returns a deep copy of r.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	c := *r
	c.Metadata = maps.Clone(r.Metadata)
	c.Spec.Licenses = slices.Clone(r.Spec.Licenses)
	c.Spec.Deps = slices.Clone(r.Spec.Deps)
	c.Spec.Patches = slices.Clone(r.Spec.Patches)
	if r.Spec.Source.Remote != nil {
		remote := *r.Spec.Source.Remote
		c.Spec.Source.Remote = &remote
	}
	if r.Spec.Source.Tarball != nil {
		tarball := *r.Spec.Source.Tarball
		c.Spec.Source.Tarball = &tarball
	}
	c.Spec.Artifacts = Artifacts{
		Libs:    slices.Clone(r.Spec.Artifacts.Libs),
		Headers: slices.Clone(r.Spec.Artifacts.Headers),
		Devel:   slices.Clone(r.Spec.Artifacts.Devel),
		Bins:    slices.Clone(r.Spec.Artifacts.Bins),
	}
	return &c
}

// applyDefaults fills the values a declaration may omit.
func (r *Recipe) applyDefaults() {
	if r.Spec.Build.Type == "" {
		r.Spec.Build.Type = BuildTypeAutotools
	}
	if r.Spec.Source.Remote != nil && r.Spec.Source.Remote.Name == "" {
		r.Spec.Source.Remote.Name = defaults.DefaultRemoteName
	}
}
