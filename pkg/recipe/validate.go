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
	"net/url"
	"path"
	"regexp"
	"strings"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// Violation is one schema or consistency problem found in a declaration.
type Violation struct {
	// Recipe names the declaration for set-level checks; empty otherwise.
	Recipe  string             `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Field   string             `json:"field" yaml:"field"`
	Code    cberrors.ErrorCode `json:"code" yaml:"code"`
	Message string             `json:"message" yaml:"message"`
}

// String formats the violation for logs and CLI output.
func (v Violation) String() string {
	if v.Recipe != "" {
		return fmt.Sprintf("%s: %s: %s", v.Recipe, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError carries every violation found in one declaration.
type ValidationError struct {
	Source     string
	Violations []Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(msgs, "; "))
}

// violationsError wraps violations in a StructuredError coded after the first one.
func violationsError(source string, violations []Violation) error {
	return cberrors.WrapWithContext(violations[0].Code,
		fmt.Sprintf("invalid recipe declaration (%d violations)", len(violations)),
		&ValidationError{Source: source, Violations: violations},
		map[string]any{"source": source})
}

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)
	checksumPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
	scpLikePattern  = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:[^/].*$`)
)

var (
	remoteSchemes  = map[string]bool{"http": true, "https": true, "git": true, "ssh": true, "file": true}
	tarballSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "file": true}
)

// Validate checks field presence and cross-field consistency. It returns
// nil for a valid recipe; validation never mutates r.
func Validate(r *Recipe) []Violation {
	if r == nil {
		return []Violation{{Field: "recipe", Code: cberrors.ErrCodeMissingField, Message: "recipe is nil"}}
	}

	var vs violations
	name := r.Name()
	switch {
	case strings.TrimSpace(name) == "":
		vs.missing("metadata.name", "name is required")
	case !namePattern.MatchString(name):
		vs.invalid("metadata.name", fmt.Sprintf("name %q must start with a letter or digit and contain only letters, digits, '.', '_', '+' or '-'", name))
	}

	if strings.TrimSpace(r.Spec.Version) == "" {
		vs.missing("spec.version", "version is required")
	}

	validateSource(&vs, r.Spec.Source)
	validateSet(&vs, "spec.licenses", r.Spec.Licenses, nil)
	validateSet(&vs, "spec.deps", r.Spec.Deps, func(dep string) string {
		if dep == name {
			return "recipe cannot depend on itself"
		}
		return ""
	})
	validateSet(&vs, "spec.patches", r.Spec.Patches, relativePathProblem)
	validateBuild(&vs, r.Spec.Build)

	for _, cat := range Categories {
		entries, _ := r.Spec.Artifacts.Category(cat)
		for i, e := range entries {
			if strings.TrimSpace(e) == "" {
				vs.invalid(fmt.Sprintf("spec.artifacts.%s[%d]", cat, i), "artifact entry is empty")
			}
		}
	}

	if len(vs) > 0 {
		recipeViolations.Add(float64(len(vs)))
		for _, v := range vs {
			recipeViolationsByCode.WithLabelValues(string(v.Code)).Inc()
		}
	}
	return vs
}

type violations []Violation

func (vs *violations) add(field string, code cberrors.ErrorCode, msg string) {
	*vs = append(*vs, Violation{Field: field, Code: code, Message: msg})
}

func (vs *violations) missing(field, msg string) {
	vs.add(field, cberrors.ErrCodeMissingField, msg)
}

func (vs *violations) invalid(field, msg string) {
	vs.add(field, cberrors.ErrCodeInvalidField, msg)
}

func (vs *violations) origin(field, msg string) {
	vs.add(field, cberrors.ErrCodeMalformedSourceOrigin, msg)
}

func validateSource(vs *violations, s Source) {
	switch {
	case s.Remote == nil && s.Tarball == nil:
		vs.origin("spec.source", "source must declare either a remote or a tarball")
		return
	case s.Remote != nil && s.Tarball != nil:
		vs.origin("spec.source", "source must declare only one of remote or tarball")
		return
	}

	if rm := s.Remote; rm != nil {
		if strings.TrimSpace(rm.URL) == "" {
			vs.origin("spec.source.remote.url", "remote requires a url")
		} else if msg := urlProblem(rm.URL, remoteSchemes, true); msg != "" {
			vs.origin("spec.source.remote.url", msg)
		}
		if strings.TrimSpace(rm.Revision) == "" {
			vs.origin("spec.source.remote.revision", "remote requires a revision (branch, tag or commit)")
		}
		return
	}

	tb := s.Tarball
	if strings.TrimSpace(tb.URL) == "" {
		vs.origin("spec.source.tarball.url", "tarball requires a url")
	} else if msg := urlProblem(tb.URL, tarballSchemes, false); msg != "" {
		vs.origin("spec.source.tarball.url", msg)
	} else if u, _ := url.Parse(tb.URL); u.Path == "" || strings.HasSuffix(u.Path, "/") {
		vs.origin("spec.source.tarball.url", "tarball url must name an archive file")
	}
	if tb.Checksum != "" && !checksumPattern.MatchString(tb.Checksum) {
		vs.invalid("spec.source.tarball.checksum", "checksum must be a lowercase hex sha256 (64 characters)")
	}
}

// urlProblem describes why raw is not an acceptable source URL, or returns "".
func urlProblem(raw string, schemes map[string]bool, allowSCP bool) string {
	if allowSCP && scpLikePattern.MatchString(raw) {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("url %q does not parse: %v", raw, err)
	}
	if !schemes[u.Scheme] {
		return fmt.Sprintf("url %q has unsupported scheme %q", raw, u.Scheme)
	}
	if u.Scheme != "file" && u.Host == "" {
		return fmt.Sprintf("url %q has no host", raw)
	}
	return ""
}

func relativePathProblem(p string) string {
	if path.IsAbs(p) {
		return "path must be relative"
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "path must not contain '..'"
		}
	}
	return ""
}

// validateSet rejects empty and repeated entries, plus whatever check reports.
func validateSet(vs *violations, field string, entries []string, check func(string) string) {
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		f := fmt.Sprintf("%s[%d]", field, i)
		if strings.TrimSpace(e) == "" {
			vs.invalid(f, "entry is empty")
			continue
		}
		if seen[e] {
			vs.invalid(f, fmt.Sprintf("%q is listed more than once", e))
			continue
		}
		seen[e] = true
		if check != nil {
			if msg := check(e); msg != "" {
				vs.invalid(f, msg)
			}
		}
	}
}

func validateBuild(vs *violations, b Build) {
	if !b.Type.IsValid() {
		vs.invalid("spec.build.type", fmt.Sprintf("unknown build type %q", b.Type))
		return
	}

	if b.AutoreconfSh != "" && !b.Autoreconf {
		vs.invalid("spec.build.autoreconfSh", "autoreconfSh is only used when autoreconf is enabled")
	}

	if b.Type != BuildTypeNone {
		if b.Autoreconf && b.Type != BuildTypeAutotools && b.Type != BuildTypeCustom {
			vs.invalid("spec.build.autoreconf", fmt.Sprintf("autoreconf does not apply to %s builds", b.Type))
		}
		if b.ConfigureOptions != "" && b.ConfigSh == "" && (b.Type == BuildTypeMakefile || b.Type == BuildTypeCustom) {
			vs.invalid("spec.build.configureOptions", fmt.Sprintf("%s builds have no configure step unless configSh is set", b.Type))
		}
		return
	}

	// No local build: build toggles have nothing to act on.
	toggles := []struct {
		field string
		set   bool
	}{
		{"spec.build.autoreconf", b.Autoreconf},
		{"spec.build.configSh", b.ConfigSh != ""},
		{"spec.build.configureOptions", b.ConfigureOptions != ""},
		{"spec.build.makeCommand", b.MakeCommand != ""},
		{"spec.build.makeInstallCommand", b.MakeInstallCommand != ""},
		{"spec.build.allowParallelBuild", b.AllowParallelBuild},
	}
	for _, t := range toggles {
		if t.set {
			vs.invalid(t.field, "requires a local build step but build type is none")
		}
	}
}
