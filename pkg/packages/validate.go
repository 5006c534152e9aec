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
	"fmt"
	"maps"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

// Violation is one schema or reference problem found in a package declaration.
type Violation struct {
	// Package names the declaration for store-level checks; empty otherwise.
	Package string             `json:"package,omitempty" yaml:"package,omitempty"`
	Field   string             `json:"field" yaml:"field"`
	Code    cberrors.ErrorCode `json:"code" yaml:"code"`
	Message string             `json:"message" yaml:"message"`
}

func (v Violation) String() string {
	if v.Package != "" {
		return fmt.Sprintf("%s: %s: %s", v.Package, v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationError carries every violation found in one declaration.
type ValidationError struct {
	Source     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(msgs, "; "))
}

func violationsError(source string, vs []Violation) error {
	return cberrors.WrapWithContext(vs[0].Code,
		fmt.Sprintf("invalid package declaration (%d violations)", len(vs)),
		&ValidationError{Source: source, Violations: vs},
		map[string]any{"source": source})
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._+-]*$`)

// Validate checks one declaration on its own. References to other packages
// and recipes are checked by Store.Validate.
func Validate(p *Package) []Violation {
	if p == nil {
		return []Violation{{Field: "package", Code: cberrors.ErrCodeMissingField, Message: "package is nil"}}
	}

	var vs violations
	name := p.Name()
	switch {
	case strings.TrimSpace(name) == "":
		vs.missing("metadata.name", "name is required")
	case !namePattern.MatchString(name):
		vs.invalid("metadata.name", fmt.Sprintf("name %q must start with a letter or digit and contain only letters, digits, '.', '_', '+' or '-'", name))
	}

	if strings.TrimSpace(p.Spec.Version) == "" {
		vs.missing("spec.version", "version is required")
	}
	if strings.TrimSpace(p.Spec.ShortDesc) == "" {
		vs.missing("spec.shortdesc", "short description is required")
	}
	if p.Spec.UUID != "" {
		if _, err := uuid.Parse(p.Spec.UUID); err != nil {
			vs.invalid("spec.uuid", fmt.Sprintf("uuid %q is not valid: %v", p.Spec.UUID, err))
		}
	}
	if p.Spec.URL != "" {
		if u, err := url.Parse(p.Spec.URL); err != nil || u.Scheme == "" || u.Host == "" {
			vs.invalid("spec.url", fmt.Sprintf("url %q must be absolute", p.Spec.URL))
		}
	}

	validateNames(&vs, "spec.deps", p.Spec.Deps, name)

	if p.IsMeta() {
		validateMeta(&vs, p)
	} else {
		validateFiles(&vs, p.Spec.Files)
		if len(p.Spec.Packages) > 0 {
			vs.invalid("spec.packages", "only a MetaPackage lists packages")
		}
		if len(p.Spec.InstallDir) > 0 {
			vs.invalid("spec.installDir", "only a MetaPackage declares an install directory")
		}
	}
	return vs
}

func validateMeta(vs *violations, p *Package) {
	if len(p.Spec.Files) > 0 {
		vs.invalid("spec.files", "a MetaPackage takes its files from its packages")
	}
	if len(p.Spec.Packages) == 0 {
		vs.missing("spec.packages", "a MetaPackage lists at least one package")
	}
	validateNames(vs, "spec.packages", p.MemberNames(), p.Name())

	for _, platform := range slices.Sorted(maps.Keys(p.Spec.InstallDir)) {
		if strings.TrimSpace(p.Spec.InstallDir[platform]) == "" {
			vs.invalid("spec.installDir."+platform, "install directory is empty")
		}
	}
}

func validateFiles(vs *violations, files []string) {
	seen := make(map[string]bool, len(files))
	for i, entry := range files {
		field := fmt.Sprintf("spec.files[%d]", i)
		ref, ok := ParseFileRef(entry)
		if !ok {
			vs.invalid(field, fmt.Sprintf("entry %q must be recipe:category[:category...]", entry))
			continue
		}
		for _, c := range ref.Categories {
			if !slices.Contains(recipe.Categories, c) {
				vs.invalid(field, fmt.Sprintf("unknown artifact category %q (want one of %s)", c, strings.Join(recipe.Categories, ", ")))
			}
		}
		if seen[entry] {
			vs.invalid(field, fmt.Sprintf("duplicate entry %q", entry))
		}
		seen[entry] = true
	}
}

func validateNames(vs *violations, field string, names []string, self string) {
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		f := fmt.Sprintf("%s[%d]", field, i)
		switch {
		case strings.TrimSpace(n) == "":
			vs.invalid(f, "name is empty")
		case n == self:
			vs.invalid(f, "package cannot reference itself")
		case seen[n]:
			vs.invalid(f, fmt.Sprintf("duplicate name %q", n))
		}
		seen[n] = true
	}
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
