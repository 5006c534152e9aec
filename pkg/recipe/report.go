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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
)

// ValidationStatus represents the overall validation outcome.
type ValidationStatus string

const (
	// ValidationStatusPass indicates every declaration is valid.
	ValidationStatusPass ValidationStatus = "pass"

	// ValidationStatusFail indicates one or more declarations were rejected.
	ValidationStatusFail ValidationStatus = "fail"
)

// FileStatus is the outcome for one declaration.
type FileStatus string

const (
	FileStatusPassed FileStatus = "passed"
	FileStatusFailed FileStatus = "failed"
)

// ValidationResult reports the validation of a set of declarations.
type ValidationResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Summary ValidationSummary `json:"summary" yaml:"summary"`

	// Results holds one entry per declaration, in input order.
	Results []FileValidation `json:"results" yaml:"results"`

	// References holds set-level problems: unknown deps and cycles.
	References []Violation `json:"references,omitempty" yaml:"references,omitempty"`
}

// ValidationSummary contains aggregate statistics about the validation.
type ValidationSummary struct {
	Passed   int              `json:"passed" yaml:"passed"`
	Failed   int              `json:"failed" yaml:"failed"`
	Total    int              `json:"total" yaml:"total"`
	Status   ValidationStatus `json:"status" yaml:"status"`
	Duration time.Duration    `json:"duration" yaml:"duration"`
}

// FileValidation is the outcome for one declaration.
type FileValidation struct {
	Source     string             `json:"source" yaml:"source"`
	Name       string             `json:"name,omitempty" yaml:"name,omitempty"`
	Status     FileStatus         `json:"status" yaml:"status"`
	Code       cberrors.ErrorCode `json:"code,omitempty" yaml:"code,omitempty"`
	Message    string             `json:"message,omitempty" yaml:"message,omitempty"`
	Violations []Violation        `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// NewValidationResult creates a ValidationResult stamped with toolVersion.
func NewValidationResult(toolVersion string) *ValidationResult {
	res := &ValidationResult{Results: make([]FileValidation, 0)}
	res.Init(header.KindValidationResult, toolVersion)
	return res
}

// Passed reports whether the whole set validated.
func (res *ValidationResult) Passed() bool {
	return res.Summary.Status == ValidationStatusPass
}

// Declaration is one in-memory declaration to validate.
type Declaration struct {
	Source string
	Data   []byte
}

// ValidateFiles validates the declarations at paths as one set: each file
// on its own, then duplicate names and dependency references across the set.
// Failures are reported in the result, never returned.
func ValidateFiles(ctx context.Context, paths []string, toolVersion string) *ValidationResult {
	res := NewValidationResult(toolVersion)
	start := time.Now()

	cb := NewCookbook()
	for _, p := range paths {
		data, err := ReadDeclaration(p, defaults.MaxDeclarationFileSize)
		if err != nil {
			res.Results = append(res.Results, failedValidation(p, err))
			continue
		}
		res.Results = append(res.Results, validateOne(ctx, cb, Declaration{Source: p, Data: data}))
	}
	res.References = cb.ValidateReferences()

	res.finish(start)
	return res
}

// ValidateDeclarations validates in-memory declarations as one set.
func ValidateDeclarations(ctx context.Context, decls []Declaration, toolVersion string) *ValidationResult {
	res := NewValidationResult(toolVersion)
	start := time.Now()

	cb := NewCookbook()
	for _, d := range decls {
		res.Results = append(res.Results, validateOne(ctx, cb, d))
	}
	res.References = cb.ValidateReferences()

	res.finish(start)
	return res
}

// validateOne parses d and registers it in cb so later duplicates are caught.
func validateOne(ctx context.Context, cb *Cookbook, d Declaration) FileValidation {
	if err := ctx.Err(); err != nil {
		return failedValidation(d.Source, cberrors.Wrap(cberrors.ErrCodeTimeout, "validation interrupted", err))
	}

	r, err := Parse(d.Data, d.Source)
	if err == nil {
		err = cb.Add(r)
	}
	if err != nil {
		fv := failedValidation(d.Source, err)
		fv.Name = r.Name()
		return fv
	}
	return FileValidation{Source: d.Source, Name: r.Name(), Status: FileStatusPassed}
}

func failedValidation(source string, err error) FileValidation {
	fv := FileValidation{
		Source:  source,
		Status:  FileStatusFailed,
		Code:    cberrors.CodeOf(err),
		Message: err.Error(),
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		fv.Violations = ve.Violations
	}
	return fv
}

func (res *ValidationResult) finish(start time.Time) {
	res.Summary = ValidationSummary{Total: len(res.Results), Duration: time.Since(start)}
	for _, r := range res.Results {
		if r.Status == FileStatusPassed {
			res.Summary.Passed++
		} else {
			res.Summary.Failed++
		}
	}
	res.Summary.Status = ValidationStatusPass
	if res.Summary.Failed > 0 || len(res.References) > 0 {
		res.Summary.Status = ValidationStatusFail
	}
}

// ExpandPaths replaces every directory in paths with the recipe
// declarations beneath it, sorted. Files are kept as given.
func ExpandPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to stat "+p, err)
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsRecipeFile(d.Name()) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to walk "+p, err)
		}
		slices.Sort(found)
		out = append(out, found...)
	}
	return out, nil
}
