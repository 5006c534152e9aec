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

package oci

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// URIScheme prefixes registry targets, e.g. "oci://ghcr.io/nvidia/cookbook:v1".
const URIScheme = "oci://"

// Reference is a parsed publish target: either a registry reference or a
// local directory.
type Reference struct {
	IsOCI      bool
	Registry   string
	Repository string
	// Tag is empty when the target carried none; callers apply a default.
	Tag       string
	LocalPath string
}

// ParseOutputTarget parses an oci:// URI into its parts. Any other value
// is treated as a local directory.
func ParseOutputTarget(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Reference{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeInvalidRequest, "invalid OCI reference", err,
			map[string]any{"target": target})
	}
	if _, ok := ref.(reference.Digested); ok {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest, "digest references cannot be published to",
			map[string]any{"target": target})
	}

	out := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		out.Tag = tagged.Tag()
	}
	if err := ValidateRegistryReference(out.Registry, out.Repository); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	return URIScheme + r.ImageReference()
}

// ImageReference returns the reference without the oci:// scheme, or ""
// for local targets.
func (r *Reference) ImageReference() string {
	if !r.IsOCI {
		return ""
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy carrying tag. Local references are returned as is.
func (r *Reference) WithTag(tag string) *Reference {
	if !r.IsOCI {
		return r
	}
	c := *r
	c.Tag = tag
	return &c
}

// OutputConfig configures PackageAndPush.
type OutputConfig struct {
	SourceDir   string
	OutputDir   string
	Reference   *Reference
	Version     string
	PlainHTTP   bool
	InsecureTLS bool
	// Annotations override the defaults from DefaultAnnotations.
	Annotations map[string]string
	// ReproducibleTimestamp fixes the manifest creation time.
	ReproducibleTimestamp string
}

// PackageAndPushResult describes a packaged and pushed cookbook.
type PackageAndPushResult struct {
	Digest    string
	Reference string
	StorePath string
}

// DefaultAnnotations returns the manifest annotations for a cookbook of
// the given version.
func DefaultAnnotations(version string) map[string]string {
	return map[string]string{
		ociv1.AnnotationVersion: version,
		ociv1.AnnotationVendor:  "NVIDIA",
		ociv1.AnnotationTitle:   "Cookbook",
		ociv1.AnnotationSource:  "https://github.com/NVIDIA/cookbook",
	}
}

// PackageAndPush packages the source directory into a local OCI layout and
// pushes it to the referenced registry.
func PackageAndPush(ctx context.Context, cfg OutputConfig) (*PackageAndPushResult, error) {
	if cfg.Reference == nil || !cfg.Reference.IsOCI {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest, "OCI reference is required")
	}
	if cfg.Reference.Tag == "" {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest, "tag is required for OCI packaging")
	}

	absOutput, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to resolve output directory", err)
	}

	annotations := DefaultAnnotations(cfg.Version)
	maps.Copy(annotations, cfg.Annotations)

	slog.Info("packaging cookbook",
		"registry", cfg.Reference.Registry,
		"repository", cfg.Reference.Repository,
		"tag", cfg.Reference.Tag)

	pkg, err := Package(ctx, PackageOptions{
		SourceDir:             cfg.SourceDir,
		OutputDir:             absOutput,
		Registry:              cfg.Reference.Registry,
		Repository:            cfg.Reference.Repository,
		Tag:                   cfg.Reference.Tag,
		Annotations:           annotations,
		ReproducibleTimestamp: cfg.ReproducibleTimestamp,
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("cookbook packaged", "digest", pkg.Digest, "store", pkg.StorePath)

	pushed, err := PushFromStore(ctx, pkg.StorePath, PushOptions{
		Registry:    cfg.Reference.Registry,
		Repository:  cfg.Reference.Repository,
		Tag:         cfg.Reference.Tag,
		PlainHTTP:   cfg.PlainHTTP,
		InsecureTLS: cfg.InsecureTLS,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("cookbook published", "reference", pushed.Reference, "digest", pushed.Digest)

	return &PackageAndPushResult{
		Digest:    pushed.Digest,
		Reference: pushed.Reference,
		StorePath: pkg.StorePath,
	}, nil
}
