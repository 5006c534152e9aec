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
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/distribution/reference"
	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/content/oci"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// ArtifactType is the media type of a published cookbook.
const ArtifactType = "application/vnd.nvidia.cookbook.artifact"

// LayoutDirName is the directory created under PackageOptions.OutputDir
// holding the OCI image layout.
const LayoutDirName = "oci-layout"

// PackageOptions configures local packaging of a cookbook directory.
type PackageOptions struct {
	// SourceDir is the cookbook directory to package.
	SourceDir string
	// OutputDir receives the OCI image layout.
	OutputDir string
	// Registry and Repository name the eventual remote location.
	Registry   string
	Repository string
	// Tag is the manifest tag in the layout.
	Tag string
	// Annotations are added to the manifest.
	Annotations map[string]string
	// ReproducibleTimestamp fixes the manifest creation time.
	ReproducibleTimestamp string
}

// PackageResult describes a locally packaged artifact.
type PackageResult struct {
	Digest    string
	Reference string
	StorePath string
}

// PushOptions configures a push to a remote registry.
type PushOptions struct {
	// SourceDir is the directory to push. Ignored by PushFromStore.
	SourceDir string
	// Registry is the registry host, e.g. "ghcr.io" or "localhost:5000".
	Registry string
	// Repository is the repository path, e.g. "nvidia/cookbook".
	Repository string
	Tag        string
	// SubDir limits Push to a subdirectory of SourceDir.
	SubDir      string
	PlainHTTP   bool
	InsecureTLS bool
	// ReproducibleTimestamp fixes the manifest creation time.
	ReproducibleTimestamp string
}

// PushResult describes a pushed artifact.
type PushResult struct {
	Digest    string
	Reference string
}

// ValidateRegistryReference checks that registry and repository form a
// valid image name.
func ValidateRegistryReference(registry, repository string) error {
	if registry == "" {
		return cberrors.New(cberrors.ErrCodeInvalidRequest, "registry is required")
	}
	if repository == "" {
		return cberrors.New(cberrors.ErrCodeInvalidRequest, "repository is required")
	}
	name := stripProtocol(registry) + "/" + repository
	if _, err := reference.ParseNormalizedNamed(name); err != nil {
		return cberrors.WrapWithContext(cberrors.ErrCodeInvalidRequest, "invalid registry reference", err,
			map[string]any{"reference": name})
	}
	return nil
}

// Package writes SourceDir as a single-layer artifact into an OCI image
// layout under OutputDir.
func Package(ctx context.Context, opts PackageOptions) (*PackageResult, error) {
	if opts.Tag == "" {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest, "tag is required to package an OCI artifact")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	absSource, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to resolve source directory", err)
	}
	if info, statErr := os.Stat(absSource); statErr != nil || !info.IsDir() {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeNotFound, "source directory does not exist",
			map[string]any{"path": absSource})
	}

	fs, err := file.New(absSource)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	manifest, err := packDir(ctx, fs, absSource, opts.Tag, opts.Annotations, opts.ReproducibleTimestamp)
	if err != nil {
		return nil, err
	}

	storePath := filepath.Join(opts.OutputDir, LayoutDirName)
	store, err := oci.New(storePath)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create OCI layout", err)
	}
	if _, err := oras.Copy(ctx, fs, opts.Tag, store, opts.Tag, oras.DefaultCopyOptions); err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to write OCI layout", err)
	}

	return &PackageResult{
		Digest:    manifest.Digest.String(),
		Reference: fmt.Sprintf("%s/%s:%s", stripProtocol(opts.Registry), opts.Repository, opts.Tag),
		StorePath: storePath,
	}, nil
}

// PushFromStore copies a tagged artifact from an OCI image layout to the
// remote registry.
func PushFromStore(ctx context.Context, storePath string, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest, "tag is required to push an OCI artifact")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	store, err := oci.New(storePath)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to open OCI layout", err)
	}
	return copyToRemote(ctx, store, opts)
}

// Push packs a directory in memory and pushes it to the remote registry
// without writing an OCI layout.
func Push(ctx context.Context, opts PushOptions) (*PushResult, error) {
	if opts.Tag == "" {
		return nil, cberrors.New(cberrors.ErrCodeInvalidRequest, "tag is required to push an OCI artifact")
	}
	if err := ValidateRegistryReference(opts.Registry, opts.Repository); err != nil {
		return nil, err
	}

	pushDir, cleanup, err := preparePushDir(opts.SourceDir, opts.SubDir)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	absPushDir, err := filepath.Abs(pushDir)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to resolve push directory", err)
	}

	fs, err := file.New(absPushDir)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	if _, err := packDir(ctx, fs, absPushDir, opts.Tag, nil, opts.ReproducibleTimestamp); err != nil {
		return nil, err
	}
	return copyToRemote(ctx, fs, opts)
}

// packDir adds dir as one gzip layer, packs a manifest and tags it in fs.
func packDir(ctx context.Context, fs *file.Store, dir, tag string, annotations map[string]string, created string) (ociv1.Descriptor, error) {
	fs.TarReproducible = true

	layer, err := fs.Add(ctx, ".", ociv1.MediaTypeImageLayerGzip, dir)
	if err != nil {
		return ociv1.Descriptor{}, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to add directory to store", err)
	}

	packOpts := oras.PackManifestOptions{Layers: []ociv1.Descriptor{layer}}
	if len(annotations) > 0 || created != "" {
		packOpts.ManifestAnnotations = make(map[string]string, len(annotations)+1)
		for k, v := range annotations {
			packOpts.ManifestAnnotations[k] = v
		}
		if created != "" {
			packOpts.ManifestAnnotations[ociv1.AnnotationCreated] = created
		}
	}

	manifest, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, packOpts)
	if err != nil {
		return ociv1.Descriptor{}, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to pack manifest", err)
	}
	if err := fs.Tag(ctx, manifest, tag); err != nil {
		return ociv1.Descriptor{}, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to tag manifest", err)
	}
	return manifest, nil
}

func copyToRemote(ctx context.Context, src oras.ReadOnlyTarget, opts PushOptions) (*PushResult, error) {
	host := stripProtocol(opts.Registry)
	ref := fmt.Sprintf("%s/%s:%s", host, opts.Repository, opts.Tag)

	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", host, opts.Repository))
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = opts.PlainHTTP
	repo.Client = createAuthClient(opts.PlainHTTP, opts.InsecureTLS)

	desc, err := oras.Copy(ctx, src, opts.Tag, repo, opts.Tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnavailable, "failed to push artifact to registry", err,
			map[string]any{"reference": ref})
	}

	return &PushResult{Digest: desc.Digest.String(), Reference: ref}, nil
}

// preparePushDir returns the directory to push. With a subDir it hard links
// that subtree into a temp dir so the path is preserved in the layer.
func preparePushDir(sourceDir, subDir string) (string, func(), error) {
	if subDir == "" {
		return sourceDir, nil, nil
	}

	tempDir, err := os.MkdirTemp("", "cookbook-push-*")
	if err != nil {
		return "", nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create temp directory", err)
	}

	if err := hardLinkDir(filepath.Join(sourceDir, subDir), filepath.Join(tempDir, subDir)); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", nil, err
	}

	return tempDir, func() { _ = os.RemoveAll(tempDir) }, nil
}

func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	return strings.TrimPrefix(registry, "http://")
}

// createAuthClient returns a registry client using Docker credentials
// when available.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{} //nolint:gosec
		}
		transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}

func hardLinkDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return cberrors.WrapWithContext(cberrors.ErrCodeNotFound, "failed to stat source directory", err,
			map[string]any{"path": src})
	}
	if err := os.MkdirAll(dst, info.Mode()); err != nil {
		return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create destination directory", err)
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to read source directory", err)
	}
	for _, entry := range entries {
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := hardLinkDir(from, to); err != nil {
				return err
			}
			continue
		}
		if err := os.Link(from, to); err != nil {
			return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create hard link", err)
		}
	}
	return nil
}
