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

// Package oci publishes cookbook directories to OCI registries.
//
// A cookbook directory (declarations plus checksums.txt) is packed as a
// single gzip layer under an OCI 1.1 manifest with ArtifactType. Package
// writes the artifact to a local OCI image layout; PushFromStore copies it
// from that layout to a registry. PackageAndPush combines both.
//
//	ref, err := oci.ParseOutputTarget("oci://ghcr.io/nvidia/cookbook:v1.2.0")
//	if err != nil {
//	    return err
//	}
//	res, err := oci.PackageAndPush(ctx, oci.OutputConfig{
//	    SourceDir: "./out",
//	    OutputDir: os.TempDir(),
//	    Reference: ref,
//	    Version:   "v1.2.0",
//	})
//
// Registry credentials are read from the Docker configuration through the
// ORAS credentials store. Layers are written with reproducible tar headers;
// set ReproducibleTimestamp to also fix the manifest creation annotation.
package oci
