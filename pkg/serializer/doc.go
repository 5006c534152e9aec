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

// Package serializer writes cookbook documents as JSON, YAML or a flattened
// table, to stdout, a file, an HTTP response or a Kubernetes ConfigMap.
//
//	w, err := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	if err != nil {
//	    return err
//	}
//	if c, ok := w.(serializer.Closer); ok {
//	    defer c.Close()
//	}
//	return w.Serialize(ctx, plan)
//
// A path of the form cm://namespace/name selects a ConfigMapWriter. Values
// implementing ConfigMapData choose their own data keys; other values are
// stored under "<kind>.<ext>".
//
// HttpReader fetches remote declarations with the client timeouts from
// pkg/defaults and an optional body size bound.
package serializer
