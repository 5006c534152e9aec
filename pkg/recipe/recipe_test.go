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
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// baseRecipe is a minimal valid declaration with a remote source.
const baseRecipe = `kind: Recipe
apiVersion: cookbook.nvidia.com/v1alpha1
metadata:
  name: foo
spec:
  version: "1.0"
  source:
    remote:
      url: https://example.com/foo.git
      revision: v1.0
`

func writeRecipe(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// named returns baseRecipe with metadata.name set to name.
func named(name string) string {
	return strings.Replace(baseRecipe, "name: foo", "name: "+name, 1)
}

// withDeps returns a declaration named name depending on deps.
func withDeps(name string, deps ...string) string {
	var b strings.Builder
	b.WriteString(named(name))
	if len(deps) > 0 {
		b.WriteString("  deps:\n")
		for _, d := range deps {
			b.WriteString("    - " + d + "\n")
		}
	}
	return b.String()
}
