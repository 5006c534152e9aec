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
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/cookbook/pkg/recipe"
)

const basePackage = `kind: Package
apiVersion: cookbook.nvidia.com/v1alpha1
metadata:
  name: foo
spec:
  shortdesc: Foo
  version: 1.0.0
`

// pkgDecl returns a Package declaration named name with the given deps and files.
func pkgDecl(name string, deps, files []string) string {
	var b strings.Builder
	b.WriteString(strings.Replace(basePackage, "name: foo", "name: "+name, 1))
	writeList(&b, "deps", deps)
	writeList(&b, "files", files)
	return b.String()
}

func writeList(b *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("  " + key + ":\n")
	for _, it := range items {
		b.WriteString("    - " + it + "\n")
	}
}

func writeDecl(t *testing.T, dir, file, content string) string {
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

func mustParse(t *testing.T, data string) *Package {
	t.Helper()
	p, err := Parse([]byte(data), "test")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return p
}

func embeddedStore(t *testing.T) *Store {
	t.Helper()
	cb, err := recipe.LoadEmbedded(context.Background())
	if err != nil {
		t.Fatalf("recipe.LoadEmbedded() error = %v", err)
	}
	s, err := LoadEmbedded(context.Background(), cb)
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}
	return s
}
