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

package checksum

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// sha256 of "content1"
const content1Sum = "d0b425e00e15a0d36b9b361f02bab63563aed6cb4665083905386c55d5b679fa"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

func TestSum(t *testing.T) {
	if got := Sum([]byte("content1")); got != content1Sum {
		t.Errorf("Sum() = %s, want %s", got, content1Sum)
	}
}

func TestVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "a.tar.gz", "content1")

	if err := Verify(path, content1Sum); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
	if err := Verify(path, strings.ToUpper(content1Sum)); err != nil {
		t.Errorf("Verify() should ignore case, error = %v", err)
	}

	err := Verify(path, strings.Repeat("0", 64))
	if !cberrors.HasCode(err, cberrors.ErrCodeInvalidField) {
		t.Errorf("Verify() mismatch error = %v, want INVALID_FIELD", err)
	}

	err = Verify(filepath.Join(dir, "missing"), content1Sum)
	if !cberrors.HasCode(err, cberrors.ErrCodeUnreadableFile) {
		t.Errorf("Verify() missing file error = %v, want UNREADABLE_FILE", err)
	}
}

func TestVerifyReader(t *testing.T) {
	tests := []struct {
		name     string
		input    io.Reader
		wantCode cberrors.ErrorCode
	}{
		{name: "match", input: strings.NewReader("content1")},
		{name: "mismatch", input: strings.NewReader("content2"), wantCode: cberrors.ErrCodeInvalidField},
		{name: "read failure", input: iotest.ErrReader(io.ErrUnexpectedEOF), wantCode: cberrors.ErrCodeUnreadableFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyReader("tarball", tt.input, content1Sum)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("VerifyReader() error = %v", err)
				}
				return
			}
			if !cberrors.HasCode(err, tt.wantCode) {
				t.Errorf("VerifyReader() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	t.Run("writes sorted relative entries", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		b := writeFile(t, dir, "sub/b.recipe.yaml", "content2")
		a := writeFile(t, dir, "a.recipe.yaml", "content1")

		if err := Generate(context.Background(), dir, []string{b, a}); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		data, err := os.ReadFile(FilePath(dir))
		if err != nil {
			t.Fatalf("failed to read %s: %v", FileName, err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(lines))
		}
		if lines[0] != content1Sum+"  a.recipe.yaml" {
			t.Errorf("first line = %q", lines[0])
		}
		if !strings.HasSuffix(lines[1], "  sub/b.recipe.yaml") {
			t.Errorf("second line = %q", lines[1])
		}

		if err := VerifyDir(context.Background(), dir); err != nil {
			t.Errorf("VerifyDir() error = %v", err)
		}

		writeFile(t, dir, "a.recipe.yaml", "tampered")
		if err := VerifyDir(context.Background(), dir); err == nil {
			t.Error("VerifyDir() expected mismatch after tampering")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		f := writeFile(t, dir, "a", "x")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Generate(ctx, dir, []string{f})
		if !cberrors.HasCode(err, cberrors.ErrCodeTimeout) {
			t.Errorf("Generate() error = %v, want TIMEOUT", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := Generate(context.Background(), dir, []string{filepath.Join(dir, "missing")})
		if err == nil {
			t.Error("Generate() expected error for missing file")
		}
	})
}

func TestVerifyDir_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "not-a-checksum-line\n")
	if err := VerifyDir(context.Background(), dir); !cberrors.HasCode(err, cberrors.ErrCodeInvalidField) {
		t.Errorf("VerifyDir() error = %v, want INVALID_FIELD", err)
	}
}
