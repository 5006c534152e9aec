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
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// FileName is the standard name for checksum files.
const FileName = defaults.ChecksumFileName

// Sum returns the hex sha256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File returns the hex sha256 of the file at path.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to open "+path, err)
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		return "", cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to read "+path, err)
	}
	return sum, nil
}

// Reader returns the hex sha256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks the file at path against the expected hex sha256.
func Verify(path, expected string) error {
	actual, err := File(path)
	if err != nil {
		return err
	}
	return compare(path, expected, actual)
}

// VerifyReader streams r through sha256 and checks it against the expected
// hex digest. name only labels errors and logs.
func VerifyReader(name string, r io.Reader, expected string) error {
	actual, err := Reader(r)
	if err != nil {
		return cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to read "+name, err)
	}
	return compare(name, expected, actual)
}

func compare(name, expected, actual string) error {
	if !strings.EqualFold(strings.TrimSpace(expected), actual) {
		return cberrors.NewWithContext(cberrors.ErrCodeInvalidField,
			fmt.Sprintf("checksum mismatch for %s", name),
			map[string]any{"expected": expected, "actual": actual})
	}
	slog.Debug("checksum verified", "name", name, "sha256", actual)
	return nil
}

// Generate writes FileName into dir with the sha256 of every file, in
// sha256sum format, paths relative to dir and sorted.
func Generate(ctx context.Context, dir string, files []string) error {
	lines := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return cberrors.Wrap(cberrors.ErrCodeTimeout, "checksum generation interrupted", err)
		}

		sum, err := File(file)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, file)
		if err != nil {
			rel = file
		}
		lines = append(lines, fmt.Sprintf("%s  %s", sum, filepath.ToSlash(rel)))
	}
	slices.SortFunc(lines, func(a, b string) int {
		return strings.Compare(a[sha256.Size*2+2:], b[sha256.Size*2+2:])
	})

	path := FilePath(dir)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to write checksums", err)
	}

	slog.Debug("checksums generated", "file_count", len(lines), "path", path)
	return nil
}

// VerifyDir checks every entry of the FileName in dir.
func VerifyDir(ctx context.Context, dir string) error {
	data, err := os.ReadFile(FilePath(dir))
	if err != nil {
		return cberrors.Wrap(cberrors.ErrCodeUnreadableFile, "failed to read checksums", err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		if err := ctx.Err(); err != nil {
			return cberrors.Wrap(cberrors.ErrCodeTimeout, "checksum verification interrupted", err)
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		sum, rel, ok := strings.Cut(line, "  ")
		if !ok {
			return cberrors.New(cberrors.ErrCodeInvalidField, fmt.Sprintf("%s line %d is malformed", FileName, n))
		}
		if err := Verify(filepath.Join(dir, filepath.FromSlash(rel)), sum); err != nil {
			return err
		}
	}
	return nil
}

// FilePath returns the full path to the checksum file in dir.
func FilePath(dir string) string {
	return filepath.Join(dir, FileName)
}
