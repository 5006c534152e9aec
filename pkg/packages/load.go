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
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

// Load reads the package declaration at path.
func Load(path string) (*Package, error) {
	data, err := recipe.ReadDeclaration(path, defaults.MaxDeclarationFileSize)
	if err != nil {
		packageLoadTotal.WithLabelValues(resultError).Inc()
		return nil, err
	}
	return Parse(data, path)
}

// Parse decodes and validates one Package or MetaPackage declaration.
func Parse(data []byte, source string) (*Package, error) {
	ctx := map[string]any{"source": source}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Package
	if err := dec.Decode(&p); err != nil {
		packageLoadTotal.WithLabelValues(resultError).Inc()
		if errors.Is(err, io.EOF) {
			return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
				fmt.Sprintf("%s: no package declaration found", source), ctx)
		}
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: failed to parse package declaration", source), err, ctx)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		packageLoadTotal.WithLabelValues(resultError).Inc()
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: file must define exactly one package", source), ctx)
	}

	if p.Kind != header.KindPackage && p.Kind != header.KindMetaPackage {
		packageLoadTotal.WithLabelValues(resultError).Inc()
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: expected kind %q or %q, got %q", source, header.KindPackage, header.KindMetaPackage, p.Kind), ctx)
	}
	if p.APIVersion != header.APIVersion {
		packageLoadTotal.WithLabelValues(resultError).Inc()
		return nil, cberrors.NewWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("%s: unsupported apiVersion %q (want %q)", source, p.APIVersion, header.APIVersion), ctx)
	}

	p.source = source
	if vs := Validate(&p); len(vs) > 0 {
		packageLoadTotal.WithLabelValues(resultInvalid).Inc()
		return nil, violationsError(source, vs)
	}

	packageLoadTotal.WithLabelValues(resultOK).Inc()
	slog.Debug("package declaration loaded", "source", source, "name", p.Name(), "kind", p.Kind)
	return &p, nil
}

// IsPackageFile reports whether name carries a package declaration suffix.
func IsPackageFile(name string) bool {
	return strings.HasSuffix(name, defaults.PackageFileSuffix) || strings.HasSuffix(name, defaults.PackageFileSuffixAlt)
}
