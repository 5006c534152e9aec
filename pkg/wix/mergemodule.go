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

package wix

import (
	"fmt"
	"path"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/packages"
	"github.com/NVIDIA/cookbook/pkg/version"
)

// MergeModule describes one package's files as a WiX merge module source.
type MergeModule struct {
	pkg   *packages.Package
	files []string
	opts  Options
}

// NewMergeModule returns a merge module for p holding files, which are
// paths relative to opts.Prefix.
func NewMergeModule(p *packages.Package, files []string, opts Options) *MergeModule {
	return &MergeModule{pkg: p, files: files, opts: opts.withDefaults()}
}

// Build returns the Wix element tree. Every call generates fresh GUIDs.
func (m *MergeModule) Build() (*Element, error) {
	ver, err := version.WixVersion(m.pkg.Spec.Version)
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeInvalidField,
			fmt.Sprintf("package %q version %q is not usable by WiX", m.pkg.Name(), m.pkg.Spec.Version), err,
			map[string]any{"package": m.pkg.Name()})
	}

	id := newIDs()
	root := NewElement("Wix", "xmlns", Schema)
	module := root.Add("Module",
		"Id", FormatID(m.pkg.Name(), false),
		"Version", ver,
		"Language", language)

	pkgID := m.pkg.Spec.UUID
	if pkgID == "" {
		pkgID = m.opts.NewGUID()
	}
	module.Add("Package",
		"Id", pkgID,
		"Description", m.pkg.Spec.ShortDesc,
		"Comments", m.pkg.Spec.LongDesc,
		"Manufacturer", m.pkg.Spec.Vendor)

	dirs := map[string]*Element{
		"": module.Add("Directory", "Id", "TARGETDIR", "Name", "SourceDir"),
	}
	var addDir func(string) *Element
	addDir = func(dir string) *Element {
		if d, ok := dirs[dir]; ok {
			return d
		}
		parent := path.Dir(dir)
		if parent == "." || parent == "/" {
			parent = ""
		}
		d := addDir(parent).Add("Directory", "Id", id.pathID(dir, false), "Name", path.Base(dir))
		dirs[dir] = d
		return d
	}

	for _, f := range m.files {
		dir, name := path.Split(path.Clean(f))
		dir = path.Clean(dir)
		if dir == "." || dir == "/" {
			dir = ""
		}
		component := addDir(dir).Add("Component",
			"Id", id.pathID(f, false),
			"Guid", m.opts.NewGUID())

		source := path.Join(m.opts.Prefix, f)
		fileID := id.pathID(source, true)
		if m.opts.withWine() {
			source = WinePath(source)
		}
		component.Add("File", "Id", fileID, "Name", name, "Source", source)
	}
	return root, nil
}

// Render returns the merge module source document.
func (m *MergeModule) Render() ([]byte, error) {
	root, err := m.Build()
	if err != nil {
		return nil, err
	}
	return Document(root)
}

// Write renders the merge module to out.
func (m *MergeModule) Write(out string) error {
	return writeFile(out, m.Render)
}
