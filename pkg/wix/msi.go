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
	_ "embed"
	"encoding/xml"
	"fmt"
	"strings"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/packages"
)

//go:embed templates/installer.wxs
var installerTemplate string

// MSI describes the installer of a MetaPackage as a WiX source that pulls
// in one merge module per non-empty package.
type MSI struct {
	meta       *packages.Package
	store      *packages.Store
	configPath string
	opts       Options
}

// NewMSI returns the installer for meta. Packages are resolved through
// store; configPath is the Config.wxi the source includes.
func NewMSI(meta *packages.Package, store *packages.Store, configPath string, opts Options) *MSI {
	return &MSI{meta: meta, store: store, configPath: configPath, opts: opts.withDefaults()}
}

// MergeModules returns the packages the installer merges: the MetaPackage's
// dependencies that provide at least one file, sorted by name.
func (m *MSI) MergeModules() ([]*packages.Package, error) {
	deps, err := m.store.Deps(m.meta.Name(), false)
	if err != nil {
		return nil, err
	}
	out := make([]*packages.Package, 0, len(deps))
	for _, d := range deps {
		files, err := m.store.Files(d.Name())
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			out = append(out, d)
		}
	}
	return out, nil
}

// Build returns the Wix element tree.
func (m *MSI) Build() (*Element, error) {
	if !m.meta.IsMeta() {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("package %q is not a MetaPackage", m.meta.Name()),
			map[string]any{"package": m.meta.Name()})
	}
	installDir, ok := m.meta.Spec.InstallDir[m.opts.TargetPlatform]
	if !ok {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeMissingField,
			fmt.Sprintf("package %q has no install directory for %s", m.meta.Name(), m.opts.TargetPlatform),
			map[string]any{"package": m.meta.Name(), "platform": m.opts.TargetPlatform})
	}

	root, err := ParseElement(strings.NewReader(installerTemplate))
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to parse installer template", err)
	}
	root.Attrs = append([]xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: Schema}}, root.Attrs...)

	include := m.configPath
	if m.opts.withWine() {
		include = WinePath(include)
	}
	root.ProcInsts = append([]xml.ProcInst{{Target: "include", Inst: []byte(include)}}, root.ProcInsts...)

	product := root.Find("Product")
	if product == nil {
		return nil, cberrors.New(cberrors.ErrCodeInternal, "installer template has no Product element")
	}

	target := product.Add("Directory", "Id", "TARGETDIR", "Name", "SourceDir")
	pf := target.Add("Directory", "Id", "ProgramFilesFolder", "Name", "PFiles")
	sdk := pf.Add("Directory", "Id", FormatID(installDir, false), "Name", installDir)
	installDirNode := sdk.Add("Directory", "Id", "INSTALLDIR", "Name", ".")

	modules, err := m.MergeModules()
	if err != nil {
		return nil, err
	}
	merged := make(map[string]bool, len(modules))
	for _, p := range modules {
		merged[p.Name()] = true
	}

	mainFeature := product.Add("Feature",
		"Id", FormatID(m.meta.Name(), false),
		"Title", m.meta.DisplayTitle(),
		"Level", "1",
		"Display", "expand",
		"AllowAdvertise", "no",
		"ConfigurableDirectory", "INSTALLDIR")

	// Required members and their direct dependencies are always installed.
	required := make(map[string]bool)
	for _, member := range m.meta.Spec.Packages {
		if !member.Required || !merged[member.Name] {
			continue
		}
		required[member.Name] = true
		deps, err := m.store.Deps(member.Name, false)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			required[d.Name()] = true
		}
	}

	for _, member := range m.meta.Spec.Packages {
		if !merged[member.Name] {
			continue
		}
		p, err := m.store.Get(member.Name)
		if err != nil {
			return nil, err
		}
		feature := mainFeature.Add("Feature",
			"Id", FormatID(p.Name(), false),
			"Title", p.Spec.ShortDesc,
			"Level", level(member.Selected),
			"Display", "expand",
			"Absent", absent(member.Required))

		deps, err := m.store.Deps(p.Name(), false)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			// An optional feature references what is not installed anyway; a
			// required one references only what is forced in.
			if required[d.Name()] == member.Required && merged[d.Name()] {
				feature.Add("MergeRef", "Id", FormatID(d.Name(), false))
			}
		}
		feature.Add("MergeRef", "Id", FormatID(p.Name(), false))
	}

	for _, p := range modules {
		installDirNode.Add("Merge",
			"Id", FormatID(p.Name(), false),
			"Language", language,
			"SourceFile", p.Name()+".msm",
			"DiskId", defaultDiskID)
	}
	return root, nil
}

// Render returns the installer source document.
func (m *MSI) Render() ([]byte, error) {
	root, err := m.Build()
	if err != nil {
		return nil, err
	}
	return Document(root)
}

// Write renders the installer source to out.
func (m *MSI) Write(out string) error {
	return writeFile(out, m.Render)
}

// ModuleNames returns the names of the merged packages.
func ModuleNames(pkgs []*packages.Package) []string {
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name()
	}
	return names
}
