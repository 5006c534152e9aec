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
	"fmt"
	"path/filepath"
	"strings"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/packages"
	"github.com/NVIDIA/cookbook/pkg/version"
)

// ConfigFileName is the name the installer source includes the config by.
const ConfigFileName = "Config.wxi"

//go:embed templates/Config.wxi
var configTemplate string

// defineValue keeps a value inside a quoted <?define?> instruction.
var defineValue = strings.NewReplacer(`"`, "'", "?>", "? >", "\n", " ")

// Config renders the preprocessor variables an installer source includes.
type Config struct {
	pkg  *packages.Package
	opts Options
}

// NewConfig returns the config for the installer of p.
func NewConfig(p *packages.Package, opts Options) *Config {
	return &Config{pkg: p, opts: opts.withDefaults()}
}

// Render returns Config.wxi with every placeholder replaced.
func (c *Config) Render() ([]byte, error) {
	if c.pkg.Spec.UUID == "" {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeMissingField,
			fmt.Sprintf("package %q needs a uuid to be used as product and upgrade code", c.pkg.Name()),
			map[string]any{"package": c.pkg.Name()})
	}
	ver, err := version.WixVersion(c.pkg.Spec.Version)
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeInvalidField,
			fmt.Sprintf("package %q version %q is not usable by WiX", c.pkg.Name(), c.pkg.Spec.Version), err,
			map[string]any{"package": c.pkg.Name()})
	}

	values := map[string]string{
		"ProductID":          c.pkg.Spec.UUID,
		"UpgradeCode":        c.pkg.Spec.UUID,
		"Language":           language,
		"Manufacturer":       c.pkg.Spec.Vendor,
		"Version":            ver,
		"PackageComments":    c.pkg.Spec.LongDesc,
		"Description":        c.pkg.Spec.ShortDesc,
		"ProjectURL":         c.pkg.Spec.URL,
		"ProductName":        c.pkg.DisplayTitle(),
		"ProgramFilesFolder": c.programFilesFolder(),
		"Platform":           c.platform(),
	}
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "@"+k+"@", defineValue.Replace(v))
	}
	return []byte(strings.NewReplacer(pairs...).Replace(configTemplate)), nil
}

// Write renders the config into dir and returns the written path.
func (c *Config) Write(dir string) (string, error) {
	out := filepath.Join(dir, ConfigFileName)
	return out, writeFile(out, c.Render)
}

func (c *Config) programFilesFolder() string {
	if c.opts.Arch == ArchX86 {
		return "ProgramFilesFolder"
	}
	return "ProgramFiles64Folder"
}

func (c *Config) platform() string {
	if c.opts.Arch == ArchX86_64 {
		return "x64"
	}
	return "x86"
}
