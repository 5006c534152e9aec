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
	"fmt"
	"strings"

	"github.com/NVIDIA/cookbook/pkg/header"
)

// StepKind identifies one stage of the build plan.
type StepKind string

const (
	StepFetch      StepKind = "fetch"
	StepExtract    StepKind = "extract"
	StepPatch      StepKind = "patch"
	StepAutoreconf StepKind = "autoreconf"
	StepConfigure  StepKind = "configure"
	StepCompile    StepKind = "compile"
	StepInstall    StepKind = "install"
)

// Step describes one action the orchestrator performs for a recipe.
// Steps are data only; nothing in this package executes them.
type Step struct {
	Kind        StepKind `json:"kind" yaml:"kind"`
	Description string   `json:"description" yaml:"description"`

	// Command is the shell invocation for build stages.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Patch is the patch path for patch stages.
	Patch string `json:"patch,omitempty" yaml:"patch,omitempty"`

	// Parallel marks a compile stage that may use parallel jobs.
	Parallel bool `json:"parallel,omitempty" yaml:"parallel,omitempty"`
}

// per-type default commands: configure, compile, install
var buildCommands = map[BuildType][3]string{
	BuildTypeAutotools: {"sh ./configure", "make", "make install"},
	BuildTypeCMake:     {"cmake -S . -B _build", "cmake --build _build", "cmake --install _build"},
	BuildTypeMeson:     {"meson setup _build", "meson compile -C _build", "meson install -C _build"},
	BuildTypeMakefile:  {"", "make", "make install"},
	BuildTypeCustom:    {"", "", ""},
}

const defaultAutoreconfSh = "autoreconf -fiv"

// Steps returns the ordered build plan: fetch, extract (tarballs only),
// every patch in declaration order, then the build stages the
// configuration enables. Patches always precede every build stage.
func (r *Recipe) Steps() []Step {
	if r == nil {
		return nil
	}
	spec := r.Spec
	steps := make([]Step, 0, 6+len(spec.Patches))

	switch spec.Source.Kind() {
	case SourceKindRemote:
		rm := spec.Source.Remote
		steps = append(steps, Step{
			Kind:        StepFetch,
			Description: fmt.Sprintf("check out %s from remote %s at %s", rm.URL, rm.Name, rm.Revision),
		})
	case SourceKindTarball:
		tb := spec.Source.Tarball
		desc := "download " + tb.URL
		if tb.Checksum != "" {
			desc += " and verify sha256 " + tb.Checksum
		}
		steps = append(steps,
			Step{Kind: StepFetch, Description: desc},
			Step{Kind: StepExtract, Description: "extract " + archiveName(tb.URL)},
		)
	}

	for i, p := range spec.Patches {
		steps = append(steps, Step{
			Kind:        StepPatch,
			Description: fmt.Sprintf("apply patch %d/%d", i+1, len(spec.Patches)),
			Patch:       p,
		})
	}

	b := spec.Build
	if b.Type == BuildTypeNone {
		return steps
	}

	if b.Autoreconf {
		cmd := b.AutoreconfSh
		if cmd == "" {
			cmd = defaultAutoreconfSh
		}
		steps = append(steps, Step{Kind: StepAutoreconf, Description: "regenerate build scripts", Command: cmd})
	}

	cmds := buildCommands[b.Type]
	if configure := joinCommand(firstNonEmpty(b.ConfigSh, cmds[0]), b.ConfigureOptions); configure != "" {
		steps = append(steps, Step{Kind: StepConfigure, Description: "configure " + r.Name(), Command: configure})
	}
	if compile := firstNonEmpty(b.MakeCommand, cmds[1]); compile != "" {
		steps = append(steps, Step{
			Kind:        StepCompile,
			Description: "compile " + r.Name(),
			Command:     compile,
			Parallel:    b.AllowParallelBuild,
		})
	}
	if install := firstNonEmpty(b.MakeInstallCommand, cmds[2]); install != "" {
		steps = append(steps, Step{Kind: StepInstall, Description: "install " + r.Name(), Command: install})
	}
	return steps
}

// StepPlan is the reportable form of a recipe's build plan.
type StepPlan struct {
	header.Header `json:",inline" yaml:",inline"`

	Recipe  string `json:"recipe" yaml:"recipe"`
	Version string `json:"recipeVersion" yaml:"recipeVersion"`
	Steps   []Step `json:"steps" yaml:"steps"`
}

// NewStepPlan wraps r's steps in a StepPlan stamped with the tool version.
func NewStepPlan(r *Recipe, toolVersion string) *StepPlan {
	p := &StepPlan{
		Recipe:  r.Name(),
		Version: r.Spec.Version,
		Steps:   r.Steps(),
	}
	p.Init(header.KindStepPlan, toolVersion)
	return p
}

func joinCommand(cmd, options string) string {
	if cmd == "" {
		return ""
	}
	if options = strings.TrimSpace(options); options != "" {
		return cmd + " " + options
	}
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func archiveName(rawURL string) string {
	if i := strings.LastIndex(rawURL, "/"); i >= 0 && i < len(rawURL)-1 {
		return strings.SplitN(rawURL[i+1:], "?", 2)[0]
	}
	return rawURL
}
