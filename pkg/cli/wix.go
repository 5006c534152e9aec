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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/urfave/cli/v3"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/packages"
	"github.com/NVIDIA/cookbook/pkg/wix"
)

// GeneratedFiles is the output of the wix commands.
type GeneratedFiles struct {
	Package string   `json:"package" yaml:"package"`
	Files   []string `json:"files" yaml:"files"`
}

func wixFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "dir",
			Value:   ".",
			Usage:   "Directory the WiX sources are written to",
			Sources: cli.EnvVars("COOKBOOK_WIX_DIR"),
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "Directory the built files were installed into",
			Sources: cli.EnvVars("COOKBOOK_PREFIX"),
		},
		&cli.StringFlag{
			Name:  "arch",
			Value: wix.ArchX86_64,
			Usage: fmt.Sprintf("Target architecture (%s or %s)", wix.ArchX86, wix.ArchX86_64),
		},
		&cli.StringFlag{
			Name:  "platform",
			Usage: "Platform the WiX tools run on; sources use Wine paths unless windows (default: current OS)",
		},
		&cli.StringFlag{
			Name:  "target-platform",
			Value: wix.PlatformWindows,
			Usage: "Platform key used to select a meta package install directory",
		},
		outputFlag(),
		formatFlag(),
	}
}

func wixOptions(cmd *cli.Command) (wix.Options, error) {
	arch := cmd.String("arch")
	if arch != wix.ArchX86 && arch != wix.ArchX86_64 {
		return wix.Options{}, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest, "unsupported architecture",
			map[string]any{"arch": arch})
	}
	prefix := cmd.String("prefix")
	if prefix != "" {
		if abs, err := filepath.Abs(prefix); err == nil {
			prefix = abs
		}
	}
	return wix.Options{
		Platform:       cmd.String("platform"),
		TargetPlatform: cmd.String("target-platform"),
		Arch:           arch,
		Prefix:         prefix,
	}, nil
}

func wixCmd() *cli.Command {
	return &cli.Command{
		Name:  "wix",
		Usage: "Generate WiX installer sources for packages",
		Description: `Render WiX sources from package declarations.

  merge-module NAME  one merge module source (NAME-merge.wxs) for a package
  config NAME        the Config.wxi include for a meta package
  msi NAME           Config.wxi, every merge module and NAME.wxs for a meta package

# Examples

  cookbook wix merge-module glib --prefix /opt/cookbook --dir ./wix
  cookbook wix msi sdk --prefix /opt/cookbook --arch x86 --dir ./wix`,
		Commands: []*cli.Command{
			{
				Name:      "merge-module",
				Usage:     "Generate the merge module source of a package",
				ArgsUsage: "NAME",
				Flags:     wixFlags(),
				Action: wixAction(func(store *packages.Store, p *packages.Package, dir string, opts wix.Options) ([]string, error) {
					files, err := store.Files(p.Name())
					if err != nil {
						return nil, err
					}
					out := filepath.Join(dir, p.Name()+"-merge.wxs")
					if err := wix.NewMergeModule(p, files, opts).Write(out); err != nil {
						return nil, err
					}
					return []string{out}, nil
				}),
			},
			{
				Name:      "config",
				Usage:     "Generate the Config.wxi include of a meta package",
				ArgsUsage: "NAME",
				Flags:     wixFlags(),
				Action: wixAction(func(_ *packages.Store, p *packages.Package, dir string, opts wix.Options) ([]string, error) {
					if !p.IsMeta() {
						return nil, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest, "config requires a meta package",
							map[string]any{"package": p.Name()})
					}
					out, err := wix.NewConfig(p, opts).Write(dir)
					if err != nil {
						return nil, err
					}
					return []string{out}, nil
				}),
			},
			{
				Name:      "msi",
				Usage:     "Generate every installer source of a meta package",
				ArgsUsage: "NAME",
				Flags:     wixFlags(),
				Action: wixAction(func(store *packages.Store, p *packages.Package, dir string, opts wix.Options) ([]string, error) {
					if !p.IsMeta() {
						return nil, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest, "msi requires a meta package",
							map[string]any{"package": p.Name()})
					}
					return wix.Generate(store, p.Name(), dir, opts)
				}),
			},
		},
	}
}

type wixGenerator func(store *packages.Store, p *packages.Package, dir string, opts wix.Options) ([]string, error)

func wixAction(gen wixGenerator) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := wixOptions(cmd)
		if err != nil {
			return err
		}
		store, n, err := storeAndName(ctx, cmd)
		if err != nil {
			return err
		}
		p, err := store.Get(n)
		if err != nil {
			return err
		}

		files, err := gen(store, p, cmd.String("dir"), opts)
		if err != nil {
			return err
		}
		slog.Info("wix sources written", "package", n, "files", len(files))
		return writeOutput(ctx, cmd, GeneratedFiles{Package: n, Files: files})
	}
}
