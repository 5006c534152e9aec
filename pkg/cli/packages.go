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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cookbook/pkg/packages"
)

// PackageViolations is the output of packages validate.
type PackageViolations struct {
	Count      int                  `json:"count" yaml:"count"`
	Violations []packages.Violation `json:"violations" yaml:"violations"`
}

func packagesCmd() *cli.Command {
	return &cli.Command{
		Name:    "packages",
		Aliases: []string{"package", "pkg"},
		Usage:   "Query package declarations",
		Description: `List packages, show one declaration, or resolve the dependencies and
installed files of a package.

# Examples

  cookbook packages list
  cookbook packages deps glib-devel --recursive
  cookbook packages files sdk --format json`,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List packages sorted by name",
				Flags: []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := loadStore(ctx, cmd)
					if err != nil {
						return err
					}
					list := store.List()
					resp := packages.ListResponse{Count: len(list), Packages: make([]packages.Summary, 0, len(list))}
					for _, p := range list {
						resp.Packages = append(resp.Packages, packages.NewSummary(p))
					}
					return writeOutput(ctx, cmd, resp)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one package declaration",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, n, err := storeAndName(ctx, cmd)
					if err != nil {
						return err
					}
					p, err := store.Get(n)
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, p)
				},
			},
			{
				Name:      "deps",
				Usage:     "List the package and recipe dependencies of a package",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "recursive",
						Aliases: []string{"r"},
						Usage:   "Include dependencies of dependencies",
					},
					outputFlag(),
					formatFlag(),
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, n, err := storeAndName(ctx, cmd)
					if err != nil {
						return err
					}
					resp, err := packages.NewDepsResponse(store, n, cmd.Bool("recursive"))
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, resp)
				},
			},
			{
				Name:      "files",
				Usage:     "List the files installed by a package",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, n, err := storeAndName(ctx, cmd)
					if err != nil {
						return err
					}
					files, err := store.Files(n)
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, packages.FilesResponse{Package: n, Count: len(files), Files: files})
				},
			},
			{
				Name:  "validate",
				Usage: "Check that package references resolve to known packages and recipes",
				Flags: []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					store, err := loadStore(ctx, cmd)
					if err != nil {
						return err
					}
					vs := store.Validate()
					if err := writeOutput(ctx, cmd, PackageViolations{Count: len(vs), Violations: vs}); err != nil {
						return err
					}
					if len(vs) > 0 {
						return fmt.Errorf("package validation failed: %d problem(s)", len(vs))
					}
					return nil
				},
			},
		},
	}
}

func storeAndName(ctx context.Context, cmd *cli.Command) (*packages.Store, string, error) {
	n, err := requireArg(cmd, "package name")
	if err != nil {
		return nil, "", err
	}
	store, err := loadStore(ctx, cmd)
	if err != nil {
		return nil, "", err
	}
	return store, n, nil
}
