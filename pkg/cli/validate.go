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

	"github.com/urfave/cli/v3"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate recipe declaration files",
		ArgsUsage: "PATH...",
		Description: `Validate recipe declarations as one set. Directories are searched for
*.recipe.yaml and *.recipe.yml files.

Every file is checked on its own (required fields, source origin, build
options), then the set is checked for duplicate names and unknown or
circular dependencies. All problems are reported, not just the first.

# Examples

  cookbook validate ./recipes
  cookbook validate zlib.recipe.yaml glib.recipe.yaml --format json
  cookbook validate ./recipes --fail-on-error=false -o report.yaml`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fail-on-error",
				Value: true,
				Usage: "Exit with non-zero status if any declaration is invalid",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() == 0 {
				return cberrors.New(cberrors.ErrCodeInvalidRequest, "at least one PATH is required")
			}
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			paths, err := recipe.ExpandPaths(cmd.Args().Slice())
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return cberrors.New(cberrors.ErrCodeNotFound, "no recipe declarations found")
			}

			res := recipe.ValidateFiles(ctx, paths, version)
			if err := writeOutput(ctx, cmd, res); err != nil {
				return fmt.Errorf("failed to write validation result: %w", err)
			}

			slog.Info("validation completed",
				"status", res.Summary.Status,
				"passed", res.Summary.Passed,
				"failed", res.Summary.Failed,
				"references", len(res.References))

			if cmd.Bool("fail-on-error") && !res.Passed() {
				return fmt.Errorf("validation failed: %d of %d declaration(s) invalid, %d reference problem(s)",
					res.Summary.Failed, res.Summary.Total, len(res.References))
			}
			return nil
		},
	}
}
