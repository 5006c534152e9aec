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
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cookbook/pkg/checksum"
	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/oci"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

// PublishResult is the output of publish.
type PublishResult struct {
	Target    string   `json:"target" yaml:"target"`
	Files     []string `json:"files" yaml:"files"`
	Digest    string   `json:"digest,omitempty" yaml:"digest,omitempty"`
	Reference string   `json:"reference,omitempty" yaml:"reference,omitempty"`
}

func publishCmd() *cli.Command {
	return &cli.Command{
		Name:  "publish",
		Usage: "Validate the cookbook and publish it with checksums",
		Description: `Validate the loaded cookbook, export it together with a checksums.txt
file and publish the result.

An oci://registry/repository[:tag] target is pushed as an OCI artifact,
tagged with the CLI version when no tag is given. Any other target is a
local directory.

# Examples

  cookbook publish --to ./release
  cookbook publish --data-dir ./recipes --to oci://ghcr.io/nvidia/cookbook:v1.2.0
  cookbook publish --to oci://localhost:5000/cookbook --plain-http`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "to",
				Required: true,
				Usage:    "Local directory or oci://registry/repository[:tag]",
				Sources:  cli.EnvVars("COOKBOOK_PUBLISH_TARGET"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the registry",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification for the registry",
			},
			&cli.StringFlag{
				Name:    "timestamp",
				Usage:   "Fixed RFC 3339 creation time for reproducible artifacts",
				Sources: cli.EnvVars("COOKBOOK_PUBLISH_TIMESTAMP"),
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cancel := context.WithTimeout(ctx, defaults.CLIPublishTimeout)
			defer cancel()

			ref, err := oci.ParseOutputTarget(cmd.String("to"))
			if err != nil {
				return err
			}
			if ts := cmd.String("timestamp"); ts != "" {
				if _, err := time.Parse(time.RFC3339, ts); err != nil {
					return cberrors.Wrap(cberrors.ErrCodeInvalidRequest, "invalid --timestamp", err)
				}
			}

			cb, err := validatedCookbook(ctx, cmd)
			if err != nil {
				return err
			}

			dir := ref.LocalPath
			if ref.IsOCI {
				tmp, err := os.MkdirTemp("", "cookbook-publish-*")
				if err != nil {
					return cberrors.Wrap(cberrors.ErrCodeInternal, "failed to create staging directory", err)
				}
				defer func() { _ = os.RemoveAll(tmp) }()
				dir = filepath.Join(tmp, "cookbook")
			}

			files, err := stageCookbook(ctx, cb, dir)
			if err != nil {
				return err
			}
			res := PublishResult{Target: ref.String(), Files: files}

			if ref.IsOCI {
				if ref.Tag == "" {
					ref = ref.WithTag(version)
				}
				pushed, err := oci.PackageAndPush(ctx, oci.OutputConfig{
					SourceDir:             dir,
					OutputDir:             filepath.Dir(dir),
					Reference:             ref,
					Version:               version,
					PlainHTTP:             cmd.Bool("plain-http"),
					InsecureTLS:           cmd.Bool("insecure-tls"),
					ReproducibleTimestamp: cmd.String("timestamp"),
				})
				if err != nil {
					return err
				}
				res.Target = ref.String()
				res.Digest = pushed.Digest
				res.Reference = pushed.Reference
			}

			slog.Info("cookbook published", "target", res.Target, "files", len(res.Files))
			return writeOutput(ctx, cmd, res)
		},
	}
}

// stageCookbook writes the declarations and their checksums into dir and
// returns the file names relative to dir.
func stageCookbook(ctx context.Context, cb *recipe.Cookbook, dir string) ([]string, error) {
	written, err := cb.WriteDir(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(written))
	for i, f := range written {
		paths[i] = filepath.Join(dir, f)
	}
	if err := checksum.Generate(ctx, dir, paths); err != nil {
		return nil, err
	}
	return append(written, checksum.FileName), nil
}
