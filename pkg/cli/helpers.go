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

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/packages"
	"github.com/NVIDIA/cookbook/pkg/recipe"
	"github.com/NVIDIA/cookbook/pkg/serializer"
)

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output destination: file path, cm://namespace/name, or stdout when empty",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   string(serializer.FormatYAML),
		Usage:   fmt.Sprintf("Output format (supported values: %v)", serializer.SupportedFormats()),
		Sources: cli.EnvVars("COOKBOOK_FORMAT"),
	}
}

func kubeconfigFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage:   "Path to kubeconfig for ConfigMap targets (defaults to KUBECONFIG or ~/.kube/config)",
		Sources: cli.EnvVars("COOKBOOK_KUBECONFIG"),
	}
}

func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q", f)
	}
	return f, nil
}

// writeOutput serializes v to the command's --output in its --format.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser, err := serializer.NewFileWriterOrStdout(format, cmd.String("output"))
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := ser.(serializer.Closer); ok {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close serializer", "error", err)
			}
		}
	}()

	return ser.Serialize(ctx, v)
}

// requireArg returns the single positional argument named what.
func requireArg(cmd *cli.Command, what string) (string, error) {
	if cmd.Args().Len() != 1 {
		return "", cberrors.New(cberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("expected exactly one %s argument, got %d", what, cmd.Args().Len()))
	}
	return cmd.Args().First(), nil
}

func loadCookbook(ctx context.Context, cmd *cli.Command) (*recipe.Cookbook, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CLILoadTimeout)
	defer cancel()

	cb, err := recipe.LoadWithOverlay(ctx, cmd.String("data-dir"))
	if err != nil {
		return nil, fmt.Errorf("failed to load cookbook: %w", err)
	}
	slog.Debug("cookbook loaded", "recipes", cb.Len())
	return cb, nil
}

func loadStore(ctx context.Context, cmd *cli.Command) (*packages.Store, error) {
	cb, err := loadCookbook(ctx, cmd)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.CLILoadTimeout)
	defer cancel()

	store, err := packages.LoadWithOverlay(ctx, cmd.String("data-dir"), cb)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	slog.Debug("packages loaded", "packages", store.Len())
	return store, nil
}
