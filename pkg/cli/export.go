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
	"strings"

	"github.com/urfave/cli/v3"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/k8s/client"
	"github.com/NVIDIA/cookbook/pkg/recipe"
	"github.com/NVIDIA/cookbook/pkg/serializer"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the validated cookbook to a directory or ConfigMap",
		Description: `Export every loaded recipe, one canonical declaration per recipe.

A directory target receives NAME.recipe.yaml files. A cm://namespace/name
target is applied with server-side apply, one key per declaration; the API
server reads it back with COOKBOOK_CONFIGMAP.

# Examples

  cookbook export -o ./exported
  cookbook export -o cm://cookbook/recipes --kubeconfig ~/.kube/config`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Required: true,
				Usage:    "Target directory or cm://namespace/name",
			},
			kubeconfigFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cb, err := validatedCookbook(ctx, cmd)
			if err != nil {
				return err
			}

			target := cmd.String("output")
			if !strings.HasPrefix(target, serializer.ConfigMapURIScheme) {
				written, err := cb.WriteDir(target)
				if err != nil {
					return err
				}
				slog.Info("cookbook exported", "dir", target, "files", len(written))
				return nil
			}

			namespace, cmName, err := serializer.ParseConfigMapURI(target)
			if err != nil {
				return cberrors.Wrap(cberrors.ErrCodeInvalidRequest, "invalid ConfigMap target", err)
			}
			kc, _, err := client.GetKubeClientWithConfig(cmd.String("kubeconfig"))
			if err != nil {
				return cberrors.Wrap(cberrors.ErrCodeUnavailable, "failed to create kubernetes client", err)
			}
			w := serializer.NewConfigMapWriter(namespace, cmName, serializer.FormatYAML, serializer.WithKubeClient(kc))
			if err := w.Serialize(ctx, cb); err != nil {
				return err
			}
			slog.Info("cookbook exported", "configmap", namespace+"/"+cmName, "recipes", cb.Len())
			return nil
		},
	}
}

// validatedCookbook loads the cookbook and fails when its dependency
// references do not resolve.
func validatedCookbook(ctx context.Context, cmd *cli.Command) (*recipe.Cookbook, error) {
	cb, err := loadCookbook(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if vs := cb.ValidateReferences(); len(vs) > 0 {
		for _, v := range vs {
			slog.Error("invalid reference", "violation", v.String())
		}
		return nil, cberrors.Wrap(vs[0].Code, "cookbook references are inconsistent",
			&recipe.ValidationError{Source: "cookbook", Violations: vs})
	}
	return cb, nil
}
