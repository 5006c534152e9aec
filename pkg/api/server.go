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

package api

import (
	"context"
	"log/slog"
	"maps"
	"net/http"

	"github.com/NVIDIA/cookbook/pkg/config"
	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/k8s/client"
	"github.com/NVIDIA/cookbook/pkg/logging"
	"github.com/NVIDIA/cookbook/pkg/packages"
	"github.com/NVIDIA/cookbook/pkg/recipe"
	"github.com/NVIDIA/cookbook/pkg/serializer"
	"github.com/NVIDIA/cookbook/pkg/server"
)

const (
	name           = "cookbookd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags, e.g.
	// -X "github.com/NVIDIA/cookbook/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Settings selects where the served cookbook comes from.
type Settings struct {
	// DataDir overlays declarations from a directory on the embedded set.
	DataDir string `env:"COOKBOOK_DATA_DIR"`
	// ConfigMap replaces the embedded recipes with a cm://namespace/name source.
	ConfigMap string `env:"COOKBOOK_CONFIGMAP"`
	// Kubeconfig is used with ConfigMap. Empty means the default discovery.
	Kubeconfig string `env:"COOKBOOK_KUBECONFIG"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// Serve loads the cookbook described by the environment and serves it
// until shutdown.
func Serve() error {
	ctx := context.Background()

	var s Settings
	if err := config.ParseEnv(&s); err != nil {
		return err
	}

	logging.SetDefaultStructuredLoggerWithLevel(name, version, s.LogLevel)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	routes, err := Routes(ctx, s)
	if err != nil {
		slog.Error("failed to load cookbook", "error", err)
		return err
	}

	if err := server.Run(ctx,
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(routes),
	); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}
	return nil
}

// Routes loads the recipe cookbook and package store for s and returns the
// combined read-only API.
func Routes(ctx context.Context, s Settings) (map[string]http.HandlerFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.CLILoadTimeout)
	defer cancel()

	cb, err := loadCookbook(ctx, s)
	if err != nil {
		return nil, err
	}
	if vs := cb.ValidateReferences(); len(vs) > 0 {
		return nil, cberrors.Wrap(vs[0].Code, "recipe references are inconsistent",
			&recipe.ValidationError{Source: "cookbook", Violations: vs})
	}

	store, err := packages.LoadWithOverlay(ctx, s.DataDir, cb)
	if err != nil {
		return nil, err
	}
	if vs := store.Validate(); len(vs) > 0 {
		return nil, cberrors.Wrap(vs[0].Code, "package references are inconsistent",
			&packages.ValidationError{Source: "packages", Violations: vs})
	}

	slog.Info("cookbook loaded", "recipes", cb.Len(), "packages", store.Len())

	routes := recipe.NewHandler(cb, version).Routes()
	maps.Copy(routes, packages.NewHandler(store).Routes())
	return routes, nil
}

func loadCookbook(ctx context.Context, s Settings) (*recipe.Cookbook, error) {
	if s.ConfigMap == "" {
		return recipe.LoadWithOverlay(ctx, s.DataDir)
	}

	namespace, cmName, err := serializer.ParseConfigMapURI(s.ConfigMap)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeInvalidRequest, "invalid COOKBOOK_CONFIGMAP", err)
	}
	kc, _, err := client.GetKubeClientWithConfig(s.Kubeconfig)
	if err != nil {
		return nil, cberrors.Wrap(cberrors.ErrCodeUnavailable, "failed to create kubernetes client", err)
	}
	return recipe.LoadConfigMap(ctx, kc, namespace, cmName)
}
