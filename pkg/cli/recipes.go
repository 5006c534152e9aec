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

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/cookbook/pkg/recipe"
)

func recipesCmd() *cli.Command {
	return &cli.Command{
		Name:    "recipes",
		Aliases: []string{"recipe"},
		Usage:   "Query recipe declarations",
		Description: `List the loaded recipes, show one declaration, or print the ordered
build steps of a recipe.

# Examples

  cookbook recipes list --format table
  cookbook recipes show glib
  cookbook recipes steps mingw-regex --format json`,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recipes sorted by name",
				Flags: []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cb, err := loadCookbook(ctx, cmd)
					if err != nil {
						return err
					}
					recipes := cb.List()
					resp := recipe.ListResponse{Count: len(recipes), Recipes: make([]recipe.Summary, 0, len(recipes))}
					for _, r := range recipes {
						resp.Recipes = append(resp.Recipes, recipe.NewSummary(r))
					}
					return writeOutput(ctx, cmd, resp)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one recipe declaration",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := getRecipe(ctx, cmd)
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, r)
				},
			},
			{
				Name:      "steps",
				Usage:     "Show the ordered build steps of a recipe",
				ArgsUsage: "NAME",
				Flags:     []cli.Flag{outputFlag(), formatFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					r, err := getRecipe(ctx, cmd)
					if err != nil {
						return err
					}
					return writeOutput(ctx, cmd, recipe.NewStepPlan(r, version))
				},
			},
		},
	}
}

func getRecipe(ctx context.Context, cmd *cli.Command) (*recipe.Recipe, error) {
	n, err := requireArg(cmd, "recipe name")
	if err != nil {
		return nil, err
	}
	cb, err := loadCookbook(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return cb.Get(n)
}
