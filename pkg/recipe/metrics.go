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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK      = "ok"
	resultInvalid = "invalid"
	resultError   = "error"
)

var (
	// Declaration loading metrics
	recipeLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_recipe_loads_total",
			Help: "Total number of recipe declarations loaded, by result",
		},
		[]string{"result"},
	)
	recipeLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cookbook_recipe_load_duration_seconds",
			Help:    "Duration of parsing and validating one recipe declaration",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// Validation metrics
	recipeViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cookbook_recipe_violations_total",
			Help: "Total number of recipe validation violations",
		},
	)
	recipeViolationsByCode = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_recipe_violations_by_code_total",
			Help: "Recipe validation violations by error code",
		},
		[]string{"code"},
	)

	// Cookbook metrics
	cookbookRecipes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cookbook_recipes_loaded",
			Help: "Number of recipes in the most recently loaded cookbook",
		},
	)
)
