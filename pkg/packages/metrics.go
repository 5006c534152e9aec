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

package packages

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
	packageLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_package_loads_total",
			Help: "Total number of package declarations loaded, by result",
		},
		[]string{"result"},
	)

	storePackages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cookbook_packages_loaded",
			Help: "Number of packages in the most recently loaded store",
		},
	)
)
