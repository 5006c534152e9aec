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
	"context"
	"fmt"
	"slices"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// LoadConfigMap loads a Cookbook from a ConfigMap whose data keys ending in
// a recipe suffix each hold one declaration. Keys are registered in sorted order.
func LoadConfigMap(ctx context.Context, client kubernetes.Interface, namespace, name string) (*Cookbook, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, cberrors.WrapWithContext(cberrors.ErrCodeUnreadableFile,
			fmt.Sprintf("failed to get ConfigMap %s/%s", namespace, name), err,
			map[string]any{"namespace": namespace, "name": name})
	}

	keys := make([]string, 0, len(cm.Data))
	for key := range cm.Data {
		if IsRecipeFile(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	cb := NewCookbook()
	for _, key := range keys {
		source := fmt.Sprintf("cm://%s/%s/%s", namespace, name, key)
		r, err := Parse([]byte(cm.Data[key]), source)
		if err != nil {
			return nil, err
		}
		if err := cb.Add(r); err != nil {
			return nil, err
		}
	}

	cookbookRecipes.Set(float64(cb.Len()))
	return cb, nil
}
