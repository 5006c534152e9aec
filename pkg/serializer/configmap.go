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

package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	"github.com/NVIDIA/cookbook/pkg/header"
	"github.com/NVIDIA/cookbook/pkg/k8s/client"
)

// ConfigMapData is implemented by values that map themselves onto ConfigMap
// keys, such as an exported cookbook with one key per declaration.
type ConfigMapData interface {
	ConfigMapData() (map[string]string, error)
}

// ConfigMapWriter applies serialized data to a Kubernetes ConfigMap with
// server-side apply, creating it when absent.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
	client    kubernetes.Interface
}

// ConfigMapWriterOption configures a ConfigMapWriter.
type ConfigMapWriterOption func(*ConfigMapWriter)

// WithKubeClient sets the client; otherwise client.GetKubeClient is used.
func WithKubeClient(c kubernetes.Interface) ConfigMapWriterOption {
	return func(w *ConfigMapWriter) { w.client = c }
}

// NewConfigMapWriter returns a writer for namespace/name.
func NewConfigMapWriter(namespace, name string, format Format, opts ...ConfigMapWriterOption) *ConfigMapWriter {
	w := &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    normalizeFormat(format),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Serialize applies v to the ConfigMap. Values implementing ConfigMapData
// supply their own keys; anything else is stored under "<kind>.<ext>".
func (w *ConfigMapWriter) Serialize(ctx context.Context, v any) error {
	data, err := w.data(v)
	if err != nil {
		return err
	}

	labels := map[string]string{
		"app.kubernetes.io/name":       "cookbook",
		"app.kubernetes.io/managed-by": defaults.ConfigMapFieldManager,
	}
	if h, ok := v.(interface{ GetKind() header.Kind }); ok {
		labels["app.kubernetes.io/component"] = strings.ToLower(h.GetKind().String())
	}

	return w.Apply(ctx, data, labels)
}

// Apply writes data and labels to the ConfigMap, taking ownership of the fields.
func (w *ConfigMapWriter) Apply(ctx context.Context, data, labels map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	c := w.client
	if c == nil {
		var err error
		if c, _, err = client.GetKubeClient(); err != nil {
			return fmt.Errorf("failed to get kubernetes client: %w", err)
		}
	}

	cm := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(labels).
		WithData(data)

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"keys", len(data))

	_, err := c.CoreV1().ConfigMaps(w.namespace).Apply(ctx, cm, metav1.ApplyOptions{
		FieldManager: defaults.ConfigMapFieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", w.namespace, w.name, err)
	}
	return nil
}

func (w *ConfigMapWriter) data(v any) (map[string]string, error) {
	if d, ok := v.(ConfigMapData); ok {
		data, err := d.ConfigMapData()
		if err != nil {
			return nil, fmt.Errorf("failed to build ConfigMap data: %w", err)
		}
		return maps.Clone(data), nil
	}

	content, err := Marshal(w.format, v)
	if err != nil {
		return nil, err
	}
	key := "data"
	if h, ok := v.(interface{ GetKind() header.Kind }); ok && h.GetKind() != "" {
		key = strings.ToLower(h.GetKind().String())
	}
	return map[string]string{
		key + "." + w.format.Extension(): string(content),
	}, nil
}

// Close is a no-op.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// ParseConfigMapURI splits cm://namespace/name into its parts.
func ParseConfigMapURI(uri string) (namespace, name string, err error) {
	rest, ok := strings.CutPrefix(uri, ConfigMapURIScheme)
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	namespace, name, ok = strings.Cut(rest, "/")
	if !ok {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}
	namespace = strings.TrimSpace(namespace)
	name = strings.TrimSpace(name)

	if namespace == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI: namespace cannot be empty")
	}
	if name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("invalid ConfigMap URI: name must be a single path segment")
	}
	return namespace, name, nil
}
