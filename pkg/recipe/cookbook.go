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
	"fmt"
	"slices"
	"strings"
	"sync"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

// Cookbook is the set of loaded recipes, indexed by name.
// It is safe for concurrent use.
type Cookbook struct {
	mu     sync.RWMutex
	byName map[string]*Recipe
}

// NewCookbook returns an empty Cookbook.
func NewCookbook() *Cookbook {
	return &Cookbook{byName: make(map[string]*Recipe)}
}

// Add registers a validated recipe. It fails with DUPLICATE_NAME when the
// name is already taken and with the first violation's code when r is invalid.
// The Cookbook keeps its own copy of r.
func (c *Cookbook) Add(r *Recipe) error {
	if vs := Validate(r); len(vs) > 0 {
		return violationsError(r.Source(), vs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	name := r.Name()
	if existing, ok := c.byName[name]; ok {
		return cberrors.NewWithContext(cberrors.ErrCodeDuplicateName,
			fmt.Sprintf("recipe %q is declared more than once", name),
			map[string]any{
				"name":     name,
				"first":    existing.Source(),
				"conflict": r.Source(),
			})
	}
	c.byName[name] = r.Clone()
	return nil
}

// Get returns a copy of the named recipe or a NOT_FOUND error.
func (c *Cookbook) Get(name string) (*Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byName[name]
	if !ok {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeNotFound,
			fmt.Sprintf("recipe %q not found", name), map[string]any{"name": name})
	}
	return r.Clone(), nil
}

// Has reports whether a recipe with name is registered.
func (c *Cookbook) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.byName[name]
	return ok
}

// Names returns the registered recipe names, sorted.
func (c *Cookbook) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// List returns copies of all recipes sorted by name.
func (c *Cookbook) List() []*Recipe {
	names := c.Names()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Recipe, 0, len(names))
	for _, name := range names {
		if r, ok := c.byName[name]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Len returns the number of registered recipes.
func (c *Cookbook) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// ValidateReferences checks that every declared dependency names a
// registered recipe and that declared dependencies contain no cycle.
// It does not compute a build order.
func (c *Cookbook) ValidateReferences() []Violation {
	c.mu.RLock()
	deps := make(map[string][]string, len(c.byName))
	for name, r := range c.byName {
		deps[name] = r.Spec.Deps
	}
	c.mu.RUnlock()

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	slices.Sort(names)

	var vs []Violation
	for _, name := range names {
		for i, dep := range deps[name] {
			if _, ok := deps[dep]; !ok {
				vs = append(vs, Violation{
					Recipe:  name,
					Field:   fmt.Sprintf("spec.deps[%d]", i),
					Code:    cberrors.ErrCodeInvalidField,
					Message: fmt.Sprintf("unknown recipe %q", dep),
				})
			}
		}
	}

	if cycle := findCycle(names, deps); cycle != nil {
		vs = append(vs, Violation{
			Recipe:  cycle[0],
			Field:   "spec.deps",
			Code:    cberrors.ErrCodeInvalidField,
			Message: "circular dependency: " + strings.Join(cycle, " -> "),
		})
	}
	return vs
}

// findCycle runs a DFS over deps in the order of names and returns the
// first cycle found as a closed path (first element repeated last).
func findCycle(names []string, deps map[string][]string) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var path []string

	var dfs func(node string) []string
	dfs = func(node string) []string {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range deps[node] {
			if _, known := deps[next]; !known {
				continue
			}
			if !visited[next] {
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			} else if onStack[next] {
				start := slices.Index(path, next)
				cycle := make([]string, len(path)-start+1)
				copy(cycle, path[start:])
				cycle[len(cycle)-1] = next
				return cycle
			}
		}

		path = path[:len(path)-1]
		onStack[node] = false
		return nil
	}

	for _, name := range names {
		if !visited[name] {
			if cycle := dfs(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
