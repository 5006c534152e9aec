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
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/recipe"
)

// Store holds the loaded packages and resolves their files through a
// Cookbook. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	byName   map[string]*Package
	cookbook *recipe.Cookbook
}

// NewStore returns an empty Store resolving recipes through cb.
// A nil cb behaves as an empty Cookbook.
func NewStore(cb *recipe.Cookbook) *Store {
	if cb == nil {
		cb = recipe.NewCookbook()
	}
	return &Store{byName: make(map[string]*Package), cookbook: cb}
}

// Cookbook returns the Cookbook the store resolves recipes through.
func (s *Store) Cookbook() *recipe.Cookbook {
	return s.cookbook
}

// Add registers a validated package. It fails with DUPLICATE_NAME when the
// name is already taken.
func (s *Store) Add(p *Package) error {
	if vs := Validate(p); len(vs) > 0 {
		return violationsError(p.Source(), vs)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := p.Name()
	if existing, ok := s.byName[name]; ok {
		return cberrors.NewWithContext(cberrors.ErrCodeDuplicateName,
			fmt.Sprintf("package %q is declared more than once", name),
			map[string]any{
				"name":     name,
				"first":    existing.Source(),
				"conflict": p.Source(),
			})
	}
	s.byName[name] = p.Clone()
	return nil
}

// Get returns a copy of the named package or a NOT_FOUND error.
func (s *Store) Get(name string) (*Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Names returns the registered package names, sorted.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names()
}

// List returns copies of all packages sorted by name.
func (s *Store) List() []*Package {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Package, 0, len(s.byName))
	for _, name := range s.names() {
		out = append(out, s.byName[name].Clone())
	}
	return out
}

// Len returns the number of registered packages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// Deps returns the packages name depends on, sorted and without duplicates.
// For a MetaPackage these are its members and everything they depend on.
// With recursive set the dependencies of every dependency are included.
func (s *Store) Deps(name string, recursive bool) ([]*Package, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names, err := s.depNames(name, recursive)
	if err != nil {
		return nil, err
	}
	out := make([]*Package, 0, len(names))
	for _, n := range names {
		out = append(out, s.byName[n].Clone())
	}
	return out, nil
}

// Files returns the sorted, unique file list of a package. A Package's
// entries are resolved through its recipes' artifacts; a MetaPackage
// provides the union of its dependencies' files.
func (s *Store) Files(name string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	members := []*Package{p}
	if p.IsMeta() {
		names, err := s.depNames(name, false)
		if err != nil {
			return nil, err
		}
		members = members[:0]
		for _, n := range names {
			members = append(members, s.byName[n])
		}
	}

	var files []string
	for _, m := range members {
		f, err := s.packageFiles(m)
		if err != nil {
			return nil, err
		}
		files = append(files, f...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// RecipeDeps returns the recipes needed to produce a package: those its
// files come from and their recipe dependencies, sorted by name.
func (s *Store) RecipeDeps(name string) ([]*recipe.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	members := []*Package{p}
	if p.IsMeta() {
		names, err := s.depNames(name, false)
		if err != nil {
			return nil, err
		}
		members = members[:0]
		for _, n := range names {
			members = append(members, s.byName[n])
		}
	}

	found := make(map[string]*recipe.Recipe)
	var visit func(string) error
	visit = func(rname string) error {
		if _, ok := found[rname]; ok {
			return nil
		}
		r, err := s.cookbook.Get(rname)
		if err != nil {
			return err
		}
		found[rname] = r
		for _, dep := range r.Spec.Deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, m := range members {
		for _, entry := range m.Spec.Files {
			ref, _ := ParseFileRef(entry)
			if err := visit(ref.Recipe); err != nil {
				return nil, err
			}
		}
	}

	out := make([]*recipe.Recipe, 0, len(found))
	for _, rname := range slices.Sorted(maps.Keys(found)) {
		out = append(out, found[rname])
	}
	return out, nil
}

// Validate checks that package dependencies and members name registered
// packages without cycles and that file entries name loaded recipes.
func (s *Store) Validate() []Violation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var vs []Violation
	deps := make(map[string][]string, len(s.byName))
	for _, name := range s.names() {
		p := s.byName[name]
		deps[name] = directDeps(p)

		for i, d := range p.Spec.Deps {
			if _, ok := s.byName[d]; !ok {
				vs = append(vs, Violation{Package: name, Field: fmt.Sprintf("spec.deps[%d]", i),
					Code: cberrors.ErrCodeInvalidField, Message: fmt.Sprintf("unknown package %q", d)})
			}
		}
		for i, m := range p.Spec.Packages {
			if _, ok := s.byName[m.Name]; !ok {
				vs = append(vs, Violation{Package: name, Field: fmt.Sprintf("spec.packages[%d]", i),
					Code: cberrors.ErrCodeInvalidField, Message: fmt.Sprintf("unknown package %q", m.Name)})
			}
		}
		for i, entry := range p.Spec.Files {
			ref, _ := ParseFileRef(entry)
			if !s.cookbook.Has(ref.Recipe) {
				vs = append(vs, Violation{Package: name, Field: fmt.Sprintf("spec.files[%d]", i),
					Code: cberrors.ErrCodeInvalidField, Message: fmt.Sprintf("unknown recipe %q", ref.Recipe)})
			}
		}
	}

	if cycle := findCycle(s.names(), deps); cycle != nil {
		vs = append(vs, Violation{Package: cycle[0], Field: "spec.deps",
			Code: cberrors.ErrCodeInvalidField, Message: "circular dependency: " + strings.Join(cycle, " -> ")})
	}
	return vs
}

func (s *Store) names() []string {
	return slices.Sorted(maps.Keys(s.byName))
}

func (s *Store) lookup(name string) (*Package, error) {
	p, ok := s.byName[name]
	if !ok {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeNotFound,
			fmt.Sprintf("package %q not found", name), map[string]any{"name": name})
	}
	return p, nil
}

// depNames resolves the dependency names of a package, sorted. Unknown
// names fail with NOT_FOUND.
func (s *Store) depNames(name string, recursive bool) ([]string, error) {
	p, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var walk func(string) error
	walk = func(n string) error {
		if seen[n] {
			return nil
		}
		dep, err := s.lookup(n)
		if err != nil {
			return err
		}
		seen[n] = true
		for _, d := range directDeps(dep) {
			if err := walk(d); err != nil {
				return err
			}
		}
		return nil
	}

	switch {
	case p.IsMeta() || recursive:
		for _, d := range directDeps(p) {
			if err := walk(d); err != nil {
				return nil, err
			}
		}
	default:
		for _, d := range p.Spec.Deps {
			if _, err := s.lookup(d); err != nil {
				return nil, err
			}
			seen[d] = true
		}
	}
	delete(seen, name)
	return slices.Sorted(maps.Keys(seen)), nil
}

// packageFiles resolves one Package's entries to artifact paths.
func (s *Store) packageFiles(p *Package) ([]string, error) {
	var files []string
	for _, entry := range p.Spec.Files {
		ref, _ := ParseFileRef(entry)
		r, err := s.cookbook.Get(ref.Recipe)
		if err != nil {
			return nil, cberrors.WrapWithContext(cberrors.ErrCodeNotFound,
				fmt.Sprintf("package %q references unknown recipe %q", p.Name(), ref.Recipe), err,
				map[string]any{"package": p.Name(), "recipe": ref.Recipe})
		}
		for _, c := range ref.Categories {
			entries, _ := r.Spec.Artifacts.Category(c)
			for _, e := range entries {
				files = append(files, ArtifactPath(c, e))
			}
		}
	}
	return files, nil
}

// ArtifactPath returns the installed path of a recipe artifact entry. A
// bare library name in the libs category is the DLL under bin/; every other
// entry is already a path relative to the prefix.
func ArtifactPath(category, entry string) string {
	if category == recipe.CategoryLibs && !strings.Contains(entry, "/") {
		return path.Join("bin", entry+".dll")
	}
	return entry
}

// directDeps returns the packages p references directly: its deps and,
// for a MetaPackage, its members.
func directDeps(p *Package) []string {
	out := slices.Clone(p.Spec.Deps)
	if p.IsMeta() {
		out = append(out, p.MemberNames()...)
	}
	return out
}

// findCycle returns the first dependency cycle found walking names in order,
// as a closed path, or nil.
func findCycle(names []string, deps map[string][]string) []string {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	var stack []string

	var dfs func(string) []string
	dfs = func(n string) []string {
		visited[n] = true
		onStack[n] = true
		stack = append(stack, n)
		for _, next := range deps[n] {
			if _, known := deps[next]; !known {
				continue
			}
			if !visited[next] {
				if c := dfs(next); c != nil {
					return c
				}
			} else if onStack[next] {
				start := slices.Index(stack, next)
				return append(slices.Clone(stack[start:]), next)
			}
		}
		stack = stack[:len(stack)-1]
		onStack[n] = false
		return nil
	}

	for _, n := range names {
		if !visited[n] {
			if c := dfs(n); c != nil {
				return c
			}
		}
	}
	return nil
}
