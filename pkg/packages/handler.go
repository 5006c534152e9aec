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
	"net/http"
	"strconv"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/header"
	"github.com/NVIDIA/cookbook/pkg/serializer"
	"github.com/NVIDIA/cookbook/pkg/server"
)

// Summary is the list view of one package.
type Summary struct {
	Name      string      `json:"name" yaml:"name"`
	Kind      header.Kind `json:"kind" yaml:"kind"`
	Version   string      `json:"version" yaml:"version"`
	ShortDesc string      `json:"shortdesc" yaml:"shortdesc"`
	Deps      []string    `json:"deps,omitempty" yaml:"deps,omitempty"`
}

// NewSummary returns the list view of p.
func NewSummary(p *Package) Summary {
	return Summary{
		Name:      p.Name(),
		Kind:      p.Kind,
		Version:   p.Spec.Version,
		ShortDesc: p.Spec.ShortDesc,
		Deps:      directDeps(p),
	}
}

// ListResponse is the body of GET /v1/packages.
type ListResponse struct {
	Count    int       `json:"count" yaml:"count"`
	Packages []Summary `json:"packages" yaml:"packages"`
}

// FilesResponse is the body of GET /v1/packages/{name}/files.
type FilesResponse struct {
	Package string   `json:"package" yaml:"package"`
	Count   int      `json:"count" yaml:"count"`
	Files   []string `json:"files" yaml:"files"`
}

// DepsResponse is the body of GET /v1/packages/{name}/deps.
type DepsResponse struct {
	Package   string   `json:"package" yaml:"package"`
	Recursive bool     `json:"recursive" yaml:"recursive"`
	Packages  []string `json:"packages" yaml:"packages"`
	Recipes   []string `json:"recipes" yaml:"recipes"`
}

// Handler serves a loaded Store over HTTP.
type Handler struct {
	store *Store
}

// NewHandler returns a handler for s.
func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

// Routes returns the package endpoints keyed by ServeMux pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v1/packages":              h.HandleList,
		"GET /v1/packages/{name}":       h.HandleGet,
		"GET /v1/packages/{name}/files": h.HandleFiles,
		"GET /v1/packages/{name}/deps":  h.HandleDeps,
	}
}

// HandleList returns a summary of every package, sorted by name.
func (h *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	pkgs := h.store.List()
	resp := ListResponse{Count: len(pkgs), Packages: make([]Summary, 0, len(pkgs))}
	for _, p := range pkgs {
		resp.Packages = append(resp.Packages, NewSummary(p))
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, resp)
}

// HandleGet returns one package declaration.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.PathValue("name"))
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to get package", nil)
		return
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, p)
}

// HandleFiles returns the resolved file list of one package.
func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	files, err := h.store.Files(name)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to list package files", nil)
		return
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, FilesResponse{Package: name, Count: len(files), Files: files})
}

// HandleDeps returns the package and recipe dependencies of one package.
// The recursive query parameter includes dependencies of dependencies.
func (h *Handler) HandleDeps(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	recursive := false
	if v := r.URL.Query().Get("recursive"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			server.WriteError(w, r, http.StatusBadRequest, cberrors.ErrCodeInvalidRequest,
				"Invalid recursive parameter", false, map[string]any{"recursive": v})
			return
		}
		recursive = b
	}

	resp, err := NewDepsResponse(h.store, name, recursive)
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to resolve package dependencies", nil)
		return
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, resp)
}

func setCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(defaults.RecipeCacheTTL.Seconds())))
}

// NewDepsResponse resolves the package and recipe dependencies of name.
func NewDepsResponse(s *Store, name string, recursive bool) (DepsResponse, error) {
	deps, err := s.Deps(name, recursive)
	if err != nil {
		return DepsResponse{}, err
	}
	recipes, err := s.RecipeDeps(name)
	if err != nil {
		return DepsResponse{}, err
	}

	resp := DepsResponse{
		Package:   name,
		Recursive: recursive,
		Packages:  make([]string, 0, len(deps)),
		Recipes:   make([]string, 0, len(recipes)),
	}
	for _, d := range deps {
		resp.Packages = append(resp.Packages, d.Name())
	}
	for _, rec := range recipes {
		resp.Recipes = append(resp.Recipes, rec.Name())
	}
	return resp, nil
}
