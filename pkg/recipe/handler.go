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
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/NVIDIA/cookbook/pkg/defaults"
	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/serializer"
	"github.com/NVIDIA/cookbook/pkg/server"
)

// recipeCacheTTL can be overridden in tests.
var recipeCacheTTL = defaults.RecipeCacheTTL

// Summary is the list view of one recipe.
type Summary struct {
	Name      string     `json:"name" yaml:"name"`
	Version   string     `json:"version" yaml:"version"`
	Source    SourceKind `json:"source" yaml:"source"`
	BuildType BuildType  `json:"buildType" yaml:"buildType"`
	Deps      []string   `json:"deps,omitempty" yaml:"deps,omitempty"`
	Patches   int        `json:"patches" yaml:"patches"`
}

// NewSummary returns the list view of r.
func NewSummary(r *Recipe) Summary {
	return Summary{
		Name:      r.Name(),
		Version:   r.Spec.Version,
		Source:    r.Spec.Source.Kind(),
		BuildType: r.Spec.Build.Type,
		Deps:      r.Spec.Deps,
		Patches:   len(r.Spec.Patches),
	}
}

// ListResponse is the body of GET /v1/recipes.
type ListResponse struct {
	Count   int       `json:"count" yaml:"count"`
	Recipes []Summary `json:"recipes" yaml:"recipes"`
}

// Handler serves a loaded Cookbook over HTTP.
type Handler struct {
	cookbook    *Cookbook
	toolVersion string
}

// NewHandler returns a handler for cb.
func NewHandler(cb *Cookbook, toolVersion string) *Handler {
	return &Handler{cookbook: cb, toolVersion: toolVersion}
}

// Routes returns the recipe endpoints keyed by ServeMux pattern.
func (h *Handler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"GET /v1/recipes":              h.HandleList,
		"GET /v1/recipes/{name}":       h.HandleGet,
		"GET /v1/recipes/{name}/steps": h.HandleSteps,
		"POST /v1/recipes/validate":    h.HandleValidate,
	}
}

// HandleList returns a summary of every recipe, sorted by name.
func (h *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	recipes := h.cookbook.List()
	resp := ListResponse{Count: len(recipes), Recipes: make([]Summary, 0, len(recipes))}
	for _, r := range recipes {
		resp.Recipes = append(resp.Recipes, NewSummary(r))
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, resp)
}

// HandleGet returns one recipe declaration.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.cookbook.Get(r.PathValue("name"))
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to get recipe", nil)
		return
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, rec)
}

// HandleSteps returns the build step plan of one recipe.
func (h *Handler) HandleSteps(w http.ResponseWriter, r *http.Request) {
	rec, err := h.cookbook.Get(r.PathValue("name"))
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Failed to get recipe", nil)
		return
	}
	setCacheHeaders(w)
	serializer.RespondJSON(w, http.StatusOK, NewStepPlan(rec, h.toolVersion))
}

// HandleValidate validates the YAML declarations in the request body as one
// set and returns the ValidationResult. A body may hold several documents
// separated by "---". The status is 200 whether or not the set passed.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaults.ValidateHandlerTimeout)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, defaults.MaxValidateRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.WriteError(w, r, http.StatusRequestEntityTooLarge, cberrors.ErrCodeInvalidRequest,
				"Request body too large", false, map[string]any{"limit": tooLarge.Limit})
			return
		}
		server.WriteError(w, r, http.StatusBadRequest, cberrors.ErrCodeInvalidRequest,
			"Failed to read request body", false, map[string]any{"error": err.Error()})
		return
	}

	decls, err := SplitDocuments(body, "request")
	if err != nil {
		server.WriteErrorFromErr(w, r, err, "Invalid request body", nil)
		return
	}

	res := ValidateDeclarations(ctx, decls, h.toolVersion)
	slog.Debug("validated declarations",
		"total", res.Summary.Total,
		"failed", res.Summary.Failed,
		"status", res.Summary.Status)
	serializer.RespondJSON(w, http.StatusOK, res)
}

// SplitDocuments splits a YAML stream into one Declaration per document.
// Sources are named source[0], source[1] and so on.
func SplitDocuments(data []byte, source string) ([]Declaration, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var decls []Declaration
	for i := 0; ; i++ {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, cberrors.WrapWithContext(cberrors.ErrCodeInvalidRequest,
				fmt.Sprintf("document %d is not valid YAML", i), err, map[string]any{"source": source})
		}
		doc, err := yaml.Marshal(&node)
		if err != nil {
			return nil, cberrors.Wrap(cberrors.ErrCodeInternal, "failed to re-encode document", err)
		}
		decls = append(decls, Declaration{Source: fmt.Sprintf("%s[%d]", source, i), Data: doc})
	}

	if len(decls) == 0 {
		return nil, cberrors.NewWithContext(cberrors.ErrCodeInvalidRequest,
			"no declarations found", map[string]any{"source": source})
	}
	return decls, nil
}

func setCacheHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(recipeCacheTTL.Seconds())))
}
