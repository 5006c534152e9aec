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

package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc, opts ...Option) *Server {
	t.Helper()
	cfg := defaultConfig()
	cfg.Port = 0
	return New(append([]Option{WithConfig(cfg), WithHandler(handlers), WithName("cookbookd")}, opts...)...)
}

func TestNew_Defaults(t *testing.T) {
	s := New()
	assert.Equal(t, "server", s.config.Name)
	assert.NotNil(t, s.config.Handlers)
	assert.NotNil(t, s.rateLimiter)
	assert.Equal(t, ":8080", s.httpServer.Addr)
}

func TestWithConfig_KeepsHandlers(t *testing.T) {
	h := func(w http.ResponseWriter, _ *http.Request) {}
	s := New(WithHandler(map[string]http.HandlerFunc{"GET /a": h}), WithConfig(defaultConfig()))
	assert.Contains(t, s.config.Handlers, "GET /a")
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, nil)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.setReady(true)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /v1/things/{name}": func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
	})
	h := s.Handler()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/things/x", nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cookbook_http_requests_total{method="GET",path="GET /v1/things/{name}",status="204"}`)
}

func TestDefaultHandler(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /v1/things": func(w http.ResponseWriter, _ *http.Request) {},
	})
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Name   string   `json:"name"`
		Routes []string `json:"routes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cookbookd", body.Name)
	assert.Contains(t, body.Routes, "GET /v1/things")
	assert.Contains(t, body.Routes, "GET /metrics")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, cberrors.ErrCodeNotFound, decodeError(t, rec).Code)
}

func TestMiddleware_RequestID(t *testing.T) {
	var seen string
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /id": func(w http.ResponseWriter, r *http.Request) {
			seen, _ = r.Context().Value(contextKeyRequestID).(string)
		},
	})

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, seen)
	assert.Equal(t, id, rec.Header().Get("X-Request-Id"))

	req = httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-Id", "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

func TestMiddleware_Version(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /v": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(APIVersionFromRequest(r)))
		},
	})
	req := httptest.NewRequest(http.MethodGet, "/v", nil)
	req.Header.Set("Accept", "text/html, application/vnd.nvidia.cookbook.v1+json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "v1", rec.Body.String())
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
}

func TestNegotiateAPIVersion(t *testing.T) {
	tests := map[string]string{
		"":                 DefaultAPIVersion,
		"application/json": DefaultAPIVersion,
		"application/vnd.nvidia.cookbook.v1+json": "v1",
		"application/vnd.nvidia.cookbook.v9+json": DefaultAPIVersion,
	}
	for accept, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept", accept)
		assert.Equal(t, want, negotiateAPIVersion(req), accept)
	}
}

func TestMiddleware_PanicRecovery(t *testing.T) {
	s := newTestServer(t, map[string]http.HandlerFunc{
		"GET /panic": func(http.ResponseWriter, *http.Request) { panic("kaboom") },
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, cberrors.ErrCodeInternal, decodeError(t, rec).Code)
}

func TestMiddleware_RateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.RateLimit = 0.001
	cfg.RateLimitBurst = 1
	s := New(WithConfig(cfg), WithHandler(map[string]http.HandlerFunc{
		"GET /limited": func(w http.ResponseWriter, _ *http.Request) {},
	}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	resp := decodeError(t, rec)
	assert.Equal(t, cberrors.ErrCodeRateLimitExceeded, resp.Code)
	assert.True(t, resp.Retryable)
}

func TestServe_StartAndShutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/ready"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url) //nolint:noctx // test
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}

func TestStart_ListenError(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := defaultConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = busy.Addr().(*net.TCPAddr).Port
	s := New(WithConfig(cfg))
	err = s.Start(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to listen"))
}
