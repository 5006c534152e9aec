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
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
)

func TestHTTPStatusFromCode(t *testing.T) {
	tests := []struct {
		code cberrors.ErrorCode
		want int
	}{
		{cberrors.ErrCodeInvalidRequest, http.StatusBadRequest},
		{cberrors.ErrCodeMissingField, http.StatusBadRequest},
		{cberrors.ErrCodeMalformedSourceOrigin, http.StatusBadRequest},
		{cberrors.ErrCodeInvalidField, http.StatusBadRequest},
		{cberrors.ErrCodeUnreadableFile, http.StatusBadRequest},
		{cberrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{cberrors.ErrCodeNotFound, http.StatusNotFound},
		{cberrors.ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{cberrors.ErrCodeDuplicateName, http.StatusConflict},
		{cberrors.ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
		{cberrors.ErrCodeUnavailable, http.StatusServiceUnavailable},
		{cberrors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{cberrors.ErrCodeInternal, http.StatusInternalServerError},
		{cberrors.ErrorCode("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatusFromCode(tt.code); got != tt.want {
				t.Errorf("HTTPStatusFromCode(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestRetryableFromCode(t *testing.T) {
	retryable := []cberrors.ErrorCode{
		cberrors.ErrCodeTimeout, cberrors.ErrCodeUnavailable,
		cberrors.ErrCodeRateLimitExceeded, cberrors.ErrCodeInternal,
	}
	for _, code := range retryable {
		if !retryableFromCode(code) {
			t.Errorf("retryableFromCode(%s) = false, want true", code)
		}
	}
	notRetryable := []cberrors.ErrorCode{
		cberrors.ErrCodeInvalidRequest, cberrors.ErrCodeNotFound,
		cberrors.ErrCodeDuplicateName, cberrors.ErrCodeMissingField, "OTHER",
	}
	for _, code := range notRetryable {
		if retryableFromCode(code) {
			t.Errorf("retryableFromCode(%s) = true, want false", code)
		}
	}
}

func TestMergeDetails(t *testing.T) {
	if got := mergeDetails(nil, nil); got != nil {
		t.Errorf("mergeDetails(nil, nil) = %v, want nil", got)
	}
	if got := mergeDetails(map[string]any{}, nil); got != nil {
		t.Errorf("mergeDetails(empty, nil) = %v, want nil", got)
	}
	got := mergeDetails(map[string]any{"a": 1, "b": 2}, map[string]any{"b": 3})
	if want := map[string]any{"a": 1, "b": 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("mergeDetails() = %v, want %v", got, want)
	}

	a := map[string]any{"a": 1}
	_ = mergeDetails(a, map[string]any{"a": 2})
	if a["a"] != 1 {
		t.Errorf("mergeDetails() mutated its input: %v", a)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestWriteError_UsesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), contextKeyRequestID, "req-1"))
	rec := httptest.NewRecorder()

	WriteError(rec, req, http.StatusNotFound, cberrors.ErrCodeNotFound, "missing", false, nil)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	resp := decodeError(t, rec)
	if resp.RequestID != "req-1" || resp.Code != cberrors.ErrCodeNotFound || resp.Retryable {
		t.Errorf("response = %+v", resp)
	}
}

func TestWriteErrorFromErr_Structured(t *testing.T) {
	cause := errors.New("boom")
	err := cberrors.WrapWithContext(cberrors.ErrCodeDuplicateName, "recipe zlib declared twice", cause,
		map[string]any{"name": "zlib"})

	rec := httptest.NewRecorder()
	WriteErrorFromErr(rec, httptest.NewRequest(http.MethodPost, "/", nil), err, "fallback", map[string]any{"extra": true})

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
	}
	resp := decodeError(t, rec)
	if resp.Code != cberrors.ErrCodeDuplicateName || resp.Message != "recipe zlib declared twice" {
		t.Errorf("response = %s %q", resp.Code, resp.Message)
	}
	wantDetails := map[string]any{"name": "zlib", "extra": true, "error": "boom"}
	for k, want := range wantDetails {
		if got := resp.Details[k]; got != want {
			t.Errorf("details[%s] = %v, want %v", k, got, want)
		}
	}
	if resp.RequestID == "" {
		t.Error("response has no request id")
	}
}

func TestWriteErrorFromErr_Plain(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteErrorFromErr(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("disk gone"), "failed to load", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	resp := decodeError(t, rec)
	if resp.Code != cberrors.ErrCodeInternal || resp.Message != "failed to load" || !resp.Retryable {
		t.Errorf("response = %+v", resp)
	}
	if got := resp.Details["error"]; got != "disk gone" {
		t.Errorf("details[error] = %v, want disk gone", got)
	}
}
