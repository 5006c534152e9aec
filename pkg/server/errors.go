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
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	cberrors "github.com/NVIDIA/cookbook/pkg/errors"
	"github.com/NVIDIA/cookbook/pkg/serializer"
)

// WriteError writes an ErrorResponse carrying the request id from r.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int,
	code cberrors.ErrorCode, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	serializer.RespondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// WriteErrorFromErr maps err onto an ErrorResponse. Structured errors keep
// their code, message and context; anything else is reported as INTERNAL
// with fallbackMessage.
func WriteErrorFromErr(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string, extraDetails map[string]any) {
	var se *cberrors.StructuredError
	if errors.As(err, &se) {
		details := mergeDetails(se.Context, extraDetails)
		if se.Cause != nil {
			if details == nil {
				details = map[string]any{}
			}
			details["error"] = se.Cause.Error()
		}
		WriteError(w, r, HTTPStatusFromCode(se.Code), se.Code, se.Message, retryableFromCode(se.Code), details)
		return
	}

	details := mergeDetails(nil, extraDetails)
	if err != nil {
		if details == nil {
			details = map[string]any{}
		}
		details["error"] = err.Error()
	}
	WriteError(w, r, http.StatusInternalServerError, cberrors.ErrCodeInternal, fallbackMessage, true, details)
}

// HTTPStatusFromCode maps an error code to its HTTP status.
func HTTPStatusFromCode(code cberrors.ErrorCode) int {
	switch code {
	case cberrors.ErrCodeInvalidRequest,
		cberrors.ErrCodeMissingField,
		cberrors.ErrCodeMalformedSourceOrigin,
		cberrors.ErrCodeInvalidField,
		cberrors.ErrCodeUnreadableFile:
		return http.StatusBadRequest
	case cberrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case cberrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cberrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case cberrors.ErrCodeDuplicateName:
		return http.StatusConflict
	case cberrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case cberrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case cberrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func retryableFromCode(code cberrors.ErrorCode) bool {
	switch code {
	case cberrors.ErrCodeTimeout,
		cberrors.ErrCodeUnavailable,
		cberrors.ErrCodeRateLimitExceeded,
		cberrors.ErrCodeInternal:
		return true
	default:
		return false
	}
}

// mergeDetails returns a copy of a overlaid with b, or nil when both are empty.
func mergeDetails(a, b map[string]any) map[string]any {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]any, len(a)+len(b))
	maps.Copy(out, a)
	maps.Copy(out, b)
	return out
}
