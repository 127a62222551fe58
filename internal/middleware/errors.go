// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
)

// APIError is the uniform JSON error envelope.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the payload of APIError.
type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	RequestID string            `json:"requestId,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// WriteAPIError writes the error envelope, tagging it with the request's
// correlation id.
func WriteAPIError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	_ = json.NewEncoder(w).Encode(APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(r.Context()),
		Details:   details,
	}})
}
