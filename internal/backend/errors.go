// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error variables for common backend failures.
var (
	// ErrRateLimited indicates the request was throttled, locally or by the backend.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrBadResponse indicates a reply that could not be decoded.
	ErrBadResponse = errors.New("malformed backend response")

	// ErrEmptyMessage is returned by Send for blank input.
	ErrEmptyMessage = errors.New("message is empty")
)

// APIError is a non-2xx reply from the backend.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error (HTTP %d)", e.Status)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// Is lets errors.Is match a 429 reply against ErrRateLimited.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.Status == http.StatusTooManyRequests
}

// newAPIError builds an APIError from a reply body of the form
// {"error": "..."}, {"error": {"message": "..."}} or {"message": "..."},
// falling back to the raw text.
func newAPIError(status int, body []byte) *APIError {
	var parsed struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		var s string
		var nested struct {
			Message string `json:"message"`
		}
		switch {
		case json.Unmarshal(parsed.Error, &s) == nil && s != "":
			msg = s
		case json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "":
			msg = nested.Message
		default:
			msg = parsed.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
	}
	return &APIError{Status: status, Message: msg}
}
