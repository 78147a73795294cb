// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope every command prints in JSON mode.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Command   string      `json:"command,omitempty"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Command:   command,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewJSONErrorResponse creates a failed response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Command:   command,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Print writes the response to w, indented.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// ErrorData describes a failed command.
type ErrorData struct {
	Type     string `json:"error_type"`
	ExitCode int    `json:"exit_code"`
	Action   string `json:"action,omitempty"`
}

// SessionData is one row of "history --list".
type SessionData struct {
	Name      string    `json:"name"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Preview   string    `json:"preview,omitempty"`
}

// ExportData is the result of "export".
type ExportData struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// ConfigValueData is the result of "config get" and "config set".
type ConfigValueData struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// ClearData is the result of "clear".
type ClearData struct {
	Session string `json:"session"`
	Remote  bool   `json:"remote"`
}
