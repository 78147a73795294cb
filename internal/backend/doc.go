// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend is the HTTP client for the chat backend.
//
// The backend exposes three endpoints:
//
//	GET    /chat/history   -> [{"role": "user"|"ai", "text": ..., "type": ..., "image": ...}]
//	POST   /chat           {"message": ...} -> {"type": "text"|"image", "text": ..., "image": ...}
//	DELETE /chat/history
//
// Requests are rate limited client-side and logged through log/slog. History
// and Clear are retried with exponential backoff on transport errors, 429
// and 5xx replies. Send posts at most once unless the connection could not
// be made or the backend answered 429.
//
// # Usage
//
//	c := backend.NewClient("http://localhost:5000").WithMaxRetries(2)
//	reply, err := c.Send(ctx, "show me a lighthouse")
package backend
