// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reaction keeps per-message emoji reaction tallies for a chat session.
//
// A Ledger is keyed by message position in the conversation. Reactions are
// append-only: the only mutation is Record, which increments a counter.
// Snapshots list emoji in the order they were first recorded, which is also
// the order they are displayed in.
//
//	l := reaction.NewLedger()
//	l.Record(2, "👍")
//	l.Record(2, "👍")
//	l.Record(2, "❤️")
//	l.Snapshot(2) // [{👍 2} {❤️ 1}]
package reaction
