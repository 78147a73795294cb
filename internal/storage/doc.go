// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local transcript persistence for chatfmt.
//
// Transcripts and their reaction tallies are kept in a SQLite database
// (modernc.org/sqlite, no cgo), one named session per transcript. The store
// backs offline viewing and restores reactions when history is reloaded.
//
// # Usage
//
//	store, err := storage.Open(cfg.StoragePath())
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	s := session.New(client, session.Options{Store: store, Name: cfg.Storage.Session})
package storage
