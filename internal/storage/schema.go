// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// Schema creates the transcript tables. Positions are the message indexes
// of the conversation; reactions keep first-reaction order through seq.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	session   TEXT    NOT NULL REFERENCES sessions(name) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	id        TEXT    NOT NULL,
	role      TEXT    NOT NULL,
	kind      TEXT    NOT NULL,
	text      TEXT    NOT NULL DEFAULT '',
	image_ref TEXT    NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL,
	PRIMARY KEY (session, position)
);

CREATE TABLE IF NOT EXISTS reactions (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	session  TEXT    NOT NULL REFERENCES sessions(name) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	emoji    TEXT    NOT NULL,
	total    INTEGER NOT NULL DEFAULT 0,
	UNIQUE (session, position, emoji)
);

CREATE INDEX IF NOT EXISTS idx_reactions_session ON reactions(session, position, seq);
`
