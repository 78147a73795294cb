// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("session not found")
	ErrInvalidName   = errors.New("invalid session name")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// Store persists transcripts and reaction tallies in SQLite.
// It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// SessionMeta describes a stored session for listings.
type SessionMeta struct {
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Preview      string    `json:"preview"` // First user message truncated
}

// Open opens (creating if needed) the store at path. ":memory:" opens a
// private in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// MESSAGES
// =============================================================================

// ReplaceMessages overwrites the stored transcript of session with msgs.
// Reactions stay only on positions whose message is unchanged; a position
// that now holds a different message, or none, loses its tallies.
func (s *Store) ReplaceMessages(ctx context.Context, session string, msgs []model.Message) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchSession(ctx, tx, session); err != nil {
			return err
		}
		stale, err := stalePositions(ctx, tx, session, msgs)
		if err != nil {
			return err
		}
		for _, pos := range stale {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM reactions WHERE session = ? AND position = ?`, session, pos); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM reactions WHERE session = ? AND position >= ?`, session, len(msgs)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session = ?`, session); err != nil {
			return err
		}
		for i, msg := range msgs {
			if err := upsertMessage(ctx, tx, session, i, msg); err != nil {
				return err
			}
		}
		return nil
	})
}

// stalePositions lists the stored positions below len(msgs) whose message
// differs from msgs.
func stalePositions(ctx context.Context, tx *sql.Tx, session string, msgs []model.Message) ([]int, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT position, role, kind, text, image_ref
		FROM messages WHERE session = ? AND position < ?`, session, len(msgs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []int
	for rows.Next() {
		var (
			pos        int
			old        model.Message
			role, kind string
		)
		if err := rows.Scan(&pos, &role, &kind, &old.Text, &old.ImageRef); err != nil {
			return nil, err
		}
		old.Role = model.ParseRole(role)
		old.Kind = model.Kind(kind)
		if !old.SameContent(normalizeKind(msgs[pos])) {
			stale = append(stale, pos)
		}
	}
	return stale, rows.Err()
}

// normalizeKind fills the kind the way upsertMessage stores it.
func normalizeKind(msg model.Message) model.Message {
	if msg.Kind == "" {
		msg.Kind = model.KindText
	}
	return msg
}

// SaveMessage stores msg at position index of session.
func (s *Store) SaveMessage(ctx context.Context, session string, index int, msg model.Message) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchSession(ctx, tx, session); err != nil {
			return err
		}
		return upsertMessage(ctx, tx, session, index, msg)
	})
}

// Messages returns the stored transcript of session in position order.
// An unknown session has no messages.
func (s *Store) Messages(ctx context.Context, session string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, kind, text, image_ref, timestamp
		FROM messages WHERE session = ? ORDER BY position`, session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var (
			msg        model.Message
			role, kind string
			ts         int64
		)
		if err := rows.Scan(&msg.ID, &role, &kind, &msg.Text, &msg.ImageRef, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		msg.Role = model.ParseRole(role)
		msg.Kind = model.Kind(kind)
		msg.Timestamp = time.UnixMilli(ts)
		out = append(out, msg)
	}
	return out, rows.Err()
}

// =============================================================================
// REACTIONS
// =============================================================================

// SaveReaction adds one to the tally of emoji on message index of session.
func (s *Store) SaveReaction(ctx context.Context, session string, index int, emoji string) error {
	emoji = norm.NFC.String(strings.TrimSpace(emoji))
	if emoji == "" {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := touchSession(ctx, tx, session); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reactions (session, position, emoji, total) VALUES (?, ?, ?, 1)
			ON CONFLICT (session, position, emoji) DO UPDATE SET total = total + 1`,
			session, index, emoji)
		return err
	})
}

// Reactions returns the tallies of session keyed by message position, each
// list in first-reaction order.
func (s *Store) Reactions(ctx context.Context, session string) (map[int][]reaction.Count, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, emoji, total FROM reactions
		WHERE session = ? ORDER BY position, seq`, session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	out := make(map[int][]reaction.Count)
	for rows.Next() {
		var (
			pos int
			c   reaction.Count
		)
		if err := rows.Scan(&pos, &c.Emoji, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		out[pos] = append(out[pos], c)
	}
	return out, rows.Err()
}

// =============================================================================
// SESSIONS
// =============================================================================

// ClearSession removes the messages and reactions of session. The session
// row itself stays so listings keep it.
func (s *Store) ClearSession(ctx context.Context, session string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session = ?`, session); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reactions WHERE session = ?`, session); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE name = ?`,
			time.Now().UnixMilli(), session)
		return err
	})
}

// DeleteSession removes session entirely.
func (s *Store) DeleteSession(ctx context.Context, session string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, session)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, session)
	}
	return nil
}

// Sessions lists stored sessions, most recently updated first.
func (s *Store) Sessions(ctx context.Context) ([]SessionMeta, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.name, s.created_at, s.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session = s.name),
		       COALESCE((SELECT m.text FROM messages m
		                 WHERE m.session = s.name AND m.role = 'user'
		                 ORDER BY m.position LIMIT 1), '')
		FROM sessions s
		ORDER BY s.updated_at DESC, s.name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var out []SessionMeta
	for rows.Next() {
		var (
			meta             SessionMeta
			created, updated int64
			first            string
		)
		if err := rows.Scan(&meta.Name, &created, &updated, &meta.MessageCount, &first); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		meta.CreatedAt = time.UnixMilli(created)
		meta.UpdatedAt = time.UnixMilli(updated)
		meta.Preview = model.Message{Text: first}.Preview(50)
		out = append(out, meta)
	}
	return out, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		if errors.Is(err, ErrInvalidName) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// touchSession creates session if needed and bumps its update time.
func touchSession(ctx context.Context, tx *sql.Tx, session string) error {
	if strings.TrimSpace(session) == "" {
		return ErrInvalidName
	}
	now := time.Now().UnixMilli()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (name, created_at, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET updated_at = excluded.updated_at`,
		session, now, now)
	return err
}

func upsertMessage(ctx context.Context, tx *sql.Tx, session string, index int, msg model.Message) error {
	if index < 0 {
		return fmt.Errorf("negative position %d", index)
	}
	kind := normalizeKind(msg).Kind
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO messages (session, position, id, role, kind, text, image_ref, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session, position) DO UPDATE SET
			id = excluded.id, role = excluded.role, kind = excluded.kind,
			text = excluded.text, image_ref = excluded.image_ref, timestamp = excluded.timestamp`,
		session, index, msg.ID, string(msg.Role), string(kind), msg.Text, msg.ImageRef, ts.UnixMilli())
	return err
}
