// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jeranaias/chatfmt/internal/backend"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// DefaultName is the store key used when no session name is configured.
const DefaultName = "default"

// Error variables for session operations.
var (
	// ErrBusy is returned by Send and Load while another request is in flight.
	ErrBusy = errors.New("a request is already in progress")

	// ErrNoStore is returned by LoadOffline when persistence is disabled.
	ErrNoStore = errors.New("no transcript store configured")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Backend is the remote side of a conversation.
type Backend interface {
	History(ctx context.Context) ([]model.Message, error)
	Send(ctx context.Context, text string) (model.Message, error)
	Clear(ctx context.Context) error
}

// Store persists a local copy of the transcript and its reactions.
type Store interface {
	ReplaceMessages(ctx context.Context, session string, msgs []model.Message) error
	SaveMessage(ctx context.Context, session string, index int, msg model.Message) error
	Messages(ctx context.Context, session string) ([]model.Message, error)
	SaveReaction(ctx context.Context, session string, index int, emoji string) error
	Reactions(ctx context.Context, session string) (map[int][]reaction.Count, error)
	ClearSession(ctx context.Context, session string) error
}

// Pending describes the request a session is waiting on.
type Pending int

const (
	PendingNone Pending = iota
	PendingThinking
	PendingImage
	PendingHistory
)

// String returns the status line shown while waiting.
func (p Pending) String() string {
	switch p {
	case PendingThinking:
		return "thinking"
	case PendingImage:
		return "generating image"
	case PendingHistory:
		return "loading history"
	default:
		return ""
	}
}

// Options configures a Session.
type Options struct {
	// Name keys the session in the store. Empty selects DefaultName.
	Name string

	// Store is optional; nil disables persistence.
	Store Store

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// =============================================================================
// SESSION
// =============================================================================

// Session is the state container of one chat: the conversation, its
// reactions and the request in flight. All methods are safe for concurrent
// use; network calls run without holding the lock.
type Session struct {
	mu      sync.Mutex
	conv    *model.Conversation
	pending Pending

	name    string
	backend Backend
	store   Store
	logger  *slog.Logger
}

// New creates a session over b.
func New(b Backend, opts Options) *Session {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = DefaultName
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conv:    model.NewConversation(),
		name:    name,
		backend: b,
		store:   opts.Store,
		logger:  logger.With("session", name),
	}
}

// Name returns the session's store key.
func (s *Session) Name() string {
	return s.name
}

// Pending returns the request currently in flight.
func (s *Session) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Messages()
}

// Reactions returns the tallies for the message at index.
func (s *Session) Reactions(index int) []reaction.Count {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Reactions(index)
}

// Conversation returns a snapshot of the transcript and reactions.
func (s *Session) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Clone()
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Len()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Load replaces the transcript with the backend's history and restores
// stored reactions for it. A stored tally comes back only when the stored
// message at its position matches the loaded one. On failure the current
// transcript is kept, an apology message is appended and the error is
// returned. Load fails with ErrBusy while another request is in flight.
func (s *Session) Load(ctx context.Context) error {
	if err := s.claim(PendingHistory); err != nil {
		return err
	}
	defer s.setPending(PendingNone)

	msgs, err := s.backend.History(ctx)
	if err != nil {
		s.logger.Error("load history failed", "error", err)
		s.appendAssistantError(backend.HistoryErrorText)
		return err
	}

	var counts map[int][]reaction.Count
	if s.store != nil {
		counts = s.matchingReactions(ctx, msgs)
		if err := s.store.ReplaceMessages(ctx, s.name, msgs); err != nil {
			s.logger.Warn("persist history failed", "error", err)
		}
	}
	s.replace(msgs, counts)
	s.logger.Info("history loaded", "messages", len(msgs), "reacted", len(counts))
	return nil
}

// LoadOffline replaces the transcript with the stored copy, without
// contacting the backend.
func (s *Session) LoadOffline(ctx context.Context) error {
	if s.store == nil {
		return ErrNoStore
	}
	if err := s.claim(PendingHistory); err != nil {
		return err
	}
	defer s.setPending(PendingNone)

	msgs, err := s.store.Messages(ctx, s.name)
	if err != nil {
		return fmt.Errorf("load stored transcript: %w", err)
	}
	counts, err := s.store.Reactions(ctx, s.name)
	if err != nil {
		s.logger.Warn("restore reactions failed", "error", err)
	}
	s.replace(msgs, counts)
	return nil
}

// Send appends the user's message at once, then the backend's reply. When
// the request fails an apology is appended in place of the reply, and the
// error is returned alongside it. Blank input is rejected without touching
// the transcript, as is a send while another is in flight.
func (s *Session) Send(ctx context.Context, text string) (model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return model.Message{}, backend.ErrEmptyMessage
	}

	pending := PendingThinking
	if backend.IsImageRequest(text) {
		pending = PendingImage
	}
	if err := s.claim(pending); err != nil {
		return model.Message{}, err
	}

	s.mu.Lock()
	user := model.NewUserMessage(text)
	userIndex := s.conv.Append(user)
	s.mu.Unlock()
	defer s.setPending(PendingNone)

	s.persist(ctx, userIndex, user)

	reply, err := s.backend.Send(ctx, text)
	if err != nil {
		s.logger.Error("send failed", "error", err)
		return s.appendAssistantError(backend.SendErrorText), err
	}
	if verr := reply.Validate(); verr != nil {
		s.logger.Warn("backend reply invalid, showing as text", "error", verr)
		reply.Kind = model.KindText
	}

	s.mu.Lock()
	replyIndex := s.conv.Append(reply)
	reply, _ = s.conv.At(replyIndex)
	s.mu.Unlock()

	s.persist(ctx, replyIndex, reply)
	return reply, nil
}

// ClearLocal empties the local transcript and its reactions. The backend
// keeps its history.
func (s *Session) ClearLocal(ctx context.Context) {
	s.mu.Lock()
	s.conv.Clear()
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.ClearSession(ctx, s.name); err != nil {
			s.logger.Warn("clear stored transcript failed", "error", err)
		}
	}
}

// ClearHistory deletes the backend history, then clears locally. If the
// backend refuses, nothing is cleared.
func (s *Session) ClearHistory(ctx context.Context) error {
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Error("clear history failed", "error", err)
		return err
	}
	s.ClearLocal(ctx)
	return nil
}

// React records emoji on the message at index and returns the new count.
func (s *Session) React(ctx context.Context, index int, emoji string) (int, error) {
	s.mu.Lock()
	n, err := s.conv.React(index, emoji)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if s.store != nil && n > 0 {
		if err := s.store.SaveReaction(ctx, s.name, index, emoji); err != nil {
			s.logger.Warn("persist reaction failed", "index", index, "error", err)
		}
	}
	return n, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// claim marks p as the request in flight, failing with ErrBusy when one
// already is.
func (s *Session) claim(p Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != PendingNone {
		return ErrBusy
	}
	s.pending = p
	return nil
}

func (s *Session) setPending(p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = p
}

// replace swaps the transcript and loads counts, keyed by position, into
// the fresh ledger. Positions outside msgs are ignored.
func (s *Session) replace(msgs []model.Message, counts map[int][]reaction.Count) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conv.Clear()
	for _, m := range msgs {
		s.conv.Append(m)
	}
	for idx, c := range counts {
		if idx < 0 || idx >= len(msgs) {
			continue
		}
		s.conv.Ledger().Load(idx, c)
	}
}

// matchingReactions returns the stored tallies whose message is still the
// one at the same position in msgs. Anything else would attach a reaction
// to a different reply.
func (s *Session) matchingReactions(ctx context.Context, msgs []model.Message) map[int][]reaction.Count {
	stored, err := s.store.Messages(ctx, s.name)
	if err != nil {
		s.logger.Warn("read stored transcript failed", "error", err)
		return nil
	}
	counts, err := s.store.Reactions(ctx, s.name)
	if err != nil {
		s.logger.Warn("restore reactions failed", "error", err)
		return nil
	}

	out := make(map[int][]reaction.Count, len(counts))
	for idx, c := range counts {
		if idx < 0 || idx >= len(msgs) || idx >= len(stored) {
			continue
		}
		if !stored[idx].SameContent(msgs[idx]) {
			s.logger.Debug("dropping reactions on changed message", "index", idx)
			continue
		}
		out[idx] = c
	}
	return out
}

func (s *Session) appendAssistantError(text string) model.Message {
	msg := model.NewAssistantMessage(text)
	s.mu.Lock()
	s.conv.Append(msg)
	s.mu.Unlock()
	return msg
}

func (s *Session) persist(ctx context.Context, index int, msg model.Message) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveMessage(ctx, s.name, index, msg); err != nil {
		s.logger.Warn("persist message failed", "index", index, "error", err)
	}
}
