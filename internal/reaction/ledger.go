// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reaction

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// DefaultPalette is the set of reactions offered on assistant messages.
var DefaultPalette = []string{"👍", "👎", "❤️", "😂", "😮", "😢"}

// Count is one emoji tally.
type Count struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// tally keeps counts for one message plus the order in which distinct emoji
// were first recorded.
type tally struct {
	order  []string
	counts map[string]int
}

// Ledger counts emoji reactions per message position. Counts only go up;
// an emoji that was never recorded is absent rather than zero.
//
// Record is a read-modify-write, so all access goes through mu.
type Ledger struct {
	mu      sync.Mutex
	entries map[int]*tally
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[int]*tally)}
}

// Record increments the count for emoji on the message at index and returns
// the new count. Blank emoji are ignored and report zero.
func (l *Ledger) Record(index int, emoji string) int {
	key := normalize(emoji)
	if key == "" {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.entry(index)
	if _, seen := t.counts[key]; !seen {
		t.order = append(t.order, key)
	}
	t.counts[key]++
	return t.counts[key]
}

// Snapshot returns the tallies for index in insertion order of distinct
// emoji. The result is a copy; it is empty when nothing was recorded.
func (l *Ledger) Snapshot(index int) []Count {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.entries[index]
	if !ok {
		return []Count{}
	}
	out := make([]Count, 0, len(t.order))
	for _, emoji := range t.order {
		out = append(out, Count{Emoji: emoji, Count: t.counts[emoji]})
	}
	return out
}

// Map returns the {emoji: count} mapping for index.
func (l *Ledger) Map(index int) map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int)
	if t, ok := l.entries[index]; ok {
		for emoji, n := range t.counts {
			out[emoji] = n
		}
	}
	return out
}

// Get returns the count of a single emoji on index.
func (l *Ledger) Get(index int, emoji string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t, ok := l.entries[index]; ok {
		return t.counts[normalize(emoji)]
	}
	return 0
}

// Indexes returns the message positions that have at least one reaction,
// in ascending order.
func (l *Ledger) Indexes() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]int, 0, len(l.entries))
	for idx := range l.entries {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// Load replaces the tallies for index with counts, keeping their order.
// Non-positive counts are skipped. It is used to restore a persisted session.
func (l *Ledger) Load(index int, counts []Count) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entries, index)
	for _, c := range counts {
		key := normalize(c.Emoji)
		if key == "" || c.Count <= 0 {
			continue
		}
		t := l.entry(index)
		if _, seen := t.counts[key]; !seen {
			t.order = append(t.order, key)
		}
		t.counts[key] += c.Count
	}
}

// Reset discards every tally.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[int]*tally)
}

// entry returns the tally for index, creating it. Caller holds mu.
func (l *Ledger) entry(index int) *tally {
	t, ok := l.entries[index]
	if !ok {
		t = &tally{counts: make(map[string]int)}
		l.entries[index] = t
	}
	return t
}

// normalize puts an emoji key in NFC so the same glyph entered in two
// normal forms lands on one counter.
func normalize(emoji string) string {
	return norm.NFC.String(strings.TrimSpace(emoji))
}

// Format renders tallies as "👍 2  ❤️ 1".
func Format(counts []Count) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, c.Emoji+" "+strconv.Itoa(c.Count))
	}
	return strings.Join(parts, "  ")
}
