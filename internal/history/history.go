// Package history keeps a bounded, TTL-expiring conversation buffer per user.
package history

import (
	"strings"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Item is one utterance in a user's conversation. Items are owned by the
// per-user entry and never shared across users.
type Item struct {
	Role    string
	Content string
	TS      time.Time
}

// Manager stores per-user history bounded by maxItems and ttl. Garbage
// collection is lazy: every read and write first drops expired items and
// trims to maxItems, oldest first. There is no background sweep.
type Manager struct {
	mu       sync.Mutex
	maxItems int
	ttl      time.Duration
	sessions map[string][]Item

	now func() time.Time
}

func NewManager(maxItems int, ttl time.Duration) *Manager {
	return &Manager{
		maxItems: maxItems,
		ttl:      ttl,
		sessions: make(map[string][]Item),
		now:      time.Now,
	}
}

// Append records one utterance for userID, stamped with the current time.
func (m *Manager) Append(userID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gcLocked(userID)
	items := append(m.sessions[userID], Item{Role: role, Content: content, TS: m.now()})
	m.sessions[userID] = m.trim(items)
}

func (m *Manager) AppendUser(userID, content string) {
	m.Append(userID, RoleUser, content)
}

func (m *Manager) AppendAssistant(userID, content string) {
	m.Append(userID, RoleAssistant, content)
}

// Clear drops all history for userID. Clearing an unknown user is a no-op.
func (m *Manager) Clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Get returns a copy of the user's live items in chronological order.
func (m *Manager) Get(userID string) []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gcLocked(userID)
	items := m.sessions[userID]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// FormatForPrompt renders the user's history as "用户：..." / "助手：..."
// lines joined by newlines. When the rendering exceeds maxChars runes, the
// trailing maxChars runes are kept so the most recent context survives, even
// if that cuts a line mid-content. No history renders as "".
func (m *Manager) FormatForPrompt(userID string, maxChars int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gcLocked(userID)

	items := m.sessions[userID]
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		label := "助手"
		if it.Role == RoleUser {
			label = "用户"
		}
		lines = append(lines, label+"："+it.Content)
	}
	text := strings.TrimSpace(strings.Join(lines, "\n"))
	if maxChars > 0 {
		if r := []rune(text); len(r) > maxChars {
			text = string(r[len(r)-maxChars:])
		}
	}
	return text
}

// gcLocked enforces the invariants for one user: every retained item is
// younger than ttl and the sequence is at most maxItems long. Empty entries
// are removed from the map entirely.
func (m *Manager) gcLocked(userID string) {
	items := m.sessions[userID]
	if len(items) == 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	kept := items[:0]
	for _, it := range items {
		if !it.TS.Before(cutoff) {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		delete(m.sessions, userID)
		return
	}
	m.sessions[userID] = m.trim(kept)
}

func (m *Manager) trim(items []Item) []Item {
	if m.maxItems > 0 && len(items) > m.maxItems {
		return items[len(items)-m.maxItems:]
	}
	return items
}
