package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryCapacity is the number of completed sessions retained.
const DefaultHistoryCapacity = 10

// PlayerResult is one participant's final score in a completed session.
type PlayerResult struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// HistoryEntry summarizes one completed session. Immutable once appended.
type HistoryEntry struct {
	SessionID uuid.UUID      `json:"id"`
	StartedAt time.Time      `json:"start_time"`
	EndedAt   time.Time      `json:"end_time"`
	Results   []PlayerResult `json:"players"`
}

// HistoryLog is a bounded, most-recent-first list of completed sessions.
// Oldest entries are silently dropped on overflow; there is no deletion API.
type HistoryLog struct {
	mu       sync.RWMutex
	entries  []HistoryEntry
	capacity int
}

// NewHistoryLog creates a history log. A non-positive capacity uses the
// default.
func NewHistoryLog(capacity int) *HistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryLog{capacity: capacity}
}

// Append prepends an entry and truncates to capacity.
func (h *HistoryLog) Append(entry HistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append([]HistoryEntry{entry}, h.entries...)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[:h.capacity]
	}
}

// Recent returns up to n entries, newest first.
func (h *HistoryLog) Recent(n int) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]HistoryEntry, n)
	copy(out, h.entries[:n])
	return out
}

// Len reports the number of retained entries.
func (h *HistoryLog) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
