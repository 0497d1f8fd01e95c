package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// record is the in-memory aggregate for one user. seq is the first-seen
// order, used to keep leaderboard ties deterministic.
type record struct {
	user        User
	totalScore  int
	gamesPlayed int
	seq         int
}

// MemoryStore keeps the ledger in process memory. This is the reference
// implementation of the Store contract; the Redis and Postgres stores must
// match its semantics.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*record
	byName  map[string]uuid.UUID
	nextSeq int
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]*record),
		byName: make(map[string]uuid.UUID),
	}
}

// Resolve returns the user for a display name, creating it on first sight.
func (s *MemoryStore) Resolve(_ context.Context, name string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[name]; ok {
		return s.byID[id].user, nil
	}

	user := User{ID: uuid.New(), Name: name}
	s.byID[user.ID] = &record{user: user, seq: s.nextSeq}
	s.byName[name] = user.ID
	s.nextSeq++
	return user, nil
}

// Record applies one completed-session result.
func (s *MemoryStore) Record(_ context.Context, userID uuid.UUID, name string, roundScore int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[userID]
	if !ok {
		rec = &record{user: User{ID: userID, Name: name}, seq: s.nextSeq}
		s.byID[userID] = rec
		s.byName[name] = userID
		s.nextSeq++
	}
	rec.totalScore += roundScore
	rec.gamesPlayed++
	return nil
}

// Top returns up to n entries ordered by total score descending, ties by
// first-seen order.
func (s *MemoryStore) Top(_ context.Context, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*record, 0, len(s.byID))
	for _, rec := range s.byID {
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].totalScore != records[j].totalScore {
			return records[i].totalScore > records[j].totalScore
		}
		return records[i].seq < records[j].seq
	})

	if n > 0 && len(records) > n {
		records = records[:n]
	}

	entries := make([]Entry, len(records))
	for i, rec := range records {
		entries[i] = Entry{
			UserID:      rec.user.ID,
			Name:        rec.user.Name,
			TotalScore:  rec.totalScore,
			GamesPlayed: rec.gamesPlayed,
		}
	}
	return entries, nil
}
