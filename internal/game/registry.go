package game

import (
	"sort"

	"github.com/google/uuid"
)

// Participant is the per-connection state for one live player. Score and
// CorrectAnswers are monotonic within a session; AnsweredThisRound is cleared
// at the start of every question.
type Participant struct {
	ConnID            uuid.UUID
	UserID            uuid.UUID
	Name              string
	Score             int
	CorrectAnswers    int
	AnsweredThisRound bool
}

// Registry holds live participants in join order. Ranking ties break by join
// order, so insertion order is part of the contract; a plain map would make
// that non-deterministic. Not safe for concurrent use: the registry is only
// touched from the game loop.
type Registry struct {
	order  []uuid.UUID
	byConn map[uuid.UUID]*Participant
}

// NewRegistry creates an empty participant registry.
func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[uuid.UUID]*Participant),
	}
}

// Add registers a participant. A duplicate connection ID replaces the
// previous entry but keeps its original position.
func (r *Registry) Add(p *Participant) {
	if _, exists := r.byConn[p.ConnID]; !exists {
		r.order = append(r.order, p.ConnID)
	}
	r.byConn[p.ConnID] = p
}

// Remove deletes a participant and returns it.
func (r *Registry) Remove(connID uuid.UUID) (*Participant, bool) {
	p, exists := r.byConn[connID]
	if !exists {
		return nil, false
	}
	delete(r.byConn, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Get looks up a participant by connection ID.
func (r *Registry) Get(connID uuid.UUID) (*Participant, bool) {
	p, exists := r.byConn[connID]
	return p, exists
}

// Len reports the number of live participants.
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns the participants in join order.
func (r *Registry) All() []*Participant {
	out := make([]*Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byConn[id])
	}
	return out
}

// Ranked returns the participants sorted by score descending. The sort is
// stable, so equal scores keep join order.
func (r *Registry) Ranked() []*Participant {
	ranked := r.All()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// AllAnswered reports whether every live participant has answered the current
// question. An empty registry never counts as all-answered.
func (r *Registry) AllAnswered() bool {
	if len(r.order) == 0 {
		return false
	}
	for _, p := range r.byConn {
		if !p.AnsweredThisRound {
			return false
		}
	}
	return true
}

// ResetAnswered clears the answered flag on every participant.
func (r *Registry) ResetAnswered() {
	for _, p := range r.byConn {
		p.AnsweredThisRound = false
	}
}

// Clear removes every participant.
func (r *Registry) Clear() {
	r.order = nil
	r.byConn = make(map[uuid.UUID]*Participant)
}
