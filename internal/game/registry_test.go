package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddGetRemove(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	alice := &Participant{ConnID: uuid.New(), Name: "alice"}
	r.Add(alice)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(alice.ConnID)
	require.True(t, ok)
	assert.Same(t, alice, got)

	removed, ok := r.Remove(alice.ConnID)
	require.True(t, ok)
	assert.Same(t, alice, removed)
	assert.Equal(t, 0, r.Len())

	_, ok = r.Remove(alice.ConnID)
	assert.False(t, ok)
}

func TestRegistryPreservesJoinOrder(t *testing.T) {
	r := NewRegistry()
	a := &Participant{ConnID: uuid.New(), Name: "a"}
	b := &Participant{ConnID: uuid.New(), Name: "b"}
	c := &Participant{ConnID: uuid.New(), Name: "c"}
	r.Add(a)
	r.Add(b)
	r.Add(c)

	names := func(ps []*Participant) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.Name
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c"}, names(r.All()))

	r.Remove(b.ConnID)
	assert.Equal(t, []string{"a", "c"}, names(r.All()))

	// Re-adding an existing connection keeps its slot.
	r.Add(&Participant{ConnID: a.ConnID, Name: "a2"})
	assert.Equal(t, []string{"a2", "c"}, names(r.All()))
	assert.Equal(t, 2, r.Len())
}

func TestRankedBreaksTiesByJoinOrder(t *testing.T) {
	r := NewRegistry()
	a := &Participant{ConnID: uuid.New(), Name: "a", Score: 100}
	b := &Participant{ConnID: uuid.New(), Name: "b", Score: 250}
	c := &Participant{ConnID: uuid.New(), Name: "c", Score: 100}
	r.Add(a)
	r.Add(b)
	r.Add(c)

	ranked := r.Ranked()
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Name)
	assert.Equal(t, "a", ranked[1].Name, "earlier joiner wins the tie")
	assert.Equal(t, "c", ranked[2].Name)
}

func TestAllAnswered(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.AllAnswered(), "empty registry never counts as all-answered")

	a := &Participant{ConnID: uuid.New()}
	b := &Participant{ConnID: uuid.New()}
	r.Add(a)
	r.Add(b)
	assert.False(t, r.AllAnswered())

	a.AnsweredThisRound = true
	assert.False(t, r.AllAnswered())

	b.AnsweredThisRound = true
	assert.True(t, r.AllAnswered())

	r.ResetAnswered()
	assert.False(t, r.AllAnswered())
	assert.False(t, a.AnsweredThisRound)
}

func TestClear(t *testing.T) {
	r := NewRegistry()
	r.Add(&Participant{ConnID: uuid.New()})
	r.Add(&Participant{ConnID: uuid.New()})
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.All())
}
