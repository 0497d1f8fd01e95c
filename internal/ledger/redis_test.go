package ledger

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "test")
}

func TestRedisResolveIsIdempotentPerName(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	alice, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", alice.Name)

	again, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.ID)

	bob, err := store.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, bob.ID)
}

func TestRedisRecordAccumulates(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	alice, err := store.Resolve(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, store.Record(ctx, alice.ID, "alice", 250))
	require.NoError(t, store.Record(ctx, alice.ID, "alice", 110))

	entries, err := store.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].UserID)
	assert.Equal(t, 360, entries[0].TotalScore)
	assert.Equal(t, 2, entries[0].GamesPlayed)
}

func TestRedisRecordCreatesUnknownUser(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	id := uuid.New()
	require.NoError(t, store.Record(ctx, id, "ghost", 100))

	user, err := store.Resolve(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)

	entries, err := store.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 100, entries[0].TotalScore)
	assert.Equal(t, 1, entries[0].GamesPlayed)
}

func TestRedisTopOrdersByScoreThenFirstSeen(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	first, err := store.Resolve(ctx, "first")
	require.NoError(t, err)
	second, err := store.Resolve(ctx, "second")
	require.NoError(t, err)
	third, err := store.Resolve(ctx, "third")
	require.NoError(t, err)

	require.NoError(t, store.Record(ctx, second.ID, "second", 200))
	require.NoError(t, store.Record(ctx, third.ID, "third", 200))
	require.NoError(t, store.Record(ctx, first.ID, "first", 500))

	entries, err := store.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "first", entries[0].Name)
	assert.Equal(t, "second", entries[1].Name)
	assert.Equal(t, "third", entries[2].Name)

	limited, err := store.Top(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "first", limited[0].Name)
}
