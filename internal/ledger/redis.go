package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the ledger in Redis so cumulative scores survive process
// restarts. Layout: one HASH for name -> user id, one HASH of user id ->
// aggregate JSON, one INCR counter for first-seen ordering.
type RedisStore struct {
	redis  *redis.Client
	prefix string
}

// redisRecord is the serialized per-user aggregate.
type redisRecord struct {
	Name        string `json:"name"`
	TotalScore  int    `json:"total_score"`
	GamesPlayed int    `json:"games_played"`
	Seq         int64  `json:"seq"`
}

// NewRedisStore creates a Redis-backed ledger store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ledger"
	}
	return &RedisStore{redis: client, prefix: prefix}
}

// Resolve returns the user for a display name, creating it on first sight.
func (s *RedisStore) Resolve(ctx context.Context, name string) (User, error) {
	namesKey := s.key("names")

	idStr, err := s.redis.HGet(ctx, namesKey, name).Result()
	if err == nil {
		id, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			return User{}, fmt.Errorf("corrupt user id for %q: %w", name, parseErr)
		}
		return User{ID: id, Name: name}, nil
	}
	if err != redis.Nil {
		return User{}, fmt.Errorf("lookup name: %w", err)
	}

	user := User{ID: uuid.New(), Name: name}
	created, err := s.redis.HSetNX(ctx, namesKey, name, user.ID.String()).Result()
	if err != nil {
		return User{}, fmt.Errorf("register name: %w", err)
	}
	if !created {
		// Lost a race with another writer; use theirs.
		return s.Resolve(ctx, name)
	}

	seq, err := s.redis.Incr(ctx, s.key("seq")).Result()
	if err != nil {
		return User{}, fmt.Errorf("allocate seq: %w", err)
	}
	if err := s.writeRecord(ctx, user.ID, redisRecord{Name: name, Seq: seq}); err != nil {
		return User{}, err
	}
	return user, nil
}

// Record applies one completed-session result.
func (s *RedisStore) Record(ctx context.Context, userID uuid.UUID, name string, roundScore int) error {
	rec, err := s.readRecord(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		seq, seqErr := s.redis.Incr(ctx, s.key("seq")).Result()
		if seqErr != nil {
			return fmt.Errorf("allocate seq: %w", seqErr)
		}
		rec = &redisRecord{Name: name, Seq: seq}
		if hsetErr := s.redis.HSet(ctx, s.key("names"), name, userID.String()).Err(); hsetErr != nil {
			return fmt.Errorf("register name: %w", hsetErr)
		}
	}

	rec.TotalScore += roundScore
	rec.GamesPlayed++
	return s.writeRecord(ctx, userID, *rec)
}

// Top returns up to n entries ordered by total score descending, ties by
// first-seen order.
func (s *RedisStore) Top(ctx context.Context, n int) ([]Entry, error) {
	raw, err := s.redis.HGetAll(ctx, s.key("users")).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	type seqEntry struct {
		entry Entry
		seq   int64
	}
	all := make([]seqEntry, 0, len(raw))
	for idStr, data := range raw {
		id, parseErr := uuid.Parse(idStr)
		if parseErr != nil {
			continue
		}
		var rec redisRecord
		if jsonErr := json.Unmarshal([]byte(data), &rec); jsonErr != nil {
			continue
		}
		all = append(all, seqEntry{
			entry: Entry{UserID: id, Name: rec.Name, TotalScore: rec.TotalScore, GamesPlayed: rec.GamesPlayed},
			seq:   rec.Seq,
		})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].entry.TotalScore != all[j].entry.TotalScore {
			return all[i].entry.TotalScore > all[j].entry.TotalScore
		}
		return all[i].seq < all[j].seq
	})

	if n > 0 && len(all) > n {
		all = all[:n]
	}

	entries := make([]Entry, len(all))
	for i, se := range all {
		entries[i] = se.entry
	}
	return entries, nil
}

func (s *RedisStore) readRecord(ctx context.Context, userID uuid.UUID) (*redisRecord, error) {
	data, err := s.redis.HGet(ctx, s.key("users"), userID.String()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) writeRecord(ctx context.Context, userID uuid.UUID, rec redisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.redis.HSet(ctx, s.key("users"), userID.String(), data).Err(); err != nil {
		return fmt.Errorf("write user: %w", err)
	}
	return nil
}

func (s *RedisStore) key(suffix string) string {
	return fmt.Sprintf("%s:%s", s.prefix, suffix)
}
