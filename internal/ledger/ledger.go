package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// User is a persistent score identity, keyed by display name at resolution
// time. Two connections using the same name share one user.
type User struct {
	ID   uuid.UUID
	Name string
}

// Entry is one cumulative leaderboard record.
type Entry struct {
	UserID      uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	TotalScore  int       `json:"total_score"`
	GamesPlayed int       `json:"games_played"`
}

// Store persists user identities and cumulative score aggregates. Top must
// return entries ordered by total score descending with ties broken by the
// order the users were first seen.
type Store interface {
	// Resolve returns the user for a display name, creating it on first sight.
	Resolve(ctx context.Context, name string) (User, error)
	// Record adds roundScore to the user's cumulative score and increments
	// games played. An unknown id is treated as first-time creation.
	Record(ctx context.Context, userID uuid.UUID, name string, roundScore int) error
	// Top returns up to n ordered entries.
	Top(ctx context.Context, n int) ([]Entry, error)
}

// ServiceOptions configures ledger behavior.
type ServiceOptions struct {
	TopN int // displayed leaderboard size, default 10
}

// Service is the score ledger: cumulative per-name aggregates plus the
// derived top-N leaderboard view.
type Service struct {
	store  Store
	logger zerolog.Logger
	topN   int
}

// NewService constructs a ledger service over the given store.
func NewService(store Store, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "ledger").Logger(),
		topN:   topN,
	}
}

// Resolve returns the persistent user for a display name.
func (s *Service) Resolve(ctx context.Context, name string) (User, error) {
	user, err := s.store.Resolve(ctx, name)
	if err != nil {
		return User{}, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// Record applies one completed-session result for a participant.
func (s *Service) Record(ctx context.Context, userID uuid.UUID, name string, roundScore int) error {
	if err := s.store.Record(ctx, userID, name, roundScore); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	s.logger.Info().Str("name", name).Int("round_score", roundScore).Msg("ledger updated")
	return nil
}

// Top returns the displayed leaderboard: up to limit entries with a positive
// cumulative score. A non-positive limit falls back to the configured top-N.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	entries, err := s.store.Top(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	// Zero-score users sort last, so filtering them only trims the tail.
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.TotalScore <= 0 {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
