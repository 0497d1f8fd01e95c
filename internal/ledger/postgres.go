package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the ledger in Postgres. Schema is managed by the
// migrator binary (db/migrations).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed ledger store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Resolve returns the user for a display name, creating it on first sight.
// First match wins: the oldest row with the name owns its score history.
func (s *PostgresStore) Resolve(ctx context.Context, name string) (User, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM trivia_users WHERE name = $1 ORDER BY seq ASC LIMIT 1`,
		name,
	).Scan(&id)
	if err == nil {
		return User{ID: id, Name: name}, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("lookup name: %w", err)
	}

	user := User{ID: uuid.New(), Name: name}
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO trivia_users (id, name, total_score, games_played) VALUES ($1, $2, 0, 0)`,
		user.ID, user.Name,
	); err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Record applies one completed-session result.
func (s *PostgresStore) Record(ctx context.Context, userID uuid.UUID, name string, roundScore int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trivia_users (id, name, total_score, games_played)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (id) DO UPDATE
		 SET total_score = trivia_users.total_score + EXCLUDED.total_score,
		     games_played = trivia_users.games_played + 1`,
		userID, name, roundScore,
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

// Top returns up to n entries ordered by total score descending, ties by
// first-seen order.
func (s *PostgresStore) Top(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, total_score, games_played
		 FROM trivia_users
		 ORDER BY total_score DESC, seq ASC
		 LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Name, &e.TotalScore, &e.GamesPlayed); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return entries, nil
}
