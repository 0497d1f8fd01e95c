package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "trivia-arena", cfg.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, LedgerBackendMemory, cfg.Ledger.Backend)
	assert.Equal(t, 10, cfg.Ledger.TopN)
	assert.Equal(t, 2, cfg.Game.MinParticipants)
	assert.Equal(t, 15, cfg.Game.QuestionSeconds)
	assert.Equal(t, time.Second, cfg.Game.TickInterval)
	assert.Equal(t, 3*time.Second, cfg.Game.JoinDelay)
	assert.Equal(t, 2*time.Second, cfg.Game.AdvanceDelay)
	assert.Equal(t, 5*time.Second, cfg.Game.ResetDelay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GAME_QUESTION_SECONDS", "30")
	t.Setenv("GAME_JOIN_DELAY", "500ms")
	t.Setenv("LEDGER_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Game.QuestionSeconds)
	assert.Equal(t, 500*time.Millisecond, cfg.Game.JoinDelay)
	assert.Equal(t, LedgerBackendRedis, cfg.Ledger.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "dynamo")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown ledger backend")
}

func TestPostgresBackendRequiresCredentials(t *testing.T) {
	t.Setenv("LEDGER_BACKEND", "postgres")
	_, err := Load()
	assert.ErrorContains(t, err, "PG_USER")

	t.Setenv("PG_USER", "quiz")
	t.Setenv("PG_DATABASE", "quiz")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, LedgerBackendPostgres, cfg.Ledger.Backend)
}

func TestLoadRejectsBadGameKnobs(t *testing.T) {
	t.Setenv("GAME_MIN_PARTICIPANTS", "1")
	_, err := Load()
	assert.ErrorContains(t, err, "GAME_MIN_PARTICIPANTS")

	t.Setenv("GAME_MIN_PARTICIPANTS", "2")
	t.Setenv("GAME_QUESTION_SECONDS", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "GAME_QUESTION_SECONDS")
}

func TestConnString(t *testing.T) {
	p := Postgres{Host: "db", Port: 5433, User: "quiz", Password: "secret", Database: "trivia", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=quiz password=secret dbname=trivia sslmode=disable", p.ConnString())
}
