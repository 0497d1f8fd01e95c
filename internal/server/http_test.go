package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-arena/internal/config"
	"trivia-arena/internal/game"
	"trivia-arena/internal/ledger"
	"trivia-arena/internal/question"
	ws "trivia-arena/pkg/http/ws"
)

type fixture struct {
	ts      *httptest.Server
	store   *ledger.MemoryStore
	history *ledger.HistoryLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()
	store := ledger.NewMemoryStore()
	svc := ledger.NewService(store, logger, ledger.ServiceOptions{TopN: 10})
	history := ledger.NewHistoryLog(0)

	g := game.NewGame(game.DefaultConfig(), question.Default(), svc, history, noopEmitter{}, logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = g.Run(ctx)
	}()

	cfg := &config.App{
		HTTPAddr: "127.0.0.1:0",
		Ledger:   config.Ledger{Backend: config.LedgerBackendMemory, TopN: 10},
		CORS: config.CORS{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		},
	}

	wsHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	}
	srv := NewHTTPServer(cfg, logger, g, svc, history, wsHandler)
	ts := httptest.NewServer(srv.Handler)

	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return &fixture{ts: ts, store: store, history: history}
}

type noopEmitter struct{}

func (noopEmitter) Broadcast(ws.Message)                  {}
func (noopEmitter) BroadcastExcept(uuid.UUID, ws.Message) {}
func (noopEmitter) Unicast(uuid.UUID, ws.Message) error   { return nil }

func (f *fixture) get(t *testing.T, path string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	code, body := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestLeaderboardEmpty(t *testing.T) {
	f := newFixture(t)
	code, body := f.get(t, "/api/leaderboard")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body), "empty leaderboard must encode as an array")
}

func TestLeaderboardReturnsRankedEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice, err := f.store.Resolve(ctx, "alice")
	require.NoError(t, err)
	bob, err := f.store.Resolve(ctx, "bob")
	require.NoError(t, err)
	require.NoError(t, f.store.Record(ctx, alice.ID, "alice", 250))
	require.NoError(t, f.store.Record(ctx, bob.ID, "bob", 360))

	code, body := f.get(t, "/api/leaderboard")
	require.Equal(t, http.StatusOK, code)

	var entries []ledger.Entry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Name)
	assert.Equal(t, 360, entries[0].TotalScore)
	assert.Equal(t, "alice", entries[1].Name)
}

func TestRecentGames(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/api/recent-games")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(body))

	f.history.Append(ledger.HistoryEntry{
		StartedAt: time.Now().Add(-time.Minute),
		EndedAt:   time.Now(),
		Results:   []ledger.PlayerResult{{Name: "alice", Score: 250}},
	})

	code, body = f.get(t, "/api/recent-games")
	require.Equal(t, http.StatusOK, code)
	var entries []ledger.HistoryEntry
	require.NoError(t, json.Unmarshal(body, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].Results[0].Name)
}

func TestGameStatusIdle(t *testing.T) {
	f := newFixture(t)

	code, body := f.get(t, "/api/game-status")
	require.Equal(t, http.StatusOK, code)

	var status game.Status
	require.NoError(t, json.Unmarshal(body, &status))
	assert.False(t, status.Active)
	assert.Equal(t, 0, status.Participants)
	assert.Equal(t, 10, status.TotalQuestions)
}

func TestQueryEndpointsRejectNonGet(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/leaderboard", "/api/recent-games", "/api/game-status"} {
		resp, err := http.Post(f.ts.URL+path, "application/json", nil)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
	}
}

func TestCORSHeadersPresent(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	code, body := f.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body), "go_goroutines")
}
