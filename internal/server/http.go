package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"trivia-arena/internal/config"
	"trivia-arena/internal/game"
	"trivia-arena/internal/ledger"
	"trivia-arena/internal/logging"
	httperrors "trivia-arena/pkg/http/errors"
)

// recentGamesLimit caps the /api/recent-games response (the history log
// itself retains more).
const recentGamesLimit = 5

// NewHTTPServer wires the read-only query surface, health, metrics and the
// WebSocket endpoint.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	g *game.Game,
	ledgerSvc *ledger.Service,
	history *ledger.HistoryLog,
	wsHandler http.HandlerFunc,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/ws", wsHandler)

	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		entries, err := ledgerSvc.Top(r.Context(), cfg.Ledger.TopN)
		if err != nil {
			logger := logging.FromContext(r.Context())
			logger.Error().Err(err).Msg("leaderboard fetch failed")
			httperrors.RespondInternalError(w, "leaderboard unavailable")
			return
		}
		if entries == nil {
			entries = []ledger.Entry{}
		}
		writeJSON(w, entries)
	})

	mux.HandleFunc("/api/recent-games", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		games := history.Recent(recentGamesLimit)
		writeJSON(w, games)
	})

	mux.HandleFunc("/api/game-status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		status, err := g.Snapshot(r.Context())
		if err != nil {
			logger := logging.FromContext(r.Context())
			logger.Error().Err(err).Msg("status snapshot failed")
			httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeServiceUnavailable, "session unavailable")
			return
		}
		writeJSON(w, status)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: withLogger(logger, corsHandler.Handler(mux)),
	}
}

// withLogger seeds every request context with the server logger so handlers
// pull it back out with logging.FromContext.
func withLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
	})
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
