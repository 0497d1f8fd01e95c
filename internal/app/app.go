package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trivia-arena/internal/config"
	"trivia-arena/internal/game"
	"trivia-arena/internal/ledger"
	"trivia-arena/internal/logging"
	"trivia-arena/internal/question"
	"trivia-arena/internal/server"
	ws "trivia-arena/pkg/http/ws"
)

// Application aggregates shared infrastructure (ledger backend, HTTP server,
// game loop).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	game  *game.Game
	http  *http.Server
	redis *redis.Client
	pool  *pgxpool.Pool
}

// New bootstraps config, logger, question bank, ledger backend, game loop
// and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	bank, err := loadBank(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{cfg: cfg, logger: logger}

	store, err := app.buildLedgerStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	ledgerSvc := ledger.NewService(store, logger, ledger.ServiceOptions{TopN: cfg.Ledger.TopN})
	history := ledger.NewHistoryLog(ledger.DefaultHistoryCapacity)
	hub := ws.NewHub(logger)

	gameCfg := game.Config{
		MinParticipants: cfg.Game.MinParticipants,
		QuestionSeconds: cfg.Game.QuestionSeconds,
		TickInterval:    cfg.Game.TickInterval,
		JoinDelay:       cfg.Game.JoinDelay,
		AdvanceDelay:    cfg.Game.AdvanceDelay,
		ResetDelay:      cfg.Game.ResetDelay,
		Scoring:         game.DefaultScoringConfig(),
	}

	g := game.NewGame(gameCfg, bank, ledgerSvc, history, hub, logger)
	wsHandler := game.NewHandler(g, hub, logger)

	app.game = g
	app.http = server.NewHTTPServer(cfg, logger, g, ledgerSvc, history, wsHandler.HandleWebSocket)

	logger.Info().
		Str("ledger_backend", cfg.Ledger.Backend).
		Int("questions", bank.Count()).
		Msg("application bootstrapped")

	return app, nil
}

func loadBank(cfg *config.App, logger zerolog.Logger) (*question.Bank, error) {
	if cfg.Questions.Path == "" {
		logger.Info().Msg("using built-in question bank")
		return question.Default(), nil
	}
	bank, err := question.LoadFile(cfg.Questions.Path)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	logger.Info().Str("path", cfg.Questions.Path).Int("questions", bank.Count()).Msg("question bank loaded")
	return bank, nil
}

func (a *Application) buildLedgerStore(ctx context.Context, cfg *config.App, logger zerolog.Logger) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerBackendMemory:
		return ledger.NewMemoryStore(), nil

	case config.LedgerBackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return ledger.NewRedisStore(a.redis, ""), nil

	case config.LedgerBackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		a.pool = pool
		return ledger.NewPostgresStore(pool), nil

	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

// Run starts the game loop and HTTP server, then waits for termination.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() {
		if err := a.game.Run(loopCtx); err != nil && err != context.Canceled {
			a.logger.Warn().Err(err).Msg("game loop stopped")
		}
	}()

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	stopLoop()

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
