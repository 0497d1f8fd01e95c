package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Ledger backend selectors.
const (
	LedgerBackendMemory   = "memory"
	LedgerBackendRedis    = "redis"
	LedgerBackendPostgres = "postgres"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-arena"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Game      Game
	Questions Questions
	Ledger    Ledger
	Redis     Redis
	Postgres  Postgres
	CORS      CORS
}

// Game groups the session state machine timing knobs.
type Game struct {
	MinParticipants int           `env:"GAME_MIN_PARTICIPANTS" envDefault:"2"`
	QuestionSeconds int           `env:"GAME_QUESTION_SECONDS" envDefault:"15"`
	TickInterval    time.Duration `env:"GAME_TICK_INTERVAL" envDefault:"1s"`
	JoinDelay       time.Duration `env:"GAME_JOIN_DELAY" envDefault:"3s"`
	AdvanceDelay    time.Duration `env:"GAME_ADVANCE_DELAY" envDefault:"2s"`
	ResetDelay      time.Duration `env:"GAME_RESET_DELAY" envDefault:"5s"`
}

// Questions configures the question bank source.
type Questions struct {
	// Path to a JSON question bank; empty means the built-in bank.
	Path string `env:"QUESTIONS_PATH"`
}

// Ledger selects where cumulative scores are kept.
type Ledger struct {
	Backend string `env:"LEDGER_BACKEND" envDefault:"memory"`
	TopN    int    `env:"LEDGER_TOP_N" envDefault:"10"`
}

// Redis holds cache configuration (used when LEDGER_BACKEND=redis).
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Postgres captures connection info (used when LEDGER_BACKEND=postgres).
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// ConnString builds a pgx-compatible connection string.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Load parses environment variables into App config.
func Load() (*App, error) {
	cfg := &App{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *App) validate() error {
	switch c.Ledger.Backend {
	case LedgerBackendMemory, LedgerBackendRedis:
	case LedgerBackendPostgres:
		if c.Postgres.User == "" || c.Postgres.Database == "" {
			return fmt.Errorf("PG_USER and PG_DATABASE are required when LEDGER_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("unknown ledger backend %q", c.Ledger.Backend)
	}
	if c.Game.MinParticipants < 2 {
		return fmt.Errorf("GAME_MIN_PARTICIPANTS must be at least 2")
	}
	if c.Game.QuestionSeconds <= 0 {
		return fmt.Errorf("GAME_QUESTION_SECONDS must be positive")
	}
	return nil
}
