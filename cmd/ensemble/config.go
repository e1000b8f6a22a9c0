package main

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/hupe1980/ensemble/engine"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Provider        string `env:"ENSEMBLE_PROVIDER,default=mock" validate:"oneof=openai anthropic mock"`
	ModelName       string `env:"ENSEMBLE_MODEL"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY" validate:"required_if=Provider openai"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY" validate:"required_if=Provider anthropic"`
	Temperature     float64 `env:"ENSEMBLE_TEMPERATURE,default=0.7" validate:"gte=0,lte=2"`
	Retries         int     `env:"ENSEMBLE_RETRIES,default=3" validate:"gte=1"`

	MaxIterations   int           `env:"ENSEMBLE_MAX_ITERATIONS,default=2" validate:"gt=0"`
	TimeLimit       time.Duration `env:"ENSEMBLE_TIME_LIMIT,default=5m" validate:"gt=0"`
	MaxRefiners     int           `env:"ENSEMBLE_MAX_REFINERS,default=2" validate:"gte=0"`
	HistoryLimit    int           `env:"ENSEMBLE_HISTORY_LIMIT,default=0" validate:"gte=0"`
	MaxModelCalls   int           `env:"ENSEMBLE_MAX_MODEL_CALLS,default=0" validate:"gte=0"`
	EnforceDeadline bool          `env:"ENSEMBLE_ENFORCE_DEADLINE,default=false"`
	Concurrency     int           `env:"ENSEMBLE_CONCURRENCY,default=0" validate:"gte=0"`
	GroupChatRounds int           `env:"ENSEMBLE_GROUPCHAT_ROUNDS,default=2" validate:"gt=0"`

	AssetsDir   string `env:"ENSEMBLE_ASSETS_DIR,default=clothes"`
	ResultsDir  string `env:"ENSEMBLE_RESULTS_DIR,default=results"`
	StorePath   string `env:"ENSEMBLE_STORE_PATH"`
	CatalogPath string `env:"ENSEMBLE_CATALOG"`

	LogLevel  string `env:"LOG_LEVEL,default=warn"`
	LogFormat string `env:"LOG_FORMAT,default=text" validate:"oneof=text json"`
	Colors    bool   `env:"ENSEMBLE_COLORS,default=true"`
}

// loadConfig reads envFile (a missing file is ignored) and the environment.
func loadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// EngineConfig maps the budgets onto engine.Config.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		MaxIterations:   c.MaxIterations,
		TimeLimit:       c.TimeLimit,
		MaxRefiners:     c.MaxRefiners,
		HistoryLimit:    c.HistoryLimit,
		MaxModelCalls:   c.MaxModelCalls,
		EnforceDeadline: c.EnforceDeadline,
	}
}
