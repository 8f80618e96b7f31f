package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// ValidLogLevels lists the accepted --log-level / LOG_LEVEL names.
var ValidLogLevels = []string{"DEBUG", "INFO", "WARNING", "WARN", "ERROR", "CRITICAL"}

// Config holds all application configuration
type Config struct {
	// The Odds API
	OddsAPIKey            string        `envconfig:"ODDS_API_KEY"`
	OddsAPIKeyFile        string        `envconfig:"ODDS_API_KEY_FILE" default:""`
	OddsBaseURL           string        `envconfig:"ODDS_API_BASE_URL" default:"https://api.the-odds-api.com/v4"`
	OddsSport             string        `envconfig:"ODDS_SPORT" default:"basketball_nba"`
	OddsMarket            string        `envconfig:"ODDS_MARKET" default:"player_points"`
	OddsRegions           string        `envconfig:"ODDS_REGIONS" default:"us"`
	OddsFormat            string        `envconfig:"ODDS_FORMAT" default:"american"`
	OddsTimeout           time.Duration `envconfig:"ODDS_TIMEOUT" default:"20s"`
	OddsRequestsPerSecond float64       `envconfig:"ODDS_REQUESTS_PER_SECOND" default:"5"`

	// Artifacts
	PlayerLogsPath string `envconfig:"PLAYER_LOGS_PATH" default:"data/player_logs.parquet"`
	Last5Path      string `envconfig:"LAST5_PATH" default:"cache/last5.parquet"`
	ModelPath      string `envconfig:"MODEL_PATH" default:"models/pts.json"`
	AliasesPath    string `envconfig:"ALIASES_PATH" default:"data/aliases.yaml"`

	// Ranking
	TopN int `envconfig:"TOP_N" default:"10"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`
	LogFile  string `envconfig:"LOG_FILE" default:""`

	// Monitoring
	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL" default:""`

	// Sinks
	RedisURL         string `envconfig:"REDIS_URL" default:""`
	RedisChannel     string `envconfig:"REDIS_CHANNEL" default:"nba:edges"`
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" default:"0"`
}

// ConfigError reports a missing or invalid setting. It is always fatal and
// is raised before any network call.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Load loads configuration from environment variables.
// It first attempts to load a .env file from the working directory.
// flagLevel is the --log-level value; empty means "not given".
func Load(flagLevel string) (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("failed to process environment config: %v", err)}
	}

	if flagLevel != "" {
		cfg.LogLevel = flagLevel
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "INFO"
	}

	// Mounted secret (e.g. /run/secrets/odds_api_key) when the key is not in env
	if cfg.OddsAPIKey == "" && cfg.OddsAPIKeyFile != "" {
		key, err := readSecretFile(cfg.OddsAPIKeyFile)
		if err != nil {
			return nil, err
		}
		cfg.OddsAPIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readSecretFile reads a secret from a mounted file. Missing or empty is a
// configuration error.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ConfigError{Field: "ODDS_API_KEY_FILE", Msg: fmt.Sprintf("secret file not readable: %s", path)}
	}
	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", &ConfigError{Field: "ODDS_API_KEY_FILE", Msg: fmt.Sprintf("secret file %s is empty", path)}
	}
	return secret, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OddsAPIKey) == "" {
		return &ConfigError{Field: "ODDS_API_KEY", Msg: "missing; add it to the environment or .env"}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.TopN < 1 || c.TopN > 100 {
		return &ConfigError{Field: "TOP_N", Msg: fmt.Sprintf("must be between 1 and 100, got %d", c.TopN)}
	}

	if c.OddsTimeout <= 0 {
		return &ConfigError{Field: "ODDS_TIMEOUT", Msg: fmt.Sprintf("must be positive, got %v", c.OddsTimeout)}
	}

	if c.OddsRequestsPerSecond <= 0 {
		return &ConfigError{Field: "ODDS_REQUESTS_PER_SECOND", Msg: fmt.Sprintf("must be positive, got %v", c.OddsRequestsPerSecond)}
	}

	switch c.OddsFormat {
	case "american", "decimal":
	default:
		return &ConfigError{Field: "ODDS_FORMAT", Msg: fmt.Sprintf("must be american or decimal, got %q", c.OddsFormat)}
	}

	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		return &ConfigError{Field: "TELEGRAM_CHAT_ID", Msg: "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"}
	}

	return nil
}

// Level returns the resolved zerolog level. Validate has already
// rejected unknown names, so this never fails on a loaded Config.
func (c *Config) Level() zerolog.Level {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseLogLevel maps a severity name to a zerolog level.
func ParseLogLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARNING", "WARN":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	}
	return zerolog.NoLevel, &ConfigError{
		Field: "LOG_LEVEL",
		Msg:   fmt.Sprintf("unrecognized level %q (valid: %s)", name, strings.Join(ValidLogLevels, ", ")),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// NotifyEnabled reports whether any result sink is configured.
func (c *Config) NotifyEnabled() bool {
	return c.RedisURL != "" || c.TelegramBotToken != ""
}
