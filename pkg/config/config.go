// Package config loads engine configuration from config.yaml with
// environment variable overrides. Secrets (API keys, passwords) come from
// the environment only and are never read from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the translation engine.
type Config struct {
	// Server configuration (thin HTTP shell around the pipeline)
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Pipeline behavior
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Generation backends, highest priority first
	Backends BackendsConfig `yaml:"backends"`

	// Warehouse (SQL Server) used only for catalog refresh
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Query history sink (PostgreSQL), optional
	History HistoryConfig `yaml:"history"`
}

// PipelineConfig holds orchestrator tunables.
type PipelineConfig struct {
	// MaxAttempts bounds ordinary generation rounds. The correction pass is
	// on top of this budget, so total backend passes are MaxAttempts + 1.
	MaxAttempts int `yaml:"max_attempts" env:"PIPELINE_MAX_ATTEMPTS" env-default:"2"`

	// EnableResponseCache toggles the per-backend prompt/response cache.
	EnableResponseCache bool `yaml:"enable_response_cache" env:"PIPELINE_ENABLE_RESPONSE_CACHE" env-default:"true"`
}

// BackendConfig describes one OpenAI-compatible generation endpoint.
type BackendConfig struct {
	Name     string `yaml:"name" env-default:""`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
	// TimeoutSeconds bounds a single generation call; a timeout is treated
	// the same as an empty response.
	TimeoutSeconds int `yaml:"timeout_seconds" env-default:"120"`
}

// AnthropicConfig describes the Anthropic correction backend.
type AnthropicConfig struct {
	Model          string `yaml:"model" env:"ANTHROPIC_MODEL" env-default:""`
	APIKey         string `yaml:"-" env:"ANTHROPIC_API_KEY"` // Secret - not in YAML
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ANTHROPIC_TIMEOUT_SECONDS" env-default:"60"`
}

// BackendsConfig holds the generation fallback chain plus the dedicated
// correction backend.
type BackendsConfig struct {
	// Chain is walked in order on each generation round; an empty or failed
	// response advances to the next entry.
	Chain []BackendConfig `yaml:"chain"`

	// Anthropic, when configured, handles the final correction pass.
	Anthropic AnthropicConfig `yaml:"anthropic"`
}

// WarehouseConfig holds the SQL Server connection used for schema catalog
// refresh. The engine never executes analytical SQL itself.
type WarehouseConfig struct {
	Host     string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"1433"`
	User     string `yaml:"user" env:"WAREHOUSE_USER" env-default:""`
	Password string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:"ContosoRetailDW"`

	// RefreshMinutes is how often the catalog snapshot is refreshed in the
	// background; 0 disables periodic refresh (refresh on demand only).
	RefreshMinutes int `yaml:"refresh_minutes" env:"WAREHOUSE_REFRESH_MINUTES" env-default:"30"`
}

// ConnectionString renders a go-mssqldb URL for the warehouse.
func (w *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
		w.User, w.Password, w.Host, w.Port, w.Database)
}

// HistoryConfig holds the PostgreSQL history sink settings.
type HistoryConfig struct {
	Enabled        bool   `yaml:"enabled" env:"HISTORY_ENABLED" env-default:"false"`
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"nlsql"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"nlsql_history"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	MigrationsPath string `yaml:"migrations_path" env:"HISTORY_MIGRATIONS_PATH" env-default:"migrations"`
}

// URL renders a pgx connection URL for the history database.
func (h *HistoryConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		h.User, h.Password, h.Host, h.Port, h.Database, h.SSLMode)
}

// Load reads config.yaml (when present) with environment overrides applied,
// then validates the result.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pipeline.MaxAttempts < 1 {
		return fmt.Errorf("pipeline.max_attempts must be >= 1, got %d", c.Pipeline.MaxAttempts)
	}
	for i, b := range c.Backends.Chain {
		if b.Endpoint == "" {
			return fmt.Errorf("backends.chain[%d]: endpoint is required", i)
		}
		if b.Model == "" {
			return fmt.Errorf("backends.chain[%d]: model is required", i)
		}
	}
	return nil
}

// Timeout returns the configured timeout for a chain entry.
func (b *BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// Timeout returns the configured timeout for the correction backend.
func (a *AnthropicConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}
