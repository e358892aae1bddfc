package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"github.com/ifuryst/museos/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Logger    logger.Config   `yaml:"logger"`
	Auth      AuthConfig      `yaml:"auth"`
	Scraper   ScraperConfig   `yaml:"scraper"`
	LLM       LLMConfig       `yaml:"llm"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
	Path     string `yaml:"path"` // sqlite file, ":memory:" allowed
}

type AuthConfig struct {
	// JWTSecret verifies HS256 user tokens issued by the auth provider.
	JWTSecret string `yaml:"jwt_secret"`
	// CronSecret is the bearer token the external hourly trigger presents.
	CronSecret string `yaml:"cron_secret"`
}

type ScraperConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	KeywordActorID string `yaml:"keyword_actor_id"`
	ProfileActorID string `yaml:"profile_actor_id"`
	Timeout        string `yaml:"timeout"`
}

type LLMConfig struct {
	Provider    string  `yaml:"provider"` // openai or anthropic
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	APIURL      string  `yaml:"api_url"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	MaxRetries  int     `yaml:"max_retries"`
	Timeout     string  `yaml:"timeout"`
}

type PipelineConfig struct {
	MaxRounds       int `yaml:"max_rounds"`
	DefaultCount    int `yaml:"default_count"`
	MaxCount        int `yaml:"max_count"`
	Concurrency     int `yaml:"concurrency"`
	MinSourceLength int `yaml:"min_source_length"`
	MinOutputLength int `yaml:"min_output_length"`
}

type SchedulerConfig struct {
	// Enabled runs the hourly check in-process. Leave off when an external
	// trigger calls /api/cron.
	Enabled       bool   `yaml:"enabled"`
	CheckInterval string `yaml:"check_interval"`
	RetentionDays int    `yaml:"retention_days"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	return cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5334
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "museos.db"
	}
	if cfg.Scraper.BaseURL == "" {
		cfg.Scraper.BaseURL = "https://api.apify.com/v2"
	}
	if cfg.Scraper.Timeout == "" {
		cfg.Scraper.Timeout = "120s"
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.7
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 2
	}
	// A negative count would mean unlimited retries; treat it as none.
	if cfg.LLM.MaxRetries < 0 {
		cfg.LLM.MaxRetries = 0
	}
	if cfg.LLM.Timeout == "" {
		cfg.LLM.Timeout = "60s"
	}
	if cfg.Pipeline.MaxRounds == 0 {
		cfg.Pipeline.MaxRounds = 2
	}
	if cfg.Pipeline.DefaultCount == 0 {
		cfg.Pipeline.DefaultCount = 3
	}
	if cfg.Pipeline.MaxCount == 0 {
		cfg.Pipeline.MaxCount = 10
	}
	if cfg.Pipeline.Concurrency == 0 {
		cfg.Pipeline.Concurrency = 5
	}
	if cfg.Pipeline.MinSourceLength == 0 {
		cfg.Pipeline.MinSourceLength = 80
	}
	if cfg.Pipeline.MinOutputLength == 0 {
		cfg.Pipeline.MinOutputLength = 50
	}
	if cfg.Scheduler.CheckInterval == "" {
		cfg.Scheduler.CheckInterval = "1h"
	}
	if cfg.Scheduler.RetentionDays == 0 {
		cfg.Scheduler.RetentionDays = 90
	}
}
