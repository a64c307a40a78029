package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm" validate:"required"`
	Database  DatabaseConfig  `yaml:"database"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port" validate:"min=0,max=65535"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LLMConfig selects the active backend and carries the settings for
// all of them; only the selected method's section is consulted.
type LLMConfig struct {
	Method string       `yaml:"method" validate:"required"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Ollama OllamaConfig `yaml:"ollama"`
	Local  LocalConfig  `yaml:"local"`
}

// OpenAIConfig points at any OpenAI-protocol-compatible endpoint
// (Groq, OpenAI, ...).
type OpenAIConfig struct {
	BaseURL string        `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type OllamaConfig struct {
	URL     string        `yaml:"url" validate:"omitempty,url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type LocalConfig struct {
	Model        string  `yaml:"model"`
	MaxNewTokens int     `yaml:"max_new_tokens"`
	Temperature  float64 `yaml:"temperature"`
	MaxWorkers   int     `yaml:"max_workers"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `yaml:"mysql"`
	Redis RedisConfig `yaml:"redis"`
}

type MySQLConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type FeedbackConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	EmailFrom      string `yaml:"email_from" validate:"omitempty,email"`
	EmailTo        string `yaml:"email_to" validate:"omitempty,email"`
}

type RateLimitConfig struct {
	Story    RateRule `yaml:"story"`
	Feedback RateRule `yaml:"feedback"`
}

// RateRule allows Limit requests per Window per client IP.
type RateRule struct {
	Limit  int           `yaml:"limit"`
	Window time.Duration `yaml:"window"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads configuration from a YAML file, applies environment
// variable overrides for credentials, fills defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Credentials are never required in the YAML file itself.
func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAI.APIKey = key
	}
	if key := os.Getenv("SENDGRID_API_KEY"); key != "" {
		cfg.Feedback.SendGridAPIKey = key
	}
	if pw := os.Getenv("MYSQL_PASSWORD"); pw != "" {
		cfg.Database.MySQL.Password = pw
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Database.Redis.Password = pw
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Story turns wait on the LLM, so the write timeout is generous.
		cfg.Server.WriteTimeout = 2 * time.Minute
	}
	if cfg.RateLimit.Story.Limit == 0 {
		cfg.RateLimit.Story.Limit = 30
	}
	if cfg.RateLimit.Story.Window == 0 {
		cfg.RateLimit.Story.Window = time.Minute
	}
	if cfg.RateLimit.Feedback.Limit == 0 {
		cfg.RateLimit.Feedback.Limit = 1
	}
	if cfg.RateLimit.Feedback.Window == 0 {
		cfg.RateLimit.Feedback.Window = time.Minute
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
