package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
llm:
  method: openai
  openai:
    model: test-model
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 2*time.Minute {
		t.Fatalf("write timeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.RateLimit.Story.Limit != 30 || cfg.RateLimit.Story.Window != time.Minute {
		t.Fatalf("story rate rule = %+v", cfg.RateLimit.Story)
	}
	if cfg.RateLimit.Feedback.Limit != 1 {
		t.Fatalf("feedback rate rule = %+v", cfg.RateLimit.Feedback)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-openai-key")
	t.Setenv("SENDGRID_API_KEY", "env-sg-key")
	t.Setenv("MYSQL_PASSWORD", "env-mysql-pw")
	t.Setenv("REDIS_PASSWORD", "env-redis-pw")

	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.OpenAI.APIKey != "env-openai-key" {
		t.Fatalf("openai key = %q", cfg.LLM.OpenAI.APIKey)
	}
	if cfg.Feedback.SendGridAPIKey != "env-sg-key" {
		t.Fatalf("sendgrid key = %q", cfg.Feedback.SendGridAPIKey)
	}
	if cfg.Database.MySQL.Password != "env-mysql-pw" {
		t.Fatalf("mysql password = %q", cfg.Database.MySQL.Password)
	}
	if cfg.Database.Redis.Password != "env-redis-pw" {
		t.Fatalf("redis password = %q", cfg.Database.Redis.Password)
	}
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
llm:
  method: ollama
  ollama:
    url: http://localhost:11434/api/generate
    model: llama3
ratelimit:
  story:
    limit: 5
logging:
  level: debug
  format: json
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.LLM.Method != "ollama" || cfg.LLM.Ollama.Model != "llama3" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.RateLimit.Story.Limit != 5 || cfg.RateLimit.Story.Window != time.Minute {
		t.Fatalf("story rate rule = %+v", cfg.RateLimit.Story)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsMissingMethod(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err == nil {
		t.Fatal("expected validation error for missing llm method")
	}
}

func TestLoadRejectsBadURL(t *testing.T) {
	_, err := Load(writeConfig(t, `
llm:
  method: ollama
  ollama:
    url: not-a-url
`))
	if err == nil {
		t.Fatal("expected validation error for bad URL")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "llm: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
}
