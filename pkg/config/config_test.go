package config

import (
	"os"
	"testing"
	"time"
)

type testConfig struct {
	Name    string        `yaml:"name" env:"APP_NAME"`
	Port    int           `yaml:"port" env:"APP_PORT"`
	Debug   bool          `yaml:"debug" env:"APP_DEBUG"`
	Nested  struct {
		URL     string        `yaml:"url" env:"NESTED_URL"`
		Timeout time.Duration `env:"NESTED_TIMEOUT"`
	} `yaml:"nested"`
}

func TestLoad(t *testing.T) {
	content := `
name: test-app
port: 8080
debug: false
nested:
  url: https://shop.example.com
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.WriteString(content)
	f.Close()

	var cfg testConfig
	if err := Load(f.Name(), &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "test-app" {
		t.Fatalf("expected 'test-app', got '%s'", cfg.Name)
	}
	if cfg.Port != 8080 {
		t.Fatalf("expected 8080, got %d", cfg.Port)
	}
	if cfg.Debug {
		t.Fatal("expected debug to be false")
	}
	if cfg.Nested.URL != "https://shop.example.com" {
		t.Fatalf("unexpected nested url: %s", cfg.Nested.URL)
	}
}

func TestEnvOverride(t *testing.T) {
	content := `
name: default
port: 3000
`
	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(f.Name())
	f.WriteString(content)
	f.Close()

	t.Setenv("APP_NAME", "from-env")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("NESTED_URL", "https://env.example.com")
	t.Setenv("NESTED_TIMEOUT", "45s")

	var cfg testConfig
	if err := Load(f.Name(), &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.Name != "from-env" {
		t.Fatalf("expected 'from-env', got '%s'", cfg.Name)
	}
	if cfg.Port != 9090 {
		t.Fatalf("expected 9090, got %d", cfg.Port)
	}
	if !cfg.Debug {
		t.Fatal("expected debug to be true from env")
	}
	if cfg.Nested.URL != "https://env.example.com" {
		t.Fatalf("nested env override missed: %s", cfg.Nested.URL)
	}
	if cfg.Nested.Timeout != 45*time.Second {
		t.Fatalf("expected 45s, got %v", cfg.Nested.Timeout)
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	t.Setenv("APP_NAME", "env-only")

	var cfg testConfig
	if err := LoadOrDefault("/nonexistent/config.yaml", &cfg); err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Name != "env-only" {
		t.Fatalf("expected env-only fallback, got '%s'", cfg.Name)
	}
	if cfg.Port != 0 {
		t.Fatalf("expected zero port, got %d", cfg.Port)
	}
}
