package config

import "testing"

func validConfig() *Config {
	return &Config{
		Port:         "8080",
		DBPath:       "./data/support.db",
		OpenAIAPIKey: "sk-test",
		OpenAIModel:  "gpt-4.1-mini",
		MaxTurns:     8,
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	mutations := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
		{"empty api key", func(c *Config) { c.OpenAIAPIKey = "" }},
		{"empty model", func(c *Config) { c.OpenAIModel = "" }},
		{"zero max turns", func(c *Config) { c.MaxTurns = 0 }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Unexpected default port %q", cfg.Port)
	}
	if cfg.AWSRegion != "ap-southeast-1" {
		t.Errorf("Unexpected default region %q", cfg.AWSRegion)
	}
	if cfg.UploadEnabled() {
		t.Error("Upload must be disabled without a bucket")
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("Unexpected default origins %v", cfg.AllowedOrigins)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Expected error without OPENAI_API_KEY")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList("https://a.example, https://b.example ,")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("Unexpected split %v", got)
	}
	if splitList("") != nil {
		t.Error("Expected nil for empty input")
	}
}
