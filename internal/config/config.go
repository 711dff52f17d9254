// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	AllowedOrigins []string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	MaxTurns      int

	AWSRegion   string
	AWSS3Bucket string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/support.db"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		MaxTurns:       getEnvInt("MAX_AGENT_TURNS", 8),
		AWSRegion:      getEnv("AWS_REGION", "ap-southeast-1"),
		AWSS3Bucket:    getEnv("AWS_S3_BUCKET_NAME", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY cannot be empty")
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("OPENAI_MODEL cannot be empty")
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("MAX_AGENT_TURNS must be > 0")
	}
	return nil
}

// UploadEnabled reports whether the image-upload endpoint should be wired.
func (c *Config) UploadEnabled() bool {
	return c.AWSS3Bucket != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
