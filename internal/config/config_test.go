package config_test

import (
	"consultgpt-pipeline/internal/config"
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	os.Setenv("ENVIRONMENT", "test")
	os.Setenv("PORT", "9090")
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("CRUSTDATA_API_KEY", "crust-key")

	defer func() {
		os.Unsetenv("ENVIRONMENT")
		os.Unsetenv("PORT")
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("CRUSTDATA_API_KEY")
	}()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Environment != "test" {
		t.Errorf("Expected environment 'test', got %s", cfg.Environment)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.HTTP.Port)
	}

	if cfg.OpenAI.APIKey != "test-key" {
		t.Errorf("Expected OpenAI API key 'test-key', got %s", cfg.OpenAI.APIKey)
	}

	if !cfg.CrustDataEnabled() {
		t.Error("Expected Crustdata to be enabled when key is set")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("ENVIRONMENT")
	os.Unsetenv("PORT")
	os.Unsetenv("CRUSTDATA_API_KEY")
	os.Unsetenv("REDIS_URL")
	os.Setenv("OPENAI_API_KEY", "test-key")

	defer os.Unsetenv("OPENAI_API_KEY")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", cfg.Environment)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.HTTP.Port)
	}

	if cfg.OpenAI.Model != "gpt-5" {
		t.Errorf("Expected default model 'gpt-5', got %s", cfg.OpenAI.Model)
	}

	if cfg.OpenAI.MaxTokensInitial != 1500 {
		t.Errorf("Expected initial token ceiling 1500, got %d", cfg.OpenAI.MaxTokensInitial)
	}

	if cfg.OpenAI.MaxTokensFollowUp != 3000 {
		t.Errorf("Expected follow-up token ceiling 3000, got %d", cfg.OpenAI.MaxTokensFollowUp)
	}

	if cfg.CrustData.BaseURL != "https://api.crustdata.com" {
		t.Errorf("Expected default Crustdata base URL, got %s", cfg.CrustData.BaseURL)
	}

	if cfg.CrustData.S3Username != "consultgpt-user" {
		t.Errorf("Expected default s3 username 'consultgpt-user', got %s", cfg.CrustData.S3Username)
	}

	if cfg.Redis.ChatTTL != 7*24*time.Hour {
		t.Errorf("Expected default chat TTL of 7 days, got %s", cfg.Redis.ChatTTL)
	}

	if cfg.CrustDataEnabled() {
		t.Error("Expected Crustdata to be disabled without a key")
	}

	if cfg.RedisEnabled() {
		t.Error("Expected Redis to be disabled without a URL")
	}
}

func TestLoadConfigRequiresOpenAIKey(t *testing.T) {
	os.Unsetenv("OPENAI_API_KEY")

	if _, err := config.Load(); err == nil {
		t.Error("Expected error when OPENAI_API_KEY is missing")
	}
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "test-key")
	os.Setenv("PORT", "not-a-number")

	defer func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("PORT")
	}()

	if _, err := config.Load(); err == nil {
		t.Error("Expected error for non-numeric PORT")
	}
}
