// Package config provides configuration management for VenueScout.
// Settings come from environment variables with the VENUESCOUT_ prefix, with
// sensible defaults for everything. An optional YAML file (VENUESCOUT_CONFIG_FILE)
// is applied first; environment variables always win over file values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the VenueScout application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	LLM      LLMConfig      `yaml:"llm"`
	Security SecurityConfig `yaml:"security"`
	Mail     MailConfig     `yaml:"mail"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    `yaml:"port"` // Server port (default: 7380)
	Host string `yaml:"host"` // Server host (default: 127.0.0.1)
}

// CatalogConfig selects and configures the venue catalog backend.
type CatalogConfig struct {
	Engine      string `yaml:"engine"`       // Catalog engine: sqlite, postgres, csv (default: sqlite)
	DataPath    string `yaml:"data_path"`    // Data directory for the sqlite engine (default: ./data)
	CSVPath     string `yaml:"csv_path"`     // Source CSV for the csv engine (default: ./data/venues.csv)
	PostgresDSN string `yaml:"postgres_dsn"` // Connection string for the postgres engine
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider             string `yaml:"provider"`               // LLM provider: openai, anthropic, ollama (default: openai)
	OpenAIAPIKey         string `yaml:"openai_api_key"`         // OpenAI API key
	OpenAIModel          string `yaml:"openai_model"`           // OpenAI model name (default: gpt-4o-mini)
	OpenAIBaseURL        string `yaml:"openai_base_url"`        // Override for OpenAI-compatible endpoints
	AnthropicAPIKey      string `yaml:"anthropic_api_key"`      // Anthropic API key
	AnthropicModel       string `yaml:"anthropic_model"`        // Anthropic model name
	OllamaURL            string `yaml:"ollama_url"`             // Ollama API URL (default: http://localhost:11434)
	OllamaModel          string `yaml:"ollama_model"`           // Ollama completion model (default: llama3.1:8b)
	OllamaEmbeddingModel string `yaml:"ollama_embedding_model"` // Ollama embedding model (default: nomic-embed-text)
	EmbeddingModel       string `yaml:"embedding_model"`        // Embedding model for openai (default: text-embedding-3-small)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	Mode     string `yaml:"mode"`      // Security mode: development, production (default: development)
	APIToken string `yaml:"api_token"` // Bearer token required in production mode
}

// MailConfig contains the Gmail inquiry mailer settings.
type MailConfig struct {
	Enabled     bool   `yaml:"enabled"`      // Enable the inquiry mailer (default: false)
	AccessToken string `yaml:"access_token"` // Pre-issued Gmail OAuth bearer token
	FromAddress string `yaml:"from_address"` // Sender address for inquiry emails
	SenderName  string `yaml:"sender_name"`  // Display name used in email signatures
}

// LoadConfig loads configuration from the optional YAML file named by
// VENUESCOUT_CONFIG_FILE, then overlays environment variables on top.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("VENUESCOUT_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// defaults returns a Config populated with every default value.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 7380,
			Host: "127.0.0.1",
		},
		Catalog: CatalogConfig{
			Engine:   "sqlite",
			DataPath: "./data",
			CSVPath:  "./data/venues.csv",
		},
		LLM: LLMConfig{
			Provider:             "openai",
			OpenAIModel:          "gpt-4o-mini",
			AnthropicModel:       "claude-haiku-4-5-20251001",
			OllamaURL:            "http://localhost:11434",
			OllamaModel:          "llama3.1:8b",
			OllamaEmbeddingModel: "nomic-embed-text",
			EmbeddingModel:       "text-embedding-3-small",
		},
		Security: SecurityConfig{
			Mode: "development",
		},
	}
}

// applyFile overlays values from a YAML config file. Unset fields in the file
// leave the existing value untouched.
func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables. A set variable always wins over
// both defaults and file values.
func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("VENUESCOUT_PORT", cfg.Server.Port)
	cfg.Server.Host = getEnv("VENUESCOUT_HOST", cfg.Server.Host)

	cfg.Catalog.Engine = getEnv("VENUESCOUT_CATALOG_ENGINE", cfg.Catalog.Engine)
	cfg.Catalog.DataPath = getEnv("VENUESCOUT_DATA_PATH", cfg.Catalog.DataPath)
	cfg.Catalog.CSVPath = getEnv("VENUESCOUT_CSV_PATH", cfg.Catalog.CSVPath)
	cfg.Catalog.PostgresDSN = getEnv("VENUESCOUT_POSTGRES_DSN", cfg.Catalog.PostgresDSN)

	cfg.LLM.Provider = getEnv("VENUESCOUT_LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.OpenAIAPIKey = getEnv("VENUESCOUT_OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.OpenAIModel = getEnv("VENUESCOUT_OPENAI_MODEL", cfg.LLM.OpenAIModel)
	cfg.LLM.OpenAIBaseURL = getEnv("VENUESCOUT_OPENAI_BASE_URL", cfg.LLM.OpenAIBaseURL)
	cfg.LLM.AnthropicAPIKey = getEnv("VENUESCOUT_ANTHROPIC_API_KEY", cfg.LLM.AnthropicAPIKey)
	cfg.LLM.AnthropicModel = getEnv("VENUESCOUT_ANTHROPIC_MODEL", cfg.LLM.AnthropicModel)
	cfg.LLM.OllamaURL = getEnv("VENUESCOUT_OLLAMA_URL", cfg.LLM.OllamaURL)
	cfg.LLM.OllamaModel = getEnv("VENUESCOUT_OLLAMA_MODEL", cfg.LLM.OllamaModel)
	cfg.LLM.OllamaEmbeddingModel = getEnv("VENUESCOUT_OLLAMA_EMBEDDING_MODEL", cfg.LLM.OllamaEmbeddingModel)
	cfg.LLM.EmbeddingModel = getEnv("VENUESCOUT_EMBEDDING_MODEL", cfg.LLM.EmbeddingModel)

	cfg.Security.Mode = getEnv("VENUESCOUT_SECURITY_MODE", cfg.Security.Mode)
	cfg.Security.APIToken = getEnv("VENUESCOUT_API_TOKEN", cfg.Security.APIToken)

	cfg.Mail.Enabled = getEnvBool("VENUESCOUT_MAIL_ENABLED", cfg.Mail.Enabled)
	cfg.Mail.AccessToken = getEnv("VENUESCOUT_GMAIL_TOKEN", cfg.Mail.AccessToken)
	cfg.Mail.FromAddress = getEnv("VENUESCOUT_MAIL_FROM", cfg.Mail.FromAddress)
	cfg.Mail.SenderName = getEnv("VENUESCOUT_MAIL_SENDER_NAME", cfg.Mail.SenderName)
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false
// (case-insensitive).
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
