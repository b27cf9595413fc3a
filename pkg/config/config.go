package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Sentinel configuration.
type Config struct {
	Listen       string        `yaml:"listen"`
	DBPath       string        `yaml:"db_path"`
	API          APIConfig     `yaml:"api"`
	Pricing      PricingConfig `yaml:"pricing"`
	History      HistoryConfig `yaml:"history"`
	Budget       BudgetConfig  `yaml:"budget"`
	AuthTokenEnv string        `yaml:"auth_token_env"`
}

// APIConfig defines the upstream chat-completion endpoint. An empty Key
// selects demo mode: responses are fabricated locally with no network access.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Key         string        `yaml:"key"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// PricingConfig controls cost estimation. A single flat per-million-token
// price is applied to the combined prompt+completion token count.
type PricingConfig struct {
	PricePerMillion float64 `yaml:"price_per_million"`
}

// HistoryConfig controls the report archive.
type HistoryConfig struct {
	Enabled       bool `yaml:"enabled"`
	RetentionDays int  `yaml:"retention_days"`
}

// BudgetConfig controls spend-cap enforcement.
type BudgetConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Policies []BudgetPolicy `yaml:"policies"`
}

// BudgetPolicy caps estimated spend (USD) per period. An optional kind
// restricts the cap to one analysis type.
type BudgetPolicy struct {
	Kind    string  `yaml:"kind,omitempty"`
	Period  string  `yaml:"period"` // "daily" or "monthly"
	MaxCost float64 `yaml:"max_cost"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "sentinel.db",
		API: APIConfig{
			BaseURL:     "https://api.deepseek.com",
			Model:       "deepseek-chat",
			MaxTokens:   3000,
			Temperature: 0.1,
			Timeout:     30 * time.Second,
		},
		Pricing: PricingConfig{
			PricePerMillion: 0.21,
		},
		History: HistoryConfig{
			Enabled:       true,
			RetentionDays: 90,
		},
		Budget: BudgetConfig{
			Enabled: false,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
