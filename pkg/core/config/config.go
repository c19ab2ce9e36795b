// Package config loads the application configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the application configuration, read from config/app.yaml.
type Config struct {
	Addr            string   `yaml:"addr"`
	FormType        string   `yaml:"form_type"`
	UserAgent       string   `yaml:"user_agent"`
	GeminiModel     string   `yaml:"gemini_model"`
	RequiredMetrics []string `yaml:"required_metrics"`
	SeriesQuarters  int      `yaml:"series_quarters"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Addr:        ":8080",
		FormType:    "10-Q",
		GeminiModel: "gemini-2.0-flash-exp",
		RequiredMetrics: []string{
			"revenue",
			"net_income",
			"eps_diluted",
			"gross_margin",
			"operating_margin",
			"free_cash_flow",
		},
		SeriesQuarters: 8,
	}
}

// Load reads and parses the config file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.FormType == "" {
		cfg.FormType = "10-Q"
	}
	if cfg.SeriesQuarters <= 0 {
		cfg.SeriesQuarters = 8
	}
	if len(cfg.RequiredMetrics) == 0 {
		cfg.RequiredMetrics = Default().RequiredMetrics
	}
	return cfg, nil
}
