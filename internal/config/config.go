// Copyright (c) 2025-2026 Reliant Windows Ltd.
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"RELIANT_DB_PATH" envDefault:"./data/reliant.db"`
	SessionSecret string `env:"RELIANT_SESSION_SECRET,required"`
	ServerHost    string `env:"RELIANT_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"RELIANT_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"RELIANT_ENV" envDefault:"development"`
	LogLevel      string `env:"RELIANT_LOG_LEVEL" envDefault:"info"`

	// Price predictor configuration
	PriceModelPath string `env:"RELIANT_PRICE_MODEL_PATH" envDefault:"./data/price_model.json"`
	// AllowDegraded lets the server start without a trained price model;
	// the predict endpoint then answers 503 instead of the process failing.
	AllowDegraded bool `env:"RELIANT_ALLOW_DEGRADED" envDefault:"false"`
	// RetrainCron is an optional cron expression for periodic model
	// retraining. Empty disables the job.
	RetrainCron string `env:"RELIANT_RETRAIN_CRON"`

	// Summary generator configuration
	SummaryAPIKey  string `env:"RELIANT_SUMMARY_API_KEY"`
	SummaryBaseURL string `env:"RELIANT_SUMMARY_BASE_URL"` // optional OpenAI-compatible endpoint
	SummaryModel   string `env:"RELIANT_SUMMARY_MODEL" envDefault:"gpt-4o-mini"`

	// Seeding configuration
	DoSeed bool `env:"RELIANT_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("RELIANT_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("RELIANT_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("RELIANT_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
