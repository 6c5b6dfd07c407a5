// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"ATELIER_DB_PATH" envDefault:"./data/atelier.db"`
	SessionSecret string `env:"ATELIER_SESSION_SECRET,required"`
	ServerHost    string `env:"ATELIER_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"ATELIER_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"ATELIER_ENV" envDefault:"development"`
	LogLevel      string `env:"ATELIER_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"ATELIER_UPLOADS_DIR" envDefault:"./public/uploads"`

	// Admin account seeded on first start
	AdminUsername string `env:"ATELIER_ADMIN_USERNAME"`
	AdminPassword string `env:"ATELIER_ADMIN_PASSWORD"`

	// Outgoing mail for contact form notifications; disabled when host is empty
	SMTPHost     string `env:"ATELIER_SMTP_HOST"`
	SMTPPort     int    `env:"ATELIER_SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"ATELIER_SMTP_USER"`
	SMTPPassword string `env:"ATELIER_SMTP_PASSWORD"`
	SMTPFrom     string `env:"ATELIER_SMTP_FROM"`

	// Upload limits
	MaxUploadSizeMB int `env:"ATELIER_MAX_UPLOAD_SIZE_MB" envDefault:"50"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MailEnabled returns true if outgoing mail is configured.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// MaxUploadBytes returns the request body cap for upload endpoints.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) << 20
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
		return nil, fmt.Errorf("ATELIER_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("ATELIER_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("ATELIER_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.MaxUploadSizeMB <= 0 {
		return nil, fmt.Errorf("ATELIER_MAX_UPLOAD_SIZE_MB must be positive, got %d", cfg.MaxUploadSizeMB)
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
