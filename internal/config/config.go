// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"localgame/internal/mail"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     int    `env:"APP_PORT" envDefault:"8000"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DataDir  string `env:"DATA_DIR" envDefault:"./data"`

	// AdminEmail is granted the admin role on sign-in.
	AdminEmail string `env:"ADMIN_EMAIL"`

	// Outgoing mail
	SMTPHost     string `env:"SMTP_HOST" envDefault:"smtp.qq.com"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	SMTPUseSSL   bool   `env:"SMTP_USE_SSL" envDefault:"true"`
	MailFromName string `env:"MAIL_FROM_NAME" envDefault:"LocalGame"`

	// Valkey (Redis-compatible) for sessions and rate-limit counters
	ValkeyEnabled  bool   `env:"VALKEY_ENABLED" envDefault:"false"`
	ValkeyHost     string `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Background radio stream shown by the frontend
	StreamURL  string `env:"STREAM_URL" envDefault:"https://n10as.radiocult.fm/stream"`
	StreamName string `env:"STREAM_NAME" envDefault:"RadioCult.fm"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	if cfg.Env == "production" {
		var errs []error
		if cfg.AdminEmail == "" {
			errs = append(errs, errors.New("ADMIN_EMAIL must be set in production"))
		}
		if cfg.SMTPPassword == "" {
			errs = append(errs, errors.New("SMTP_PASSWORD must be set in production"))
		}
		if err := errors.Join(errs...); err != nil {
			return nil, err
		}
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SMTP returns the mail sender settings.
func (c *Config) SMTP() mail.SMTPConfig {
	return mail.SMTPConfig{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		User:     c.SMTPUser,
		Password: c.SMTPPassword,
		UseSSL:   c.SMTPUseSSL,
		FromName: c.MailFromName,
	}
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
