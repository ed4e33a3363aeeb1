// Package config loads the SERVUS_* environment surface.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Settings holds everything the SDK and CLI read from the environment.
type Settings struct {
	// AdminURL is the base URL of the admin API (sites endpoint).
	AdminURL string `envconfig:"ADMIN_URL" default:"https://localhost"`
	// SecretKey is a 32-byte hex key for the built-in dev signer. Leave
	// empty when a host capability is injected instead.
	SecretKey string `envconfig:"SECRET_KEY"`
	// Plaintext switches site transports to ws:// and http:// for local
	// development.
	Plaintext bool `envconfig:"PLAINTEXT"`
	// HTTPTimeout bounds each admin or blob HTTP request.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads settings from SERVUS_*-prefixed environment variables.
func Load() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("servus", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Level parses the configured log level, defaulting to info on unknown
// values.
func (s *Settings) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
