package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears a variable for the test while keeping t.Setenv's restore
// semantics.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVUS_ADMIN_URL",
		"SERVUS_SECRET_KEY",
		"SERVUS_PLAINTEXT",
		"SERVUS_HTTP_TIMEOUT",
		"SERVUS_LOG_LEVEL",
	} {
		unsetenv(t, key)
	}

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://localhost", s.AdminURL)
	assert.Equal(t, 30*time.Second, s.HTTPTimeout)
	assert.False(t, s.Plaintext)
	assert.Equal(t, zerolog.InfoLevel, s.Level())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVUS_ADMIN_URL", "http://127.0.0.1:4884")
	t.Setenv("SERVUS_SECRET_KEY", "ab")
	t.Setenv("SERVUS_PLAINTEXT", "true")
	t.Setenv("SERVUS_HTTP_TIMEOUT", "5s")
	t.Setenv("SERVUS_LOG_LEVEL", "debug")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4884", s.AdminURL)
	assert.Equal(t, "ab", s.SecretKey)
	assert.True(t, s.Plaintext)
	assert.Equal(t, 5*time.Second, s.HTTPTimeout)
	assert.Equal(t, zerolog.DebugLevel, s.Level())
}

func TestLevelUnknownFallsBack(t *testing.T) {
	s := &Settings{LogLevel: "shouty"}
	assert.Equal(t, zerolog.InfoLevel, s.Level())
}
