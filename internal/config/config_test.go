package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnvOverridesPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CYCLES", "500")

	cfg := Default()
	cfg.LoadFromEnv()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 500, cfg.Detection.MaxCycles)
}

func TestValidateRejectsAuthWithoutSecret(t *testing.T) {
	cfg := Default()
	cfg.Security.EnableAuth = true
	cfg.Security.JWTSecret = ""
	assert.Error(t, cfg.Validate())
}

func TestAllowedOriginsSplitsOnComma(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cfg := Default()
	cfg.LoadFromEnv()
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
