package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

const baseConfig = `
llm:
  default_provider: gemini
  providers:
    gemini:
      type: gemini
      api_key: ${QUZZ_TEST_GEMINI_KEY:unset}
      model: gemini-1.5-flash
gateway:
  role_timeout: 10s
`

func TestLoadFromAppliesDefaultsAndEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseConfig)
	t.Setenv("APP_ENV", "test")
	t.Setenv("QUZZ_TEST_GEMINI_KEY", "k-123")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "k-123", cfg.LLM.Providers["gemini"].APIKey)
	assert.Equal(t, ProviderTypeGemini, cfg.LLM.Providers["gemini"].Type)
	assert.Equal(t, 10*time.Second, cfg.Gateway.RoleTimeout)
	assert.Equal(t, 90*time.Second, cfg.Gateway.BlueprintTimeout)
	assert.Equal(t, "off", cfg.Gateway.RolePolicy.Mode)
	assert.Equal(t, "memory", cfg.Wizard.SessionStore)
	assert.Equal(t, 2*time.Hour, cfg.Wizard.SessionTTL)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
}

func TestLoadFromMergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseConfig)
	writeConfig(t, dir, "config.staging.yaml", `
gateway:
  role_policy:
    mode: truncate
    max_roles: 4
`)
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "truncate", cfg.Gateway.RolePolicy.Mode)
	assert.Equal(t, 4, cfg.Gateway.RolePolicy.MaxRoles)
	assert.Equal(t, "unset", cfg.LLM.Providers["gemini"].APIKey)
}

func TestLoadFromRejectsInvalidCombination(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseConfig+`
wizard:
  session_store: redis
`)
	t.Setenv("APP_ENV", "test")

	_, err := LoadFrom(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.redis.enabled")
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("QUZZ_X", "1")
	assert.Equal(t, "a=1 b=def c=${QUZZ_UNDEFINED_Y}", expandEnv("a=${QUZZ_X} b=${QUZZ_UNDEFINED_Z:def} c=${QUZZ_UNDEFINED_Y}"))
}
