package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VISION_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ink2deck", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.False(t, cfg.VisionEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
port = 9090

[database]
dsn = "user:pass@tcp(db:3306)/ink2deck"

[ocr]
languages = ["eng", "deu"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("SESSION_BACKEND", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTPAddr())
	assert.Equal(t, "user:pass@tcp(db:3306)/ink2deck", cfg.Database.DSN)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Languages)
	assert.Equal(t, "redis", cfg.Session.Backend)
	assert.True(t, cfg.VisionEnabled())
	assert.Equal(t, "key-123", cfg.Vision.APIKey)
}

func TestLoad_BlankGeminiKeyKeepsVisionKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("VISION_API_KEY", "vision-key")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "vision-key", cfg.Vision.APIKey)
	assert.True(t, cfg.VisionEnabled())
}

func TestLoad_BlankKeysKeepFileKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vision]\napi_key = \"from-file\"\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("VISION_API_KEY", "  ")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Vision.APIKey)
}

func TestLoad_GeminiKeyWinsOverVisionKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("VISION_API_KEY", "vision-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.Vision.APIKey)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[app\nport = "), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	require.Error(t, err)
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("INK2DECK_TEST_INT", "not-a-number")
	assert.Equal(t, 7, getEnvAsInt("INK2DECK_TEST_INT", 7))

	t.Setenv("INK2DECK_TEST_INT", "42")
	assert.Equal(t, 42, getEnvAsInt("INK2DECK_TEST_INT", 7))
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("INK2DECK_TEST_LIST", " eng , fra ,,")
	assert.Equal(t, []string{"eng", "fra"}, getEnvAsList("INK2DECK_TEST_LIST", nil))

	t.Setenv("INK2DECK_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, getEnvAsList("INK2DECK_TEST_LIST", []string{"x"}))
}
