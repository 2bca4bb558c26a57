package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvLogLevel, EnvEnv, EnvDataDir} {
		t.Setenv(k, "")
	}
}

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, "vector", cfg.RAG.RetrievalMode)
	assert.Equal(t, "fixed", cfg.RAG.ChunkMode)
	assert.Equal(t, filepath.Join("data", "preferences.db"), cfg.PreferencesPath())
	assert.False(t, cfg.UI.DiscardStale)
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	p := write(t, "config.yaml", `
backend:
  base_url: http://sandbox.local:9000/
rag:
  top_k: 8
  retrieval_mode: Intel
chat:
  render_markdown: false
ui:
  discard_stale: true
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "http://sandbox.local:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, "intel", cfg.RAG.RetrievalMode)
	assert.False(t, cfg.Chat.RenderMarkdown)
	assert.True(t, cfg.UI.DiscardStale)
	assert.Equal(t, 120, cfg.Backend.TimeoutSecs)
}

func TestNormalize_Invalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"top_k": "rag:\n  top_k: 50\n",
		"mode":  "rag:\n  retrieval_mode: fuzzy\n",
		"chunk": "rag:\n  chunk_mode: sentence\n",
		"level": "logging:\n  level: verbose\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(write(t, "c.yaml", body))
			require.NoError(t, err)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	clearEnv(t)
	_, err := Load(write(t, "c.yaml", "rag: ["))
	assert.Error(t, err)
}

func TestLoad_BadEnvLeftForCallerToOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "loud")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "loud", cfg.Logging.Level)
	assert.Error(t, Normalize(cfg))

	cfg.Logging.Level = "warn"
	require.NoError(t, Normalize(cfg))
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://env-host:1234")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvDiscardStale, "yes")

	cfg, err := Load(write(t, "c.yaml", "backend:\n  base_url: http://file-host\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://env-host:1234", cfg.Backend.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.UI.DiscardStale)
}

func TestApplyOverrides_TOMLAndJSON(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)

	tomlPath := write(t, "o.toml", "[rag]\ntop_k = 12\n[logging]\nlevel = \"warn\"\n")
	jsonPath := write(t, "o.json", `{"rag":{"chunk_mode":"paragraph"},"data":{"dir":"/tmp/sandbox"}}`)
	missing := filepath.Join(t.TempDir(), "missing.toml")

	cfg, err = ApplyOverrides(cfg, tomlPath, missing, jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.RAG.TopK)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "paragraph", cfg.RAG.ChunkMode)
	assert.Equal(t, "/tmp/sandbox", cfg.Data.Dir)
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.RAG.TopK = 9
	require.NoError(t, Save(p, cfg))

	back, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9, back.RAG.TopK)
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on", " On "} {
		assert.True(t, ParseBool(v), v)
	}
	for _, v := range []string{"0", "false", "no", "", "maybe"} {
		assert.False(t, ParseBool(v), v)
	}
}

func TestNormalize(t *testing.T) {
	cfg := defaultConfig()
	cfg.Backend.BaseURL = "http://flag-host/ "
	cfg.Logging.Level = "WARN"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, "http://flag-host", cfg.Backend.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)

	cfg.RAG.TopK = 0
	cfg.RAG.RetrievalMode = "semantic"
	assert.Error(t, Normalize(cfg))
}
