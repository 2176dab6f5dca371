package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.ListenAddress)
	assert.Equal(t, "", cfg.BasePath)
	assert.Equal(t, "http://localhost:11434/api/generate", cfg.Ollama.URL)
	assert.Equal(t, "llama3", cfg.Ollama.DefaultModel)
	assert.Equal(t, 120*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "http://localhost:5678", cfg.N8N.URL)
	assert.Equal(t, "", cfg.N8N.APIKey)
	assert.Equal(t, 300*time.Second, cfg.N8N.WebhookTimeout)
	assert.Equal(t, 30*time.Second, cfg.N8N.APITimeout)
	assert.Equal(t, 300*time.Second, cfg.N8N.ExecuteTimeout)
	assert.Equal(t, "whisper", cfg.Tools.Whisper)
	assert.Equal(t, "base", cfg.Tools.WhisperModel)
	assert.Equal(t, 300*time.Second, cfg.Tools.TranscribeTimeout)
	assert.Zero(t, cfg.Tools.ExtractTimeout)
	assert.Zero(t, cfg.Tools.SpeechTimeout)
	assert.Equal(t, int64(32<<20), cfg.Uploads.MaxMemory)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://gpu-box:11434/api/generate")
	t.Setenv("N8N_URL", "https://n8n.example.com/")
	t.Setenv("N8N_API_KEY", "secret")
	t.Setenv("LISTEN_ADDRESS", "127.0.0.1:8080")
	t.Setenv("TOOLS_WHISPER_MODEL", "small")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:11434/api/generate", cfg.Ollama.URL)
	assert.Equal(t, "https://n8n.example.com", cfg.N8N.URL)
	assert.Equal(t, "secret", cfg.N8N.APIKey)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddress)
	assert.Equal(t, "small", cfg.Tools.WhisperModel)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeFile(t, "gateway.yaml", `
base_path: api/
ollama:
  default_model: mistral
  timeout: 45s
tools:
  festival: /opt/festival/bin/festival
  extract_timeout: 2m
uploads:
  max_memory: 1048576
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, "/api", cfg.BasePath)
	assert.Equal(t, "mistral", cfg.Ollama.DefaultModel)
	assert.Equal(t, 45*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "/opt/festival/bin/festival", cfg.Tools.Festival)
	assert.Equal(t, 2*time.Minute, cfg.Tools.ExtractTimeout)
	assert.Equal(t, int64(1<<20), cfg.Uploads.MaxMemory)
}

func TestLoad_EnvironmentBeatsConfigFile(t *testing.T) {
	t.Setenv("N8N_API_KEY", "from-env")
	path := writeFile(t, "gateway.yaml", "n8n:\n  api_key: from-file\n")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.N8N.APIKey)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// godotenv never overrides variables that are already set.
	t.Cleanup(func() { os.Unsetenv("OLLAMA_DEFAULT_MODEL") })
	path := writeFile(t, ".env", "OLLAMA_DEFAULT_MODEL=phi3\n")

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, "phi3", cfg.Ollama.DefaultModel)
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("", "")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"empty listen address", func(c *Config) { c.ListenAddress = "" }, "listen_address is required"},
		{"ollama scheme", func(c *Config) { c.Ollama.URL = "localhost:11434" }, "ollama.url must be an http(s) URL"},
		{"n8n scheme", func(c *Config) { c.N8N.URL = "ftp://n8n" }, "n8n.url must be an http(s) URL"},
		{"max memory", func(c *Config) { c.Uploads.MaxMemory = 0 }, "uploads.max_memory must be positive"},
		{"tool binary", func(c *Config) { c.Tools.Pandoc = "" }, "tool binaries must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	assert.NoError(t, valid().Validate())
}
