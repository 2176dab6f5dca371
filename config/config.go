package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// The global, read-only config variable.
var (
	cfg  *Config
	once sync.Once
)

// LoadConfig loads the configuration once for the life of the process.
// Later calls return the first result.
func LoadConfig(configFile, envFile string) (*Config, error) {
	var err error
	once.Do(func() {
		cfg, err = Load(configFile, envFile)
	})

	if err != nil {
		return nil, err
	}

	if cfg == nil {
		return nil, errors.New("configuration was not set")
	}

	return cfg, nil
}

// Load reads configuration from the environment, an optional dotenv file and
// an optional YAML config file. Environment variables win over the file.
func Load(configFile, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The variable names the deployment scripts already use.
	_ = v.BindEnv("ollama.url", "OLLAMA_URL")
	_ = v.BindEnv("n8n.url", "N8N_URL")
	_ = v.BindEnv("n8n.api_key", "N8N_API_KEY")
	_ = v.BindEnv("listen_address", "LISTEN_ADDRESS")

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	configuration.normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_address", "0.0.0.0:5000")
	v.SetDefault("base_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("ollama.url", "http://localhost:11434/api/generate")
	v.SetDefault("ollama.default_model", "llama3")
	v.SetDefault("ollama.timeout", 120*time.Second)

	v.SetDefault("n8n.url", "http://localhost:5678")
	v.SetDefault("n8n.api_key", "")
	v.SetDefault("n8n.webhook_timeout", 300*time.Second)
	v.SetDefault("n8n.api_timeout", 30*time.Second)
	v.SetDefault("n8n.execute_timeout", 300*time.Second)

	v.SetDefault("tools.whisper", "whisper")
	v.SetDefault("tools.whisper_model", "base")
	v.SetDefault("tools.pdftotext", "pdftotext")
	v.SetDefault("tools.pandoc", "pandoc")
	v.SetDefault("tools.festival", "festival")
	v.SetDefault("tools.echo", "echo")
	v.SetDefault("tools.transcribe_timeout", 300*time.Second)
	// PDF/DOCX extraction and speech synthesis have never had a limit.
	v.SetDefault("tools.extract_timeout", time.Duration(0))
	v.SetDefault("tools.speech_timeout", time.Duration(0))

	v.SetDefault("uploads.max_memory", int64(32<<20))
	v.SetDefault("uploads.temp_dir", "")
}

func (c *Config) normalize() {
	c.N8N.URL = strings.TrimRight(c.N8N.URL, "/")
	c.BasePath = strings.TrimRight(c.BasePath, "/")
	if c.BasePath != "" && !strings.HasPrefix(c.BasePath, "/") {
		c.BasePath = "/" + c.BasePath
	}
}

// Validate checks the values that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.ListenAddress == "" {
		return errors.New("listen_address is required")
	}
	if err := validateURL("ollama.url", c.Ollama.URL); err != nil {
		return err
	}
	if err := validateURL("n8n.url", c.N8N.URL); err != nil {
		return err
	}
	if c.Uploads.MaxMemory <= 0 {
		return fmt.Errorf("uploads.max_memory must be positive, got %d", c.Uploads.MaxMemory)
	}
	if c.Tools.Whisper == "" || c.Tools.PDFToText == "" || c.Tools.Pandoc == "" ||
		c.Tools.Festival == "" || c.Tools.Echo == "" {
		return errors.New("tool binaries must not be empty")
	}
	return nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	return nil
}
