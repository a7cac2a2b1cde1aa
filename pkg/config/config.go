package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// MaxDownloadSize is the largest audio file the transcription backend accepts
const MaxDownloadSize int64 = 25 * 1024 * 1024

const (
	envPrefix    = "PODCAST_ANALYZER"
	settingsFile = "./config/settings.yaml"
)

var (
	once    sync.Once
	initErr error
)

// Init loads defaults, .env, config/settings.yaml and PODCAST_ANALYZER_*
// environment variables, in increasing order of precedence. Only the first
// call does any work.
func Init() error {
	once.Do(func() { initErr = load() })
	return initErr
}

func load() error {
	setDefaults()

	// .env only seeds the process environment; real env vars win
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env: %w", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigFile(settingsFile)
	if err := viper.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error reading config file %s: %w", settingsFile, err)
	}

	cfg, err := GetConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg.checkCredentials()
}

// GetConfig returns the current configuration. Init must be called first.
func GetConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings every command depends on and fills in
// worker counts left at zero
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Scheduler.Enabled && c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.Download.MaxSize > MaxDownloadSize {
		return fmt.Errorf("download.max_size %d exceeds the transcription limit of %d bytes", c.Download.MaxSize, MaxDownloadSize)
	}
	switch c.Whisper.Mode {
	case "", "api", "cli":
	default:
		return fmt.Errorf("invalid whisper mode %q: expected api or cli", c.Whisper.Mode)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 2
	}
	if c.Scheduler.Concurrency <= 0 {
		c.Scheduler.Concurrency = 4
	}
	return nil
}

// IsProduction reports whether placeholder credentials are fatal
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

var placeholders = []string{"", "YOUR_KEY_HERE", "YOUR_API_KEY", "changeme", "CHANGEME"}

// checkCredentials rejects placeholder API keys in production and warns
// about them elsewhere. Only backends that are switched on are checked.
func (c *Config) checkCredentials() error {
	type credential struct{ key, name, value string }
	creds := []credential{{"llm.api_key", "LLM", c.LLM.APIKey}}
	if c.Whisper.Mode != "cli" {
		creds = append(creds, credential{"whisper.api_key", "Whisper", c.Whisper.APIKey})
	}
	if c.ImageGen.Enabled {
		creds = append(creds, credential{"imagegen.api_key", "image generation", c.ImageGen.APIKey})
	}

	for _, cred := range creds {
		if !slices.Contains(placeholders, cred.value) {
			continue
		}
		if c.IsProduction() {
			return fmt.Errorf("invalid %s API key: cannot use placeholder values in production", cred.name)
		}
		log.Printf("[WARN] %s API key (%s) is not configured", cred.name, cred.key)
	}
	return nil
}
