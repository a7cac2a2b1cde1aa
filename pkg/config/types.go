package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string            `mapstructure:"environment"`
	Server       ServerConfig      `mapstructure:"server"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Processing   ProcessingConfig  `mapstructure:"processing"`
	Timeouts     TimeoutsConfig    `mapstructure:"timeouts"`
	Download     DownloadConfig    `mapstructure:"download"`
	Storage      StorageConfig     `mapstructure:"storage"`
	Whisper      WhisperConfig     `mapstructure:"whisper"`
	LLM          LLMConfig         `mapstructure:"llm"`
	ImageGen     ImageGenConfig    `mapstructure:"imagegen"`
	Scheduler    SchedulerConfig   `mapstructure:"scheduler"`
	Transcripts  TranscriptsConfig `mapstructure:"transcripts"`
	RateLimiting RateLimitConfig   `mapstructure:"rate_limiting"`
	Security     SecurityConfig    `mapstructure:"security"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path              string        `mapstructure:"path"`
	Verbose           bool          `mapstructure:"verbose"`
	MaxConnections    int           `mapstructure:"max_connections"`
	EnableWAL         bool          `mapstructure:"enable_wal"`
	EnableForeignKeys bool          `mapstructure:"enable_foreign_keys"`
	BusyTimeout       time.Duration `mapstructure:"busy_timeout"`
}

// ProcessingConfig contains job execution settings
type ProcessingConfig struct {
	Workers    int           `mapstructure:"workers"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	LockFile   string        `mapstructure:"lock_file"`
}

// TimeoutsConfig bounds every external call a job makes
type TimeoutsConfig struct {
	Feed          time.Duration `mapstructure:"feed"`
	Download      time.Duration `mapstructure:"download"`
	Transcription time.Duration `mapstructure:"transcription"`
	Generation    time.Duration `mapstructure:"generation"`
	Image         time.Duration `mapstructure:"image"`
}

// DownloadConfig contains audio download settings
type DownloadConfig struct {
	TempDir   string `mapstructure:"temp_dir"`
	MaxSize   int64  `mapstructure:"max_size"`
	UserAgent string `mapstructure:"user_agent"`
}

// StorageConfig contains temp file housekeeping settings
type StorageConfig struct {
	MaxTempAge      time.Duration `mapstructure:"max_temp_age"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// WhisperConfig selects and configures the transcription backend
type WhisperConfig struct {
	Mode     string `mapstructure:"mode"` // api or cli
	APIURL   string `mapstructure:"api_url"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	CLIPath  string `mapstructure:"cli_path"`
	CLIModel string `mapstructure:"cli_model"`
}

// LLMConfig contains text generation settings
type LLMConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	Model             string  `mapstructure:"model"`
	MaxTokens         int     `mapstructure:"max_tokens"`
	ChunkSize         int     `mapstructure:"chunk_size"`
	ChunkOverlap      int     `mapstructure:"chunk_overlap"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// ImageGenConfig contains digest artwork settings
type ImageGenConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	APIURL      string `mapstructure:"api_url"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	AspectRatio string `mapstructure:"aspect_ratio"`
}

// SchedulerConfig contains periodic feed refresh settings
type SchedulerConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Interval    time.Duration `mapstructure:"interval"`
	Concurrency int           `mapstructure:"concurrency"`
	RunOnStart  bool          `mapstructure:"run_on_start"`
}

// TranscriptsConfig controls use of transcripts published in feeds
type TranscriptsConfig struct {
	PreferPublished bool `mapstructure:"prefer_published"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	CORSOrigins []string `mapstructure:"cors_origins"`
}
