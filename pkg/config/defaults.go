package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

var defaults = map[string]any{
	"environment": "development",

	"server.host":             "0.0.0.0",
	"server.port":             8080,
	"server.read_timeout":     30 * time.Second,
	"server.write_timeout":    30 * time.Second,
	"server.shutdown_timeout": 10 * time.Second,
	"server.max_header_bytes": 1 << 20,

	"database.path":                "./data/podcast_analyzer.db",
	"database.verbose":             false,
	"database.max_connections":     10,
	"database.enable_wal":          true,
	"database.enable_foreign_keys": true,
	"database.busy_timeout":        5 * time.Second,

	"processing.workers":     2,
	"processing.stale_after": 30 * time.Minute,
	"processing.lock_file":   "./data/podcast_analyzer.lock",

	"timeouts.feed":          30 * time.Second,
	"timeouts.download":      5 * time.Minute,
	"timeouts.transcription": 15 * time.Minute,
	"timeouts.generation":    3 * time.Minute,
	"timeouts.image":         2 * time.Minute,

	"download.max_size":   MaxDownloadSize,
	"download.user_agent": "PodcastAnalyzer/1.0",

	"storage.max_temp_age":     24 * time.Hour,
	"storage.cleanup_interval": time.Hour,

	"whisper.mode":      "api",
	"whisper.api_key":   "",
	"whisper.api_url":   "https://api.openai.com/v1/audio/transcriptions",
	"whisper.model":     "whisper-1",
	"whisper.language":  "",
	"whisper.cli_path":  "whisper-cli",
	"whisper.cli_model": "./models/ggml-base.en.bin",

	"llm.base_url":            "https://api.openai.com/v1",
	"llm.api_key":             "",
	"llm.model":               "gpt-4o-mini",
	"llm.max_tokens":          4096,
	"llm.chunk_size":          80000,
	"llm.chunk_overlap":       0,
	"llm.requests_per_second": 2.0,

	"imagegen.enabled":      true,
	"imagegen.api_key":      "",
	"imagegen.api_url":      "https://generativelanguage.googleapis.com/v1beta",
	"imagegen.model":        "imagen-4.0-generate-001",
	"imagegen.aspect_ratio": "16:9",

	"scheduler.enabled":      true,
	"scheduler.interval":     4 * time.Hour,
	"scheduler.concurrency":  4,
	"scheduler.run_on_start": false,

	"transcripts.prefer_published": true,

	"rate_limiting.enabled": true,
	"rate_limiting.rps":     10.0,
	"rate_limiting.burst":   20,

	"security.cors_origins": []string{"*"},
}

func setDefaults() {
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("download.temp_dir", os.TempDir())
}
