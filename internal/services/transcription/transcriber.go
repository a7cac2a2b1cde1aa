package transcription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/podcast-analyzer/pkg/config"
)

// Transcriber turns an audio file on disk into plain transcript text
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ErrEmptyTranscript is returned when the service produced no text
var ErrEmptyTranscript = errors.New("transcription produced no text")

const (
	ModeAPI = "api"
	ModeCLI = "cli"
)

// New builds the transcriber selected by whisper.mode
func New(cfg config.WhisperConfig, timeout time.Duration) (Transcriber, error) {
	switch cfg.Mode {
	case "", ModeAPI:
		return NewWhisperAPI(WhisperAPIConfig{
			URL:      cfg.APIURL,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Language: cfg.Language,
			Timeout:  timeout,
		}), nil
	case ModeCLI:
		return NewWhisperCLI(cfg.CLIPath, cfg.CLIModel, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unknown whisper mode %q", cfg.Mode)
	}
}
