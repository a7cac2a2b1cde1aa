package transcription

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WhisperAPIConfig configures the hosted Whisper endpoint
type WhisperAPIConfig struct {
	URL      string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

// WhisperAPI transcribes through an OpenAI-compatible
// /audio/transcriptions endpoint
type WhisperAPI struct {
	cfg  WhisperAPIConfig
	http *http.Client
}

var _ Transcriber = (*WhisperAPI)(nil)

func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	if cfg.URL == "" {
		cfg.URL = "https://api.openai.com/v1/audio/transcriptions"
	}
	if cfg.Model == "" {
		cfg.Model = "whisper-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Minute
	}
	return &WhisperAPI{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// Transcribe uploads the file and returns the text response
func (w *WhisperAPI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if w.cfg.APIKey == "" {
		return "", fmt.Errorf("whisper api: API key not configured")
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("whisper api: open audio: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", w.cfg.Model); err != nil {
		return "", fmt.Errorf("whisper api: write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("whisper api: write format field: %w", err)
	}
	if w.cfg.Language != "" {
		if err := writer.WriteField("language", w.cfg.Language); err != nil {
			return "", fmt.Errorf("whisper api: write language field: %w", err)
		}
	}

	field, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("whisper api: create file field: %w", err)
	}
	if _, err := io.Copy(field, file); err != nil {
		return "", fmt.Errorf("whisper api: copy audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("whisper api: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, body)
	if err != nil {
		return "", fmt.Errorf("whisper api: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+w.cfg.APIKey)

	started := time.Now()
	resp, err := w.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whisper api: http request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("whisper api: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return "", ErrEmptyTranscript
	}

	log.Printf("[DEBUG] Whisper API transcribed %s (%d chars) in %v", filepath.Base(audioPath), len(text), time.Since(started).Round(time.Second))
	return text, nil
}
