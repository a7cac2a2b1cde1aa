package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyTranscript is returned when a published transcript has no text
	ErrEmptyTranscript = errors.New("published transcript is empty")
	// ErrTooLarge is returned when a transcript exceeds FetchOptions.MaxSize
	ErrTooLarge = errors.New("published transcript too large")
)

const acceptTranscripts = "text/vtt,application/x-subrip,application/json,text/plain,*/*"

type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
	MaxSize   int64 // bytes
}

func DefaultFetchOptions() FetchOptions {
	return FetchOptions{
		Timeout:   30 * time.Second,
		UserAgent: "PodcastAnalyzer/1.0",
		MaxSize:   10 << 20,
	}
}

// Fetcher downloads transcripts that feeds publish alongside episodes
// (podcast:transcript) and flattens them to plain text
type Fetcher struct {
	client *http.Client
	opts   FetchOptions
}

func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultFetchOptions().MaxSize
	}
	return &Fetcher{client: &http.Client{Timeout: opts.Timeout}, opts: opts}
}

// FetchText downloads the transcript at url and returns it as plain text.
// mimeType is the type declared by the feed and may be empty, in which case
// the response Content-Type and the body itself decide the format.
func (f *Fetcher) FetchText(ctx context.Context, url, mimeType string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("empty transcript URL")
	}

	body, contentType, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	if mimeType == "" {
		mimeType = contentType
	}

	text, err := ToPlainText(body, DetectFormat(url, mimeType, body))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

func (f *Fetcher) get(ctx context.Context, url string) (body, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", acceptTranscripts)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to fetch transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("transcript server returned status %d", resp.StatusCode)
	}
	if resp.ContentLength > f.opts.MaxSize {
		return "", "", fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, resp.ContentLength, f.opts.MaxSize)
	}

	// one byte past the limit tells a truncated read from an exact fit
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxSize+1))
	if err != nil {
		return "", "", fmt.Errorf("failed to read transcript: %w", err)
	}
	if int64(len(data)) > f.opts.MaxSize {
		return "", "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.opts.MaxSize)
	}
	return string(data), resp.Header.Get("Content-Type"), nil
}
