package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// MaxAudioSize is the ceiling the transcription service accepts
const MaxAudioSize int64 = 25 * 1024 * 1024

// ErrSizeExceeded marks media larger than the configured ceiling. It is
// a permanent failure; retrying the same URL cannot succeed.
var ErrSizeExceeded = errors.New("media exceeds size limit")

// ErrUnsupportedMedia marks a response that is not audio
var ErrUnsupportedMedia = errors.New("unsupported media type")

// SizeError reports how large the rejected media was
type SizeError struct {
	Size  int64 // bytes seen, or the declared Content-Length
	Limit int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("audio file is %s, exceeds the %s limit",
		humanize.IBytes(uint64(e.Size)), humanize.IBytes(uint64(e.Limit)))
}

func (e *SizeError) Unwrap() error {
	return ErrSizeExceeded
}

// DownloadOptions configures the download behavior
type DownloadOptions struct {
	TempDir       string        // Directory for temporary files
	MaxSize       int64         // Maximum file size in bytes
	Timeout       time.Duration // Download timeout
	UserAgent     string        // User agent string
	ValidateAudio bool          // Validate content-type is audio
}

// DefaultOptions returns default download options
func DefaultOptions() DownloadOptions {
	return DownloadOptions{
		TempDir:       os.TempDir(),
		MaxSize:       MaxAudioSize,
		Timeout:       5 * time.Minute,
		UserAgent:     "PodcastAnalyzer/1.0",
		ValidateAudio: true,
	}
}

// Result describes a completed download
type Result struct {
	FilePath    string // Path to downloaded file
	ContentType string // Content-Type from response
	Size        int64  // Size in bytes
}

// Cleanup removes the downloaded file
func (r *Result) Cleanup() {
	if r == nil || r.FilePath == "" {
		return
	}
	if err := os.Remove(r.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove temp file %s: %v", r.FilePath, err)
	}
}

// Downloader retrieves episode audio into temporary storage
type Downloader struct {
	client  *http.Client
	options DownloadOptions
}

// NewDownloader creates a new downloader with the given options. A zero
// or larger-than-allowed MaxSize is clamped to MaxAudioSize.
func NewDownloader(options DownloadOptions) *Downloader {
	if options.MaxSize <= 0 || options.MaxSize > MaxAudioSize {
		options.MaxSize = MaxAudioSize
	}
	if options.TempDir == "" {
		options.TempDir = os.TempDir()
	}
	return &Downloader{
		client: &http.Client{
			Timeout: options.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		options: options,
	}
}

// Limit returns the enforced size ceiling
func (d *Downloader) Limit() int64 {
	return d.options.MaxSize
}

// Fetch downloads url to a temp file. Media over the ceiling fails with a
// *SizeError, whether the server declares its length or not.
func (d *Downloader) Fetch(ctx context.Context, url string, episodeID uint) (*Result, error) {
	log.Printf("[DEBUG] Starting download from %s for episode %d", url, episodeID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.options.UserAgent)
	req.Header.Set("Accept", "audio/*,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if d.options.ValidateAudio && !isAudioContentType(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, contentType)
	}

	if resp.ContentLength > d.options.MaxSize {
		return nil, &SizeError{Size: resp.ContentLength, Limit: d.options.MaxSize}
	}

	tempFile, err := os.CreateTemp(d.options.TempDir, fmt.Sprintf("episode_%d_*%s", episodeID, audioExtension(url)))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Read one byte past the limit so undeclared oversize bodies are caught.
	written, copyErr := io.Copy(tempFile, io.LimitReader(resp.Body, d.options.MaxSize+1))
	closeErr := tempFile.Close()

	switch {
	case copyErr != nil:
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to download: %w", copyErr)
	case closeErr != nil:
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to write temp file: %w", closeErr)
	case written > d.options.MaxSize:
		os.Remove(tempPath)
		return nil, &SizeError{Size: written, Limit: d.options.MaxSize}
	}

	log.Printf("[DEBUG] Downloaded %s to %s", humanize.IBytes(uint64(written)), tempPath)

	return &Result{
		FilePath:    tempPath,
		ContentType: contentType,
		Size:        written,
	}, nil
}

// audioExtension keeps a recognised audio extension from the URL path so
// the transcription service can sniff the container.
func audioExtension(url string) string {
	p := url
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".mp3", ".m4a", ".aac", ".ogg", ".wav", ".flac", ".opus", ".webm", ".mp4":
		return ext
	}
	return ".mp3"
}

// isAudioContentType checks if content type is audio
func isAudioContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return contentType == "" ||
		strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "video/mp4") ||
		strings.HasPrefix(contentType, "application/octet-stream")
}
