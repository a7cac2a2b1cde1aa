// Package imagegen requests digest artwork from an image-generation model
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generator returns an image URL for a prompt. The URL may be a data URI
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var (
	ErrNotConfigured = errors.New("image generation API key not configured")
	ErrNoImage       = errors.New("image generation returned no image")
)

// Config configures the Imagen predict endpoint
type Config struct {
	APIURL      string
	APIKey      string
	Model       string
	AspectRatio string
	Timeout     time.Duration
}

// Client calls the Imagen :predict API
type Client struct {
	cfg  Config
	http *http.Client
}

var _ Generator = (*Client)(nil)

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "imagen-4.0-generate-001"
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = "16:9"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParameters `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParameters struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
	GeneratedImages []struct {
		Image struct {
			ImageBytes string `json:"imageBytes"`
		} `json:"image"`
	} `json:"generatedImages"`
}

// Generate requests a single image and returns it as a data URI
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	data, err := json.Marshal(predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParameters{SampleCount: 1, AspectRatio: c.cfg.AspectRatio},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:predict", strings.TrimRight(c.cfg.APIURL, "/"), c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("image generation API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	for _, p := range result.Predictions {
		if p.BytesBase64Encoded != "" {
			mime := p.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return "data:" + mime + ";base64," + p.BytesBase64Encoded, nil
		}
	}
	for _, img := range result.GeneratedImages {
		if img.Image.ImageBytes != "" {
			return "data:image/png;base64," + img.Image.ImageBytes, nil
		}
	}
	return "", ErrNoImage
}
