package digests

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	"github.com/killallgit/podcast-analyzer/internal/services/llm"
	"github.com/killallgit/podcast-analyzer/pkg/period"
)

// ErrNoEpisodes is returned when asked to synthesize nothing
var ErrNoEpisodes = errors.New("no analyzed episodes to synthesize")

var trendDirections = map[string]bool{
	"emerging":  true,
	"growing":   true,
	"declining": true,
	"stable":    true,
}

// Content is the cross-episode synthesis
type Content struct {
	Summary          string         `json:"summary"`
	CommonThemes     []string       `json:"common_themes"`
	Trends           []models.Trend `json:"trends"`
	Predictions      []string       `json:"predictions"`
	Recommendations  []string       `json:"recommendations"`
	KeyAdvice        []string       `json:"key_advice"`
	ActionItems      []string       `json:"action_items"`
	ImageDescription string         `json:"image_description"`
}

// Synthesizer turns a set of analyzed episodes into digest content with
// one text-generation call.
type Synthesizer struct {
	generator   llm.TextGenerator
	maxTokens   int
	callTimeout time.Duration
}

func NewSynthesizer(generator llm.TextGenerator, maxTokens int, callTimeout time.Duration) *Synthesizer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Synthesizer{generator: generator, maxTokens: maxTokens, callTimeout: callTimeout}
}

// Synthesize builds the digest content. Episodes are ordered by publish
// time, then id, before the prompt is built, so the same input always
// yields the same prompt.
func (s *Synthesizer) Synthesize(ctx context.Context, episodes []models.Episode, window period.Window) (*Content, error) {
	ordered := analyzedInOrder(episodes)
	if len(ordered) == 0 {
		return nil, ErrNoEpisodes
	}

	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	raw, err := s.generator.Generate(ctx, synthesisPrompt(ordered, window), s.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generating digest content: %w", err)
	}

	var content Content
	if err := llm.ParseJSONResponse(raw, &content); err != nil {
		log.Printf("[WARN] Digest synthesis response was not JSON, keeping raw text")
		return &Content{Summary: strings.TrimSpace(raw)}, nil
	}
	return normalize(&content), nil
}

// analyzedInOrder drops episodes without an analysis and sorts the rest
func analyzedInOrder(episodes []models.Episode) []models.Episode {
	out := make([]models.Episode, 0, len(episodes))
	for _, ep := range episodes {
		if ep.Analysis != nil {
			out = append(out, ep)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.Before(out[j].PublishedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func normalize(c *Content) *Content {
	c.Summary = strings.TrimSpace(c.Summary)
	c.CommonThemes = analysis.Dedupe(c.CommonThemes)
	c.Predictions = analysis.Dedupe(c.Predictions)
	c.Recommendations = analysis.Dedupe(c.Recommendations)
	c.KeyAdvice = analysis.Dedupe(c.KeyAdvice)
	c.ActionItems = analysis.Dedupe(c.ActionItems)
	c.ImageDescription = strings.TrimSpace(c.ImageDescription)

	trends := make([]models.Trend, 0, len(c.Trends))
	for _, t := range c.Trends {
		t.Trend = strings.TrimSpace(t.Trend)
		if t.Trend == "" {
			continue
		}
		t.Direction = strings.ToLower(strings.TrimSpace(t.Direction))
		if !trendDirections[t.Direction] {
			t.Direction = "stable"
		}
		trends = append(trends, t)
	}
	c.Trends = trends
	return c
}

func bullets(items []string) string {
	if len(items) == 0 {
		return "- none"
	}
	return "- " + strings.Join(items, "\n- ")
}

func formatEpisodes(episodes []models.Episode) string {
	blocks := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		podcast := "Unknown"
		if ep.Podcast != nil && ep.Podcast.Title != "" {
			podcast = ep.Podcast.Title
		}
		a := ep.Analysis
		blocks = append(blocks, fmt.Sprintf(`
EPISODE: %s
PODCAST: %s
DATE: %s

Overview: %s

Key Points:
%s

Themes: %s

Predictions:
%s

Recommendations:
%s

Advice:
%s
`, ep.Title, podcast, ep.PublishedAt.UTC().Format(time.RFC3339), a.Overview,
			bullets(a.KeyPoints), strings.Join(a.Themes, ", "),
			bullets(a.Predictions), bullets(a.Recommendations), bullets(a.Advice)))
	}
	return strings.Join(blocks, "\n---\n")
}

func synthesisPrompt(episodes []models.Episode, window period.Window) string {
	return fmt.Sprintf(`You are an expert analyst synthesizing insights from multiple podcast episodes.

Analyze the following podcast episode summaries from %s to %s.

Your task is to identify patterns, trends, and synthesize actionable intelligence across all episodes.

Return a JSON object with:
{
    "summary": "A comprehensive 2-3 paragraph executive summary of the key insights from this period",
    "common_themes": ["Theme that appears across multiple episodes", ...],
    "trends": [
        {
            "trend": "Description of the trend",
            "evidence": "Evidence from the episodes",
            "direction": "emerging|growing|declining|stable"
        }
    ],
    "predictions": ["Synthesized predictions about what will happen based on the content", ...],
    "recommendations": ["What listeners should DO based on all this information", ...],
    "key_advice": ["The most important pieces of advice from across episodes", ...],
    "action_items": ["Specific actionable steps to take", ...],
    "image_description": "A single evocative visual scene (10-20 words) that metaphorically represents the podcast themes - describe a specific landscape, architecture, or natural scene, not abstract concepts"
}

Guidelines:
- Identify themes that appear in 2+ episodes
- Look for contradictions or debates between different sources
- Synthesize predictions - what do multiple sources agree on?
- Prioritize actionable recommendations
- The action_items should be specific and practical
- Group similar advice together
- Note any consensus or disagreement among sources

EPISODE ANALYSES:
%s

Respond ONLY with the JSON object.`,
		window.Start.Format("January 02, 2006"), window.End.Format("January 02, 2006"), formatEpisodes(episodes))
}
