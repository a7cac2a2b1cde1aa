package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/llm"
	"github.com/killallgit/podcast-analyzer/pkg/transcript"
)

const (
	maxKeyPoints     = 10
	maxNotableQuotes = 4
	fallbackOverview = 500
)

// extraction is the JSON shape requested from the model for a transcript
// or a transcript section
type extraction struct {
	Overview        string   `json:"overview"`
	KeyPoints       []string `json:"key_points"`
	Topics          []string `json:"topics"`
	Themes          []string `json:"themes"`
	Predictions     []string `json:"predictions"`
	Recommendations []string `json:"recommendations"`
	Advice          []string `json:"advice"`
	NotableQuotes   []string `json:"notable_quotes"`
	Summary         string   `json:"summary"`
	SectionSummary  string   `json:"section_summary,omitempty"`
}

// Extractor turns a transcript into a structured analysis, chunking it when
// it exceeds the chunker's limit.
type Extractor struct {
	generator   llm.TextGenerator
	chunker     *transcript.Chunker
	maxTokens   int
	callTimeout time.Duration
}

// ExtractorOptions tunes generation calls. CallTimeout bounds each call
// separately; zero means no per-call deadline.
type ExtractorOptions struct {
	MaxTokens   int
	CallTimeout time.Duration
}

func NewExtractor(generator llm.TextGenerator, chunker *transcript.Chunker, opts ExtractorOptions) *Extractor {
	if chunker == nil {
		chunker = transcript.NewChunker(transcript.DefaultChunkOptions())
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &Extractor{
		generator:   generator,
		chunker:     chunker,
		maxTokens:   opts.MaxTokens,
		callTimeout: opts.CallTimeout,
	}
}

func (e *Extractor) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if e.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.callTimeout)
		defer cancel()
	}
	return e.generator.Generate(ctx, prompt, maxTokens)
}

// GenerationCalls reports how many generation calls Extract makes for text
func (e *Extractor) GenerationCalls(text string) int {
	if n := len(e.chunker.Split(text)); n > 1 {
		return n + 1
	}
	return 1
}

// Extract runs one generation call per chunk, plus one synthesis call when
// there is more than one chunk.
func (e *Extractor) Extract(ctx context.Context, text string) (*models.EpisodeAnalysis, error) {
	chunks := e.chunker.Split(text)
	if len(chunks) == 1 {
		raw, err := e.generate(ctx, singlePrompt(chunks[0].Text), e.maxTokens)
		if err != nil {
			return nil, fmt.Errorf("generating analysis: %w", err)
		}
		return toModel(parseExtraction(raw)), nil
	}

	log.Printf("[DEBUG] Transcript of %d chars split into %d chunks", len(text), len(chunks))

	sections := make([]extraction, 0, len(chunks))
	for _, chunk := range chunks {
		raw, err := e.generate(ctx, sectionPrompt(chunk.Index+1, len(chunks), chunk.Text), e.maxTokens/2)
		if err != nil {
			return nil, fmt.Errorf("generating analysis for part %d of %d: %w", chunk.Index+1, len(chunks), err)
		}
		sections = append(sections, parseExtraction(raw))
	}

	merged := mergeSections(sections)

	raw, err := e.generate(ctx, synthesisPrompt(sections), e.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("synthesizing overview: %w", err)
	}
	var synth extraction
	if err := llm.ParseJSONResponse(raw, &synth); err != nil || strings.TrimSpace(synth.Overview) == "" {
		synth.Overview = truncate(strings.Join(sectionOverviews(sections), " "), fallbackOverview)
		synth.Summary = raw
	}
	merged.Overview = synth.Overview
	merged.Summary = synth.Summary

	return toModel(merged), nil
}

// parseExtraction decodes a model reply. An unparseable reply becomes an
// overview built from the raw text.
func parseExtraction(raw string) extraction {
	var out extraction
	if err := llm.ParseJSONResponse(raw, &out); err != nil {
		log.Printf("[WARN] Analysis response was not JSON, keeping raw text")
		return extraction{Overview: truncate(raw, fallbackOverview), Summary: raw}
	}
	if out.Overview == "" {
		out.Overview = out.SectionSummary
	}
	return out
}

func sectionOverviews(sections []extraction) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		if o := strings.TrimSpace(s.Overview); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// mergeSections concatenates list fields in chunk order, dropping
// case-insensitive duplicates
func mergeSections(sections []extraction) extraction {
	pick := func(get func(extraction) []string) []string {
		var lists [][]string
		for _, s := range sections {
			lists = append(lists, get(s))
		}
		return Dedupe(lists...)
	}
	return extraction{
		KeyPoints:       pick(func(s extraction) []string { return s.KeyPoints }),
		Topics:          pick(func(s extraction) []string { return s.Topics }),
		Themes:          pick(func(s extraction) []string { return s.Themes }),
		Predictions:     pick(func(s extraction) []string { return s.Predictions }),
		Recommendations: pick(func(s extraction) []string { return s.Recommendations }),
		Advice:          pick(func(s extraction) []string { return s.Advice }),
		NotableQuotes:   pick(func(s extraction) []string { return s.NotableQuotes }),
	}
}

// Dedupe concatenates lists, trimming items and dropping empty ones and
// case-insensitive repeats. The first spelling wins.
func Dedupe(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, item := range list {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			key := strings.ToLower(item)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

func capList(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func toModel(x extraction) *models.EpisodeAnalysis {
	return &models.EpisodeAnalysis{
		Overview:        strings.TrimSpace(x.Overview),
		KeyPoints:       capList(Dedupe(x.KeyPoints), maxKeyPoints),
		Topics:          Dedupe(x.Topics),
		Themes:          Dedupe(x.Themes),
		Predictions:     Dedupe(x.Predictions),
		Recommendations: Dedupe(x.Recommendations),
		Advice:          Dedupe(x.Advice),
		NotableQuotes:   capList(Dedupe(x.NotableQuotes), maxNotableQuotes),
		Summary:         strings.TrimSpace(x.Summary),
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func singlePrompt(text string) string {
	return `You are an expert podcast analyst. Analyze the following podcast transcript and provide a comprehensive structured analysis.

Return your analysis as a JSON object with the following structure (ensure valid JSON):
{
    "overview": "A brief 2-3 sentence summary of the episode",
    "key_points": ["Main point 1", "Main point 2", ...],
    "topics": ["Topic 1", "Topic 2", ...],
    "themes": ["Key theme 1", "Key theme 2", ...],
    "predictions": ["Any predictions about the future mentioned", ...],
    "recommendations": ["Actionable recommendations for listeners", ...],
    "advice": ["Key pieces of advice given", ...],
    "notable_quotes": ["Important quote 1", "Important quote 2", ...],
    "summary": "A detailed 2-3 paragraph summary"
}

Guidelines:
- Extract 5-10 key points that capture the main content
- Identify 3-7 major topics discussed
- Identify 2-5 overarching themes
- Note any predictions about future trends, events, or developments
- Extract actionable recommendations for listeners
- Capture key pieces of advice given by speakers
- Include 2-4 notable or memorable quotes
- If a category has no content, use an empty array

TRANSCRIPT:
` + text + `

Respond ONLY with the JSON object, no additional text.`
}

func sectionPrompt(part, total int, text string) string {
	return fmt.Sprintf(`This is part %d of %d of a podcast transcript.
Analyze this section and return a JSON object with:
{
    "overview": "Brief summary of this section",
    "key_points": ["point 1", ...],
    "topics": ["topic 1", ...],
    "themes": ["theme 1", ...],
    "predictions": ["prediction 1", ...],
    "recommendations": ["recommendation 1", ...],
    "advice": ["advice 1", ...],
    "notable_quotes": ["quote 1", ...]
}

TRANSCRIPT SECTION:
%s

Respond ONLY with the JSON object.`, part, total, text)
}

func synthesisPrompt(sections []extraction) string {
	type sectionView struct {
		Part      int      `json:"part"`
		Overview  string   `json:"overview"`
		KeyPoints []string `json:"key_points"`
		Themes    []string `json:"themes"`
	}
	views := make([]sectionView, len(sections))
	for i, s := range sections {
		views[i] = sectionView{Part: i + 1, Overview: s.Overview, KeyPoints: s.KeyPoints, Themes: s.Themes}
	}
	data, _ := json.MarshalIndent(views, "", "  ")

	return `The following are structured analyses of consecutive sections of one podcast episode.
Write a single coherent overview of the entire episode.

Return a JSON object with:
{
    "overview": "A brief 2-3 sentence summary of the entire episode",
    "summary": "A detailed 2-3 paragraph summary of the entire episode"
}

SECTION ANALYSES:
` + string(data) + `

Respond ONLY with the JSON object.`
}
