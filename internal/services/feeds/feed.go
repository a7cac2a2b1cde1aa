package feeds

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/mmcdole/gofeed"
)

// Feed is the podcast-level metadata and entries of a parsed feed
type Feed struct {
	Title       string
	Author      string
	Description string
	ImageURL    string
	Website     string
	Entries     []Entry
}

// Entry is a feed item that carries playable audio
type Entry struct {
	GUID            string
	Title           string
	Description     string
	AudioURL        string
	TranscriptURL   string
	TranscriptType  string
	DurationSeconds *int
	PublishedAt     time.Time
}

// ToEpisode converts the entry into a pending episode of podcastID
func (e Entry) ToEpisode(podcastID uint) *models.Episode {
	return &models.Episode{
		PodcastID:       podcastID,
		GUID:            e.GUID,
		Title:           e.Title,
		Description:     e.Description,
		AudioURL:        e.AudioURL,
		TranscriptURL:   e.TranscriptURL,
		TranscriptType:  e.TranscriptType,
		DurationSeconds: e.DurationSeconds,
		PublishedAt:     e.PublishedAt.UTC(),
		Status:          models.StatusPending,
	}
}

// Source fetches and parses podcast feeds
type Source interface {
	Fetch(ctx context.Context, feedURL string) (*Feed, error)
}

// Options configures the feed client
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// Client fetches feeds over HTTP and parses them with gofeed
type Client struct {
	parser *gofeed.Parser
	now    func() time.Time
}

var _ Source = (*Client)(nil)

// NewClient creates a new feed client
func NewClient(opts Options) *Client {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: opts.Timeout}
	if opts.UserAgent != "" {
		parser.UserAgent = opts.UserAgent
	}
	return &Client{
		parser: parser,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Fetch downloads and parses the feed at feedURL
func (c *Client) Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	raw, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	feed := mapFeed(raw, c.now())
	log.Printf("[DEBUG] Parsed %d audio entries from %s", len(feed.Entries), feedURL)
	return feed, nil
}

// Parse parses feed XML that has already been retrieved
func Parse(content string) (*Feed, error) {
	raw, err := gofeed.NewParser().ParseString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return mapFeed(raw, time.Now().UTC()), nil
}

func mapFeed(raw *gofeed.Feed, now time.Time) *Feed {
	feed := &Feed{
		Title:       strings.TrimSpace(raw.Title),
		Description: htmlToText(raw.Description),
		Website:     raw.Link,
	}

	switch {
	case raw.ITunesExt != nil && raw.ITunesExt.Author != "":
		feed.Author = raw.ITunesExt.Author
	case raw.Author != nil:
		feed.Author = raw.Author.Name
	}

	switch {
	case raw.Image != nil && raw.Image.URL != "":
		feed.ImageURL = raw.Image.URL
	case raw.ITunesExt != nil:
		feed.ImageURL = raw.ITunesExt.Image
	}

	for _, item := range raw.Items {
		if entry, ok := mapItem(item, now); ok {
			feed.Entries = append(feed.Entries, entry)
		}
	}
	return feed
}

// mapItem converts a feed item, skipping items without an audio enclosure
func mapItem(item *gofeed.Item, now time.Time) (Entry, bool) {
	audioURL := audioEnclosure(item)
	if audioURL == "" {
		return Entry{}, false
	}

	guid := strings.TrimSpace(item.GUID)
	if guid == "" {
		guid = audioURL
	}

	entry := Entry{
		GUID:        guid,
		Title:       strings.TrimSpace(item.Title),
		AudioURL:    audioURL,
		PublishedAt: now,
	}
	if entry.Title == "" {
		entry.Title = guid
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}
	entry.Description = htmlToText(description)

	switch {
	case item.PublishedParsed != nil:
		entry.PublishedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		entry.PublishedAt = item.UpdatedParsed.UTC()
	}

	if item.ITunesExt != nil {
		entry.DurationSeconds = ParseDuration(item.ITunesExt.Duration)
	}

	entry.TranscriptURL, entry.TranscriptType = publishedTranscript(item)
	return entry, true
}

func audioEnclosure(item *gofeed.Item) string {
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		t := strings.ToLower(enc.Type)
		if t == "" || strings.HasPrefix(t, "audio/") || t == "video/mp4" {
			return enc.URL
		}
	}
	return ""
}

// publishedTranscript reads <podcast:transcript url=".." type=".."/>,
// preferring formats that parse into clean text.
func publishedTranscript(item *gofeed.Item) (string, string) {
	ns, ok := item.Extensions["podcast"]
	if !ok {
		return "", ""
	}

	bestURL, bestType, bestRank := "", "", -1
	for _, ext := range ns["transcript"] {
		u := ext.Attrs["url"]
		if u == "" {
			continue
		}
		t := ext.Attrs["type"]
		if rank := transcriptRank(t); rank > bestRank {
			bestURL, bestType, bestRank = u, t, rank
		}
	}
	return bestURL, bestType
}

func transcriptRank(mimeType string) int {
	switch strings.ToLower(mimeType) {
	case "text/plain":
		return 4
	case "text/vtt":
		return 3
	case "application/x-subrip", "application/srt":
		return 2
	case "application/json":
		return 1
	default:
		return 0
	}
}

// ParseDuration parses itunes:duration as HH:MM:SS, MM:SS or seconds
func ParseDuration(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return nil
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			// some feeds emit fractional seconds
			f, ferr := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if ferr != nil || f < 0 || len(parts) != 1 {
				return nil
			}
			n = int(f)
		}
		total = total*60 + n
	}
	return &total
}

// htmlToText reduces an HTML description to plain text, keeping one line
// per block element.
func htmlToText(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	if !strings.ContainsAny(html, "<&") {
		return html
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
