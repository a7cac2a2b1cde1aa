package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"
     xmlns:podcast="https://podcastindex.org/namespace/1.0">
  <channel>
    <title>Signals Weekly</title>
    <link>https://signals.example.com</link>
    <description>&lt;p&gt;Markets &amp;amp; tech&lt;/p&gt;</description>
    <itunes:author>Dana Reyes</itunes:author>
    <itunes:image href="https://signals.example.com/cover.jpg"/>
    <item>
      <title>Episode 2</title>
      <guid>sig-002</guid>
      <pubDate>Tue, 06 Jan 2026 10:00:00 +0100</pubDate>
      <description><![CDATA[<p>First paragraph.</p><p>Second <b>bold</b> paragraph.</p>]]></description>
      <enclosure url="https://cdn.example.com/sig-002.mp3" length="1234" type="audio/mpeg"/>
      <itunes:duration>01:02:03</itunes:duration>
      <podcast:transcript url="https://cdn.example.com/sig-002.json" type="application/json"/>
      <podcast:transcript url="https://cdn.example.com/sig-002.vtt" type="text/vtt"/>
    </item>
    <item>
      <title>Episode 1</title>
      <pubDate>Mon, 05 Jan 2026 09:00:00 GMT</pubDate>
      <enclosure url="https://cdn.example.com/sig-001.m4a" type="audio/x-m4a"/>
      <itunes:duration>754</itunes:duration>
    </item>
    <item>
      <title>Blog post without audio</title>
      <guid>post-1</guid>
    </item>
  </channel>
</rss>`

func TestParse(t *testing.T) {
	feed, err := Parse(sampleFeed)
	require.NoError(t, err)

	assert.Equal(t, "Signals Weekly", feed.Title)
	assert.Equal(t, "Dana Reyes", feed.Author)
	assert.Equal(t, "https://signals.example.com", feed.Website)
	assert.Equal(t, "https://signals.example.com/cover.jpg", feed.ImageURL)

	require.Len(t, feed.Entries, 2, "items without audio are skipped")

	first := feed.Entries[0]
	assert.Equal(t, "sig-002", first.GUID)
	assert.Equal(t, "https://cdn.example.com/sig-002.mp3", first.AudioURL)
	assert.Equal(t, "First paragraph.\nSecond bold paragraph.", first.Description)
	require.NotNil(t, first.DurationSeconds)
	assert.Equal(t, 3723, *first.DurationSeconds)
	assert.Equal(t, time.Date(2026, 1, 6, 9, 0, 0, 0, time.UTC), first.PublishedAt)
	assert.Equal(t, time.UTC, first.PublishedAt.Location())
	assert.Equal(t, "https://cdn.example.com/sig-002.vtt", first.TranscriptURL)
	assert.Equal(t, "text/vtt", first.TranscriptType)

	second := feed.Entries[1]
	assert.Equal(t, "https://cdn.example.com/sig-001.m4a", second.GUID, "guid falls back to the audio url")
	require.NotNil(t, second.DurationSeconds)
	assert.Equal(t, 754, *second.DurationSeconds)
	assert.Empty(t, second.TranscriptURL)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"01:02:03", 3723, true},
		{"12:34", 754, true},
		{"3600", 3600, true},
		{"95.7", 95, true},
		{"", 0, false},
		{"abc", 0, false},
		{"1:2:3:4", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDuration(tt.in)
			if !tt.ok {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "PodcastAnalyzer/1.0" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Path != "/feed.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewClient(Options{Timeout: 5 * time.Second, UserAgent: "PodcastAnalyzer/1.0"})

	feed, err := client.Fetch(context.Background(), server.URL+"/feed.xml")
	require.NoError(t, err)
	assert.Len(t, feed.Entries, 2)

	_, err = client.Fetch(context.Background(), server.URL+"/missing.xml")
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "plain", htmlToText("plain"))
	assert.Equal(t, "a\nb", htmlToText("a<br>b"))
	assert.Equal(t, "Tom & Jerry", htmlToText("Tom &amp; Jerry"))
	assert.Equal(t, "", htmlToText("   "))
}
