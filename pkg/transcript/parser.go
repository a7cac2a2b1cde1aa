package transcript

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Format is the encoding of a published episode transcript
type Format string

const (
	FormatVTT  Format = "vtt"
	FormatSRT  Format = "srt"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

var (
	cueTimingRegex = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}\s*-->\s*\d{1,2}:\d{2}(:\d{2})?[.,]\d{3}`)
	cueIndexRegex  = regexp.MustCompile(`^\d+$`)
	markupRegex    = regexp.MustCompile(`<[^>]+>`)
)

// ToPlainText flattens a published transcript into running text suitable
// for analysis. Timing, cue numbers and speaker markup are dropped.
func ToPlainText(content string, format Format) (string, error) {
	switch format {
	case FormatVTT, FormatSRT:
		return cuesToText(content), nil
	case FormatJSON:
		return jsonToText(content)
	case FormatText:
		return strings.TrimSpace(content), nil
	default:
		return "", fmt.Errorf("unsupported transcript format: %s", format)
	}
}

// cuesToText handles both WebVTT and SubRip, which differ only in header
// and the millisecond separator.
func cuesToText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var parts []string
	inCue := false
	skipBlock := false
	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			inCue = false
			skipBlock = false
		case skipBlock:
		case strings.HasPrefix(line, "WEBVTT"):
		case strings.HasPrefix(line, "NOTE"), strings.HasPrefix(line, "STYLE"), strings.HasPrefix(line, "REGION"):
			skipBlock = true
		case cueTimingRegex.MatchString(line):
			inCue = true
		case !inCue && cueIndexRegex.MatchString(line):
		case inCue:
			if text := strings.TrimSpace(markupRegex.ReplaceAllString(line, "")); text != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, " ")
}

type jsonSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Body    string `json:"body"`
}

// jsonToText accepts the podcast namespace JSON transcript, either a bare
// segment array or an object with a segments field.
func jsonToText(content string) (string, error) {
	var segments []jsonSegment
	if err := json.Unmarshal([]byte(content), &segments); err != nil {
		var wrapped struct {
			Segments []jsonSegment `json:"segments"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return "", fmt.Errorf("failed to parse JSON transcript: %w", err)
		}
		segments = wrapped.Segments
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := seg.Text
		if text == "" {
			text = seg.Body
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

// DetectFormat infers the transcript format from the declared MIME type,
// the URL extension and finally the content itself.
func DetectFormat(url, mimeType, content string) Format {
	mimeType = strings.ToLower(mimeType)
	switch {
	case strings.Contains(mimeType, "vtt"):
		return FormatVTT
	case strings.Contains(mimeType, "subrip"), strings.Contains(mimeType, "srt"):
		return FormatSRT
	case strings.Contains(mimeType, "json"):
		return FormatJSON
	}

	path := strings.ToLower(url)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	switch {
	case strings.HasSuffix(path, ".vtt"):
		return FormatVTT
	case strings.HasSuffix(path, ".srt"):
		return FormatSRT
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	}

	head := strings.TrimSpace(content)
	if len(head) > 1000 {
		head = head[:1000]
	}
	switch {
	case strings.HasPrefix(head, "WEBVTT"):
		return FormatVTT
	case strings.Contains(head, "-->"):
		return FormatSRT
	case strings.HasPrefix(head, "{"), strings.HasPrefix(head, "["):
		return FormatJSON
	}
	return FormatText
}
