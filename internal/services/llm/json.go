package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSON is returned when no JSON object can be recovered from a response
var ErrNoJSON = errors.New("no JSON object found in response")

// ParseJSONResponse decodes a model response into dest. It tries, in order,
// the whole text, the first fenced code block, and the first balanced
// {...} object in the text.
func ParseJSONResponse(text string, dest any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(text), dest); err == nil {
		return nil
	}

	if block, ok := fencedBlock(text); ok {
		if err := json.Unmarshal([]byte(block), dest); err == nil {
			return nil
		}
	}

	if obj, ok := firstObject(text); ok {
		if err := json.Unmarshal([]byte(obj), dest); err == nil {
			return nil
		}
	}

	return ErrNoJSON
}

// fencedBlock returns the body of the first ``` fence, skipping an
// optional language tag on the opening line.
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return "", false
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// firstObject scans for the first balanced top-level object, ignoring
// braces inside string literals.
func firstObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
