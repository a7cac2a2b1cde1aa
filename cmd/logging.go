package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var levelTags = [][]byte{
	levelDebug: []byte("[DEBUG]"),
	levelInfo:  []byte("[INFO]"),
	levelWarn:  []byte("[WARN]"),
	levelError: []byte("[ERROR]"),
}

// levelWriter drops log lines tagged below min. Untagged lines count as info.
type levelWriter struct {
	out io.Writer
	min int
}

func (w *levelWriter) Write(p []byte) (int, error) {
	if lineLevel(p) < w.min {
		return len(p), nil
	}
	return w.out.Write(p)
}

func lineLevel(p []byte) int {
	for level, tag := range levelTags {
		if bytes.Contains(p, tag) {
			return level
		}
	}
	return levelInfo
}

func parseLevel(s string) int {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func setupLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	log.SetOutput(&levelWriter{out: os.Stderr, min: parseLevel(level)})
}
