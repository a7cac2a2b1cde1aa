package transcription

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"
)

// WhisperCLI runs a local whisper.cpp binary
type WhisperCLI struct {
	binary    string
	modelPath string
	language  string
	threads   int
}

var _ Transcriber = (*WhisperCLI)(nil)

func NewWhisperCLI(binary, modelPath, language string) *WhisperCLI {
	if binary == "" {
		binary = "whisper-cli"
	}
	if language == "" {
		language = "en"
	}
	return &WhisperCLI{
		binary:    binary,
		modelPath: modelPath,
		language:  language,
		threads:   4,
	}
}

func (w *WhisperCLI) args(audioPath string) []string {
	return []string{
		"-m", w.modelPath,
		"-f", audioPath,
		"-l", w.language,
		"-t", strconv.Itoa(w.threads),
		"-otxt", // plain text output
		"-nt",   // no timestamps
	}
}

// Transcribe runs the binary and returns its stdout
func (w *WhisperCLI) Transcribe(ctx context.Context, audioPath string) (string, error) {
	path, err := exec.LookPath(w.binary)
	if err != nil {
		return "", fmt.Errorf("whisper binary %q not found: %w", w.binary, err)
	}

	cmd := exec.CommandContext(ctx, path, w.args(audioPath)...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			log.Printf("[ERROR] Whisper command failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("whisper command failed: %w", err)
	}

	text := strings.TrimSpace(string(output))
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
