package transcription

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/killallgit/podcast-analyzer/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "episode_1.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3 fake audio"), 0644))
	return path
}

func TestWhisperAPI_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "text", r.FormValue("response_format"))
		assert.Equal(t, "en", r.FormValue("language"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "episode_1.mp3", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "ID3 fake audio", string(data))

		_, _ = w.Write([]byte("  Hello and welcome to the show.\n"))
	}))
	defer server.Close()

	api := NewWhisperAPI(WhisperAPIConfig{URL: server.URL, APIKey: "secret", Language: "en"})
	text, err := api.Transcribe(context.Background(), writeAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "Hello and welcome to the show.", text)
}

func TestWhisperAPI_Errors(t *testing.T) {
	audio := writeAudio(t)

	t.Run("no key", func(t *testing.T) {
		_, err := NewWhisperAPI(WhisperAPIConfig{URL: "http://127.0.0.1:1"}).Transcribe(context.Background(), audio)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewWhisperAPI(WhisperAPIConfig{APIKey: "k"}).Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open audio")
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		}))
		defer server.Close()

		_, err := NewWhisperAPI(WhisperAPIConfig{URL: server.URL, APIKey: "k"}).Transcribe(context.Background(), audio)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "413")
	})

	t.Run("empty response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := NewWhisperAPI(WhisperAPIConfig{URL: server.URL, APIKey: "k"}).Transcribe(context.Background(), audio)
		assert.ErrorIs(t, err, ErrEmptyTranscript)
	})
}

func TestWhisperCLI(t *testing.T) {
	cli := NewWhisperCLI("", "./models/ggml-base.en.bin", "")
	assert.Equal(t, []string{
		"-m", "./models/ggml-base.en.bin",
		"-f", "/tmp/a.mp3",
		"-l", "en",
		"-t", "4",
		"-otxt",
		"-nt",
	}, cli.args("/tmp/a.mp3"))

	missing := NewWhisperCLI("definitely-not-a-whisper-binary", "m.bin", "en")
	_, err := missing.Transcribe(context.Background(), "/tmp/a.mp3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNew(t *testing.T) {
	tr, err := New(config.WhisperConfig{Mode: "api", APIKey: "k"}, 0)
	require.NoError(t, err)
	assert.IsType(t, &WhisperAPI{}, tr)

	tr, err = New(config.WhisperConfig{Mode: "cli", CLIPath: "whisper-cli"}, 0)
	require.NoError(t, err)
	assert.IsType(t, &WhisperCLI{}, tr)

	_, err = New(config.WhisperConfig{Mode: "cloud"}, 0)
	assert.Error(t, err)
}
