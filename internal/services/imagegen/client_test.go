package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/imagen-test:predict", r.URL.Path)
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))

		var req predictRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		if assert.Len(t, req.Instances, 1) {
			assert.Equal(t, "a lighthouse at dusk", req.Instances[0].Prompt)
		}
		assert.Equal(t, 1, req.Parameters.SampleCount)
		assert.Equal(t, "16:9", req.Parameters.AspectRatio)

		_, _ = w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"aGVsbG8="}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIURL: server.URL + "/v1beta", APIKey: "g-key", Model: "imagen-test"})
	url, err := client.Generate(context.Background(), "a lighthouse at dusk")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)
}

func TestClient_GenerateFallbacksAndErrors(t *testing.T) {
	respond := func(status int, body string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	}

	t.Run("generatedImages shape", func(t *testing.T) {
		server := respond(http.StatusOK, `{"generatedImages":[{"image":{"imageBytes":"Ynl0ZXM="}}]}`)
		defer server.Close()
		url, err := NewClient(Config{APIURL: server.URL, APIKey: "k"}).Generate(context.Background(), "p")
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,Ynl0ZXM=", url)
	})

	t.Run("no image", func(t *testing.T) {
		server := respond(http.StatusOK, `{"predictions":[]}`)
		defer server.Close()
		_, err := NewClient(Config{APIURL: server.URL, APIKey: "k"}).Generate(context.Background(), "p")
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("api error", func(t *testing.T) {
		server := respond(http.StatusBadRequest, `{"error":{"message":"prompt blocked"}}`)
		defer server.Close()
		_, err := NewClient(Config{APIURL: server.URL, APIKey: "k"}).Generate(context.Background(), "p")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "prompt blocked")
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewClient(Config{}).Generate(context.Background(), "p")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
