package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, limits RateLimit) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := NewServer(Options{Address: "127.0.0.1:0", RateLimit: limits})
	s.SetDependencies(&types.Dependencies{DB: db, Build: types.BuildInfo{Version: "test"}})
	require.NoError(t, s.Initialize())
	t.Cleanup(s.stopLimiters)
	return s
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, RateLimit{})

	tests := []struct {
		name           string
		path           string
		expectedStatus int
	}{
		{name: "health", path: "/health", expectedStatus: http.StatusOK},
		{name: "version", path: "/version", expectedStatus: http.StatusOK},
		{name: "docs redirect", path: "/docs", expectedStatus: http.StatusMovedPermanently},
		{name: "swagger document", path: "/docs/doc.json", expectedStatus: http.StatusOK},
		{name: "unknown route", path: "/api/v1/nope", expectedStatus: http.StatusNotFound},
		{name: "unwired service", path: "/api/v1/digests", expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, get(s, tt.path).Code)
		})
	}
}

func TestRoutes_SwaggerListsPaths(t *testing.T) {
	s := newTestServer(t, RateLimit{})

	w := get(s, "/docs/doc.json")
	require.Equal(t, http.StatusOK, w.Code)

	var doc struct {
		Paths map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Contains(t, doc.Paths, "/api/v1/episodes/{id}/analyze")
	assert.Contains(t, doc.Paths, "/api/v1/digests/{id}/regenerate-image")
	assert.Contains(t, doc.Paths, "/api/v1/scheduler/status")
}

func TestRoutes_RateLimited(t *testing.T) {
	s := newTestServer(t, RateLimit{Enabled: true, RPS: 1, Burst: 2})

	codes := make([]int, 0, 4)
	for range 4 {
		codes = append(codes, get(s, "/api/v1/digests").Code)
	}
	assert.Equal(t, http.StatusServiceUnavailable, codes[0])
	assert.Contains(t, codes, http.StatusTooManyRequests)

	// public routes are not limited
	for range 4 {
		assert.Equal(t, http.StatusOK, get(s, "/health").Code)
	}
}
