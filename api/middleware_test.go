package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		origins        []string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{name: "preflight allows any", origins: []string{"*"}, method: "OPTIONS", origin: "https://example.com", expectedStatus: http.StatusNoContent, expectedOrigin: "*"},
		{name: "GET allows any", method: "GET", origin: "https://example.com", expectedStatus: http.StatusOK, expectedOrigin: "*"},
		{name: "listed origin echoed", origins: []string{"https://app.example.com"}, method: "GET", origin: "https://app.example.com", expectedStatus: http.StatusOK, expectedOrigin: "https://app.example.com"},
		{name: "unlisted origin not allowed", origins: []string{"https://app.example.com"}, method: "GET", origin: "https://evil.example.com", expectedStatus: http.StatusOK, expectedOrigin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, router := gin.CreateTestContext(w)

			router.Use(CORS(tt.origins...))
			router.Any("/test", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "success"})
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
		})
	}
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(BodyLimit(maxRequestBody))
	router.POST("/digests", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.JSON(http.StatusOK, gin.H{"received": len(body)})
	})

	tests := []struct {
		name           string
		size           int
		hideLength     bool
		expectedStatus int
	}{
		{name: "small body", size: 100, expectedStatus: http.StatusOK},
		{name: "exactly the limit", size: maxRequestBody, expectedStatus: http.StatusOK},
		{name: "declared length over limit", size: 2 * maxRequestBody, expectedStatus: http.StatusRequestEntityTooLarge},
		{name: "chunked body over limit", size: 2 * maxRequestBody, hideLength: true, expectedStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/digests", strings.NewReader(strings.Repeat("a", tt.size)))
			if tt.hideLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func limitedRouter(l *ClientLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(l.Handler())
	router.GET("/episodes", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func hit(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/episodes", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestClientLimiter(t *testing.T) {
	tests := []struct {
		name          string
		requests      int
		rps           float64
		burst         int
		wait          time.Duration
		expectBlocked bool
	}{
		{name: "within burst", requests: 3, rps: 10, burst: 5},
		{name: "burst exhausted", requests: 6, rps: 2, burst: 3, expectBlocked: true},
		{name: "spaced requests refill", requests: 5, rps: 10, burst: 2, wait: 150 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := NewClientLimiter(tt.rps, tt.burst)
			defer limiter.Close()
			router := limitedRouter(limiter)

			blocked := 0
			for i := range tt.requests {
				if i > 0 && tt.wait > 0 {
					time.Sleep(tt.wait)
				}
				if hit(router, "127.0.0.1:12345") == http.StatusTooManyRequests {
					blocked++
				}
			}

			if tt.expectBlocked {
				assert.Positive(t, blocked)
			} else {
				assert.Zero(t, blocked)
			}
		})
	}
}

func TestClientLimiter_SeparateBuckets(t *testing.T) {
	limiter := NewClientLimiter(2, 2)
	defer limiter.Close()
	router := limitedRouter(limiter)

	for range 3 {
		hit(router, "127.0.0.1:12345")
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(router, "127.0.0.1:12345"))
	assert.Equal(t, http.StatusOK, hit(router, "192.168.1.1:54321"))
}

func TestClientLimiter_Prune(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	defer limiter.Close()

	now := time.Now()
	limiter.allow("idle", now.Add(-time.Hour))
	limiter.allow("active", now.Add(-time.Minute))

	assert.Equal(t, 1, limiter.prune(now, limiterIdleTTL))

	_, idle := limiter.clients.Load("idle")
	_, active := limiter.clients.Load("active")
	assert.False(t, idle)
	assert.True(t, active)
}

func TestClientLimiter_CloseTwice(t *testing.T) {
	limiter := NewClientLimiter(1, 1)
	limiter.Close()
	assert.NotPanics(t, limiter.Close)
}
