package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"golang.org/x/time/rate"
)

const (
	// request bodies are small JSON documents
	maxRequestBody = 1 << 20

	limiterIdleTTL   = 10 * time.Minute
	limiterPruneTick = 5 * time.Minute
)

var corsMethods = strings.Join([]string{
	http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
}, ", ")

// CORS allows the configured origins. "*" or an empty list allows any.
func CORS(origins ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, wildcard := allowed["*"]
	wildcard = wildcard || len(origins) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		if wildcard {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
		}
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// BodyLimit rejects bodies larger than maxBytes, whether or not they
// declare a Content-Length
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Request body too large",
				Error:   string(apperrors.ErrCodeValidation),
			})
			return
		}
		if c.Request.Body != nil && c.Request.Method != http.MethodGet {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

type clientEntry struct {
	limiter *rate.Limiter

	mu       sync.Mutex
	lastSeen time.Time
}

func (e *clientEntry) seen(now time.Time) {
	e.mu.Lock()
	e.lastSeen = now
	e.mu.Unlock()
}

func (e *clientEntry) idle(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastSeen)
}

// ClientLimiter applies a token bucket per client IP. Buckets idle longer
// than limiterIdleTTL are dropped by a background sweep that runs from the
// first request until Close.
type ClientLimiter struct {
	rps   rate.Limit
	burst int

	clients   sync.Map
	sweepOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
}

func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	return &ClientLimiter{rps: rate.Limit(rps), burst: burst, stop: make(chan struct{})}
}

// Handler returns the rate limiting middleware
func (l *ClientLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		l.sweepOnce.Do(func() { go l.sweep() })

		if !l.allow(c.ClientIP(), time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Rate limit exceeded. Please slow down your requests.",
				Error:   string(apperrors.ErrCodeAPIRateLimit),
			})
			return
		}
		c.Next()
	}
}

func (l *ClientLimiter) allow(client string, now time.Time) bool {
	v, _ := l.clients.LoadOrStore(client, &clientEntry{
		limiter:  rate.NewLimiter(l.rps, l.burst),
		lastSeen: now,
	})
	entry := v.(*clientEntry)
	entry.seen(now)
	return entry.limiter.AllowN(now, 1)
}

// Close stops the idle sweep
func (l *ClientLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *ClientLimiter) sweep() {
	ticker := time.NewTicker(limiterPruneTick)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			l.prune(now, limiterIdleTTL)
		case <-l.stop:
			return
		}
	}
}

func (l *ClientLimiter) prune(now time.Time, maxIdle time.Duration) int {
	dropped := 0
	l.clients.Range(func(key, value any) bool {
		if entry, ok := value.(*clientEntry); !ok || entry.idle(now) > maxIdle {
			l.clients.Delete(key)
			dropped++
		}
		return true
	})
	return dropped
}
