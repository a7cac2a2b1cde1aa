package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/podcast-analyzer/api/analysis"
	"github.com/killallgit/podcast-analyzer/api/digests"
	"github.com/killallgit/podcast-analyzer/api/episodes"
	"github.com/killallgit/podcast-analyzer/api/health"
	"github.com/killallgit/podcast-analyzer/api/podcasts"
	"github.com/killallgit/podcast-analyzer/api/scheduler"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/api/version"
	_ "github.com/killallgit/podcast-analyzer/docs/swagger"
)

// Feed fetches hit third-party hosts, so they get their own tighter bucket
const (
	feedFetchRPS   = 1
	feedFetchBurst = 2
)

// RegisterRoutes mounts every route on engine. The returned func stops the
// rate limiters' background sweeps.
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limits RateLimit) (stop func()) {
	if deps == nil {
		deps = &types.Dependencies{}
	}

	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  types.StatusError,
			"message": "The requested endpoint was not found",
			"path":    c.Request.URL.Path,
		})
	})

	general, feedFetch := gin.HandlerFunc(passThrough), gin.HandlerFunc(passThrough)
	stop = func() {}
	if limits.Enabled {
		generalLimiter := NewClientLimiter(limits.RPS, limits.Burst)
		feedLimiter := NewClientLimiter(feedFetchRPS, feedFetchBurst)
		general, feedFetch = generalLimiter.Handler(), feedLimiter.Handler()
		stop = func() {
			generalLimiter.Close()
			feedLimiter.Close()
		}
	}

	v1 := engine.Group("/api/v1")
	podcasts.RegisterRoutes(v1.Group("/podcasts", general), deps, feedFetch)
	episodes.RegisterRoutes(v1.Group("/episodes", general), deps)
	analysis.RegisterRoutes(v1.Group("/analysis", general), deps)
	digests.RegisterRoutes(v1.Group("/digests", general), deps)
	scheduler.RegisterRoutes(v1.Group("/scheduler", general), deps, feedFetch)

	return stop
}

func passThrough(c *gin.Context) { c.Next() }
