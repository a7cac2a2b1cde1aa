package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// RegisterRoutes registers podcast routes. refreshMiddleware is applied to
// the routes that fetch feeds, which are more expensive than reads.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, refreshMiddleware gin.HandlerFunc) {
	// POST /api/v1/podcasts - Subscribe to a feed
	router.POST("", refreshMiddleware, Post(deps))

	// GET /api/v1/podcasts - List subscriptions with episode counts
	router.GET("", GetAll(deps))

	// GET /api/v1/podcasts/:id
	router.GET("/:id", GetByID(deps))

	// PATCH /api/v1/podcasts/:id - Toggle auto_analyze
	router.PATCH("/:id", Patch(deps))

	// DELETE /api/v1/podcasts/:id
	router.DELETE("/:id", Delete(deps))

	// POST /api/v1/podcasts/:id/refresh - Fetch new episodes now
	router.POST("/:id/refresh", refreshMiddleware, PostRefresh(deps))

	// GET /api/v1/podcasts/:id/episodes
	router.GET("/:id/episodes", GetEpisodes(deps))
}
