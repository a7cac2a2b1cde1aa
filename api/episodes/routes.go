package episodes

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// RegisterRoutes registers episode routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/episodes - List episodes by window, podcast and status
	router.GET("", GetAll(deps))

	// GET /api/v1/episodes/:id - Episode with its analysis
	router.GET("/:id", GetByID(deps))

	// GET /api/v1/episodes/:id/status - Live analysis state, for polling
	router.GET("/:id/status", GetStatus(deps))

	// GET /api/v1/episodes/:id/analysis
	router.GET("/:id/analysis", GetAnalysis(deps))

	// POST /api/v1/episodes/:id/analyze - Start analysis
	router.POST("/:id/analyze", PostAnalyze(deps))
}
