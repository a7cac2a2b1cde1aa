package analysis

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// RegisterRoutes registers batch analysis routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// POST /api/v1/analysis/batch - Queue every unanalyzed episode in a window
	router.POST("/batch", PostBatch(deps))

	// GET /api/v1/analysis/progress?episode_ids=1,2,3
	router.GET("/progress", GetProgress(deps))

	// POST /api/v1/analysis/reset-stuck - Reclaim stalled jobs
	router.POST("/reset-stuck", PostResetStuck(deps))
}
