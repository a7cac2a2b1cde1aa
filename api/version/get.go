package version

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// Get handles version requests
// @Summary      Build information
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /version [get]
func Get(build types.BuildInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Podcast Analyzer API",
			"version":     build.Version,
			"commit":      build.Commit,
			"build_date":  build.BuildDate,
			"go_version":  runtime.Version(),
			"description": "Podcast ingestion, episode analysis and digest generation",
			"status":      "running",
		})
	}
}
