package digests

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// RegisterRoutes registers digest routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.POST("", Post(deps))
	router.GET("", GetAll(deps))
	router.GET("/:id", GetByID(deps))
	router.POST("/:id/regenerate-image", PostRegenerateImage(deps))
	router.DELETE("/:id", Delete(deps))
}
