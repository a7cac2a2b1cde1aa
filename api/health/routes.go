package health

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies) {
	engine.GET("/health", Get(deps))
}
