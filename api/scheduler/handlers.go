package scheduler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
	"github.com/killallgit/podcast-analyzer/internal/services/workers"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
)

// StatusResponse is the scheduler status plus worker pool activity
type StatusResponse struct {
	scheduler.Status
	Pool *workers.Stats `json:"pool,omitempty"`
}

// RegisterRoutes registers scheduler routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, refreshMiddleware gin.HandlerFunc) {
	router.POST("/refresh", refreshMiddleware, PostRefresh(deps))
	router.GET("/status", GetStatus(deps))
}

// PostRefresh runs a full feed refresh and waits for it
// @Summary      Refresh all feeds
// @Description  Fetches every subscribed feed now and stores new episodes
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} scheduler.RefreshResult
// @Failure      409 {object} types.ErrorResponse "A refresh is already running"
// @Router       /api/v1/scheduler/refresh [post]
func PostRefresh(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Scheduler == nil {
			types.SendUnavailable(c, "scheduler")
			return
		}

		result, err := deps.Scheduler.TriggerNow(c.Request.Context())
		if errors.Is(err, scheduler.ErrRefreshInProgress) {
			types.SendError(c, apperrors.InFlight("feed refresh", "all"))
			return
		}
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, result)
	}
}

// GetStatus reports next and last refresh times
// @Summary      Scheduler status
// @Tags         scheduler
// @Produce      json
// @Success      200 {object} StatusResponse
// @Router       /api/v1/scheduler/status [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Scheduler == nil {
			types.SendUnavailable(c, "scheduler")
			return
		}

		resp := StatusResponse{Status: deps.Scheduler.Status()}
		if deps.Pool != nil {
			stats := deps.Pool.Stats()
			resp.Pool = &stats
		}
		c.JSON(http.StatusOK, resp)
	}
}
