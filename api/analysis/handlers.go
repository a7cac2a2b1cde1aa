package analysis

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
)

// PostBatch queues analysis for a period
// @Summary      Start batch analysis
// @Description  Queues every episode in the window that is not completed or already running. With period=latest the newest episode of each podcast is selected.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request body types.SelectionRequest true "Episode selection"
// @Success      200 {object} batch.Result
// @Failure      400 {object} types.ErrorResponse "Unknown period or no matching podcast"
// @Router       /api/v1/analysis/batch [post]
func PostBatch(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Batch == nil {
			types.SendUnavailable(c, "batch analysis")
			return
		}

		var req types.SelectionRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		sel, err := req.Selection()
		if err != nil {
			types.SendError(c, err)
			return
		}

		result, err := deps.Batch.Analyze(c.Request.Context(), sel)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, result)
	}
}

// GetProgress aggregates analysis state
// @Summary      Get analysis progress
// @Description  Counts episodes by status. Without episode_ids every episode is counted.
// @Tags         analysis
// @Produce      json
// @Param        episode_ids query string false "Comma-separated episode ids"
// @Success      200 {object} batch.Progress
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/analysis/progress [get]
func GetProgress(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Batch == nil {
			types.SendUnavailable(c, "batch analysis")
			return
		}

		ids, err := types.ParseIDList(c.Query("episode_ids"))
		if err != nil {
			types.SendError(c, err)
			return
		}

		progress, err := deps.Batch.Progress(c.Request.Context(), ids)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, progress)
	}
}

// PostResetStuck runs the stuck-job reclaimer
// @Summary      Reset stuck jobs
// @Description  Moves processing episodes with no progress past the staleness threshold back to pending and fails stalled digests. include_failed also requeues transiently failed episodes.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request body types.ResetStuckRequest false "Reclaim options"
// @Success      200 {object} reclaimer.Result
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/analysis/reset-stuck [post]
func PostResetStuck(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Reclaimer == nil {
			types.SendUnavailable(c, "reclaimer")
			return
		}

		// An empty body means default options
		var req types.ResetStuckRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			types.SendBadRequest(c, "Invalid request body")
			return
		}

		opts := reclaimer.Options{IncludeFailed: req.IncludeFailed}
		if req.StaleAfter != "" {
			d, err := time.ParseDuration(req.StaleAfter)
			if err != nil || d <= 0 {
				types.SendBadRequest(c, "stale_after must be a positive duration such as 30m")
				return
			}
			opts.StaleAfter = d
		}

		result, err := deps.Reclaimer.Run(c.Request.Context(), opts)
		if err != nil {
			types.SendError(c, err)
			return
		}

		log.Printf("[INFO] Reset stuck jobs: %d episodes reset, %d digests failed, %d failed requeued",
			len(result.EpisodesReset), len(result.DigestsFailed), len(result.FailedRequeued))
		types.SendSuccess(c, result)
	}
}
