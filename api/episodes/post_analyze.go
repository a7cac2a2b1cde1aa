package episodes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
)

// PostAnalyze starts analysis of a single episode
// @Summary      Analyze an episode
// @Description  Queues the episode for download, transcription and analysis. Repeating the request while a run is in flight does not start a second run. Completed episodes are only re-analyzed with reanalyze=true.
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Param        reanalyze query bool false "Re-analyze a completed episode"
// @Success      202 {object} analysis.StartResult "Queued"
// @Success      200 {object} analysis.StartResult "Already processing or completed"
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/episodes/{id}/analyze [post]
func PostAnalyze(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Analyzer == nil {
			types.SendUnavailable(c, "episode analyzer")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		force := false
		if raw := c.Query("reanalyze"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				types.SendBadRequest(c, "Invalid reanalyze")
				return
			}
			force = v
		}

		result, err := deps.Analyzer.Start(c.Request.Context(), id, analysis.StartOptions{Force: force})
		if err != nil {
			types.SendError(c, err)
			return
		}

		if result.Outcome == analysis.OutcomeQueued {
			c.JSON(http.StatusAccepted, result)
			return
		}
		types.SendSuccess(c, result)
	}
}
