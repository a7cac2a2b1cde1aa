package episodes

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// GetByID returns an episode with its podcast and analysis
// @Summary      Get an episode
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} models.Episode
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/episodes/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Episodes == nil {
			types.SendUnavailable(c, "episode store")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		episode, err := deps.Episodes.GetEpisodeByID(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, episode)
	}
}

// GetStatus reports the live analysis state of an episode
// @Summary      Get episode analysis status
// @Description  Status and processing step are read from a single row, so a poll never pairs a status with another write's step
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} types.EpisodeStatusResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/episodes/{id}/status [get]
func GetStatus(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Episodes == nil {
			types.SendUnavailable(c, "episode store")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		episode, err := deps.Episodes.GetEpisodeByID(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.EpisodeStatusResponse{
			EpisodeID:      episode.ID,
			Status:         episode.Status,
			ProcessingStep: episode.ProcessingStep,
			FailureKind:    episode.FailureKind,
			Summary:        episode.Summary,
			HasAnalysis:    episode.Analysis != nil,
		})
	}
}

// GetAnalysis returns the structured analysis of an episode
// @Summary      Get episode analysis
// @Tags         episodes
// @Produce      json
// @Param        id path int true "Episode ID"
// @Success      200 {object} models.EpisodeAnalysis
// @Failure      404 {object} types.ErrorResponse "Episode missing or not analyzed yet"
// @Router       /api/v1/episodes/{id}/analysis [get]
func GetAnalysis(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Episodes == nil {
			types.SendUnavailable(c, "episode store")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		analysis, err := deps.Episodes.GetAnalysis(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, analysis)
	}
}
