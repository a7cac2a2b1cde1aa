package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// Patch updates podcast settings
// @Summary      Update a podcast
// @Description  Turns automatic analysis of newly discovered episodes on or off
// @Tags         podcasts
// @Accept       json
// @Produce      json
// @Param        id path int true "Podcast ID"
// @Param        request body types.UpdatePodcastRequest true "Settings"
// @Success      200 {object} models.Podcast
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/podcasts/{id} [patch]
func Patch(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil {
			types.SendUnavailable(c, "podcast service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		var req types.UpdatePodcastRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		podcast, err := deps.Podcasts.SetAutoAnalyze(c.Request.Context(), id, *req.AutoAnalyze)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, podcast)
	}
}
