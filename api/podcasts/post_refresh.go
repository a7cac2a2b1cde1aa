package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// PostRefresh fetches one podcast's feed and stores new episodes
// @Summary      Refresh a podcast
// @Description  Fetches the feed now. New episodes are stored as pending and, with auto_analyze on, queued for analysis.
// @Tags         podcasts
// @Produce      json
// @Param        id path int true "Podcast ID"
// @Success      200 {object} scheduler.PodcastResult
// @Failure      404 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse "The podcast is already being refreshed"
// @Failure      502 {object} types.ErrorResponse "Feed could not be fetched"
// @Router       /api/v1/podcasts/{id}/refresh [post]
func PostRefresh(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Refresher == nil {
			types.SendUnavailable(c, "feed refresher")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		result, err := deps.Refresher.RefreshPodcast(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, result)
	}
}
