package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
)

// GetEpisodes lists a podcast's episodes, newest first
// @Summary      List podcast episodes
// @Tags         podcasts
// @Produce      json
// @Param        id path int true "Podcast ID"
// @Param        status query string false "Filter by status" Enums(pending, processing, completed, failed)
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Page offset" default(0)
// @Success      200 {object} types.EpisodesResponse
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/podcasts/{id}/episodes [get]
func GetEpisodes(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil || deps.Episodes == nil {
			types.SendUnavailable(c, "episode store")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}
		limit, offset, ok := types.ParsePaging(c, 50, 200)
		if !ok {
			return
		}
		status := models.Status(c.Query("status"))
		if status != "" && !status.Valid() {
			types.SendBadRequest(c, "Invalid status")
			return
		}

		if _, err := deps.Podcasts.Get(c.Request.Context(), id); err != nil {
			types.SendError(c, err)
			return
		}

		list, total, err := deps.Episodes.ListEpisodes(c.Request.Context(), episodes.Filter{
			PodcastIDs: []uint{id},
			Status:     status,
			Offset:     offset,
			Limit:      limit,
		})
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.EpisodesResponse{
			Episodes: list,
			Count:    len(list),
			Total:    total,
			Offset:   offset,
			Limit:    limit,
		})
	}
}
