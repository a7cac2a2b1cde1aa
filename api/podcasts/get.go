package podcasts

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// GetAll lists subscribed podcasts
// @Summary      List podcasts
// @Description  Lists every subscribed podcast with its episode count
// @Tags         podcasts
// @Produce      json
// @Success      200 {object} types.PodcastsResponse
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/v1/podcasts [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil {
			types.SendUnavailable(c, "podcast service")
			return
		}

		list, err := deps.Podcasts.List(c.Request.Context())
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.PodcastsResponse{Podcasts: list, Count: len(list)})
	}
}

// GetByID returns a single podcast
// @Summary      Get a podcast
// @Tags         podcasts
// @Produce      json
// @Param        id path int true "Podcast ID"
// @Success      200 {object} models.Podcast
// @Failure      400 {object} types.ErrorResponse
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/podcasts/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil {
			types.SendUnavailable(c, "podcast service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		podcast, err := deps.Podcasts.Get(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, podcast)
	}
}
