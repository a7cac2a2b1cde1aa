package podcasts

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// Delete removes a podcast with its episodes, analyses and digest links
// @Summary      Delete a podcast
// @Tags         podcasts
// @Param        id path int true "Podcast ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse "An episode of the podcast is being analyzed"
// @Router       /api/v1/podcasts/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil {
			types.SendUnavailable(c, "podcast service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if err := deps.Podcasts.Delete(c.Request.Context(), id); err != nil {
			types.SendError(c, err)
			return
		}

		log.Printf("[INFO] Deleted podcast %d", id)
		c.Status(http.StatusNoContent)
	}
}
