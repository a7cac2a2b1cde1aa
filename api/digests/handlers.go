package digests

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/digests"
)

// Post creates a digest and queues its generation
// @Summary      Create a digest
// @Description  Stores a pending digest for the window and queues generation. Poll GET /digests/{id} for processing_step and processing_detail.
// @Tags         digests
// @Accept       json
// @Produce      json
// @Param        request body types.CreateDigestRequest true "Digest window and optional title"
// @Success      201 {object} models.Digest
// @Failure      400 {object} types.ErrorResponse "Unknown period or no matching podcast"
// @Router       /api/v1/digests [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Digests == nil {
			types.SendUnavailable(c, "digest service")
			return
		}

		var req types.CreateDigestRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}
		sel, err := req.Selection()
		if err != nil {
			types.SendError(c, err)
			return
		}

		digest, err := deps.Digests.Create(c.Request.Context(), digests.CreateRequest{Selection: sel, Title: req.Title})
		if err != nil {
			types.SendError(c, err)
			return
		}

		log.Printf("[INFO] Created digest %d %q", digest.ID, digest.Title)
		types.SendCreated(c, digest)
	}
}

// GetAll lists digests, newest first
// @Summary      List digests
// @Tags         digests
// @Produce      json
// @Param        limit query int false "Page size" default(20)
// @Param        offset query int false "Page offset" default(0)
// @Success      200 {object} types.DigestsResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/digests [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Digests == nil {
			types.SendUnavailable(c, "digest service")
			return
		}

		limit, offset, ok := types.ParsePaging(c, 20, 100)
		if !ok {
			return
		}

		list, total, err := deps.Digests.List(c.Request.Context(), limit, offset)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, types.DigestsResponse{
			Digests: list,
			Count:   len(list),
			Total:   total,
			Offset:  offset,
			Limit:   limit,
		})
	}
}

// GetByID returns a digest with its linked episodes
// @Summary      Get a digest
// @Tags         digests
// @Produce      json
// @Param        id path int true "Digest ID"
// @Success      200 {object} models.Digest
// @Failure      404 {object} types.ErrorResponse
// @Router       /api/v1/digests/{id} [get]
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Digests == nil {
			types.SendUnavailable(c, "digest service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		digest, err := deps.Digests.Get(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, digest)
	}
}

// PostRegenerateImage paints new artwork for a completed digest
// @Summary      Regenerate digest artwork
// @Description  Keeps the scene and picks a different artist. The previous artwork is kept when generation fails.
// @Tags         digests
// @Produce      json
// @Param        id path int true "Digest ID"
// @Success      200 {object} models.Digest
// @Failure      404 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse "Digest is still being generated"
// @Failure      502 {object} types.ErrorResponse "Image generation failed"
// @Failure      503 {object} types.ErrorResponse "Image generation disabled"
// @Router       /api/v1/digests/{id}/regenerate-image [post]
func PostRegenerateImage(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Digests == nil {
			types.SendUnavailable(c, "digest service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		digest, err := deps.Digests.RegenerateImage(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}

		types.SendSuccess(c, digest)
	}
}

// Delete removes a digest and its episode links
// @Summary      Delete a digest
// @Tags         digests
// @Param        id path int true "Digest ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.ErrorResponse
// @Failure      409 {object} types.ErrorResponse "Digest is still being generated"
// @Router       /api/v1/digests/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Digests == nil {
			types.SendUnavailable(c, "digest service")
			return
		}

		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		if err := deps.Digests.Delete(c.Request.Context(), id); err != nil {
			types.SendError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
