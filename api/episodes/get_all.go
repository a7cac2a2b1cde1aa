package episodes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/killallgit/podcast-analyzer/pkg/period"
)

// GetAll lists episodes, newest first
// @Summary      List episodes
// @Description  Lists episodes, optionally limited to a period, a set of podcasts and a status. Without period or dates every episode matches.
// @Tags         episodes
// @Produce      json
// @Param        period query string false "Period token" Enums(latest, day, week, 2weeks, 3weeks, month, custom)
// @Param        start_date query string false "Window start for custom periods (RFC 3339 or YYYY-MM-DD)"
// @Param        end_date query string false "Window end for custom periods"
// @Param        podcast_ids query string false "Comma-separated podcast ids"
// @Param        status query string false "Filter by status" Enums(pending, processing, completed, failed)
// @Param        limit query int false "Page size" default(50)
// @Param        offset query int false "Page offset" default(0)
// @Success      200 {object} types.EpisodesResponse
// @Failure      400 {object} types.ErrorResponse
// @Router       /api/v1/episodes [get]
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Episodes == nil {
			types.SendUnavailable(c, "episode store")
			return
		}

		filter, err := filterFromQuery(c, time.Now())
		if err != nil {
			types.SendError(c, err)
			return
		}
		limit, offset, ok := types.ParsePaging(c, 50, 200)
		if !ok {
			return
		}
		filter.Limit, filter.Offset = limit, offset

		list, total, err := deps.Episodes.ListEpisodes(c.Request.Context(), filter)
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

func filterFromQuery(c *gin.Context, now time.Time) (episodes.Filter, error) {
	var filter episodes.Filter

	ids, err := types.ParseIDList(c.Query("podcast_ids"))
	if err != nil {
		return filter, err
	}
	filter.PodcastIDs = ids

	if s := models.Status(c.Query("status")); s != "" {
		if !s.Valid() {
			return filter, apperrors.ValidationError("status", "must be one of pending, processing, completed, failed")
		}
		filter.Status = s
	}

	token := c.Query("period")
	start, err := types.ParseDate("start_date", c.Query("start_date"))
	if err != nil {
		return filter, err
	}
	end, err := types.ParseDate("end_date", c.Query("end_date"))
	if err != nil {
		return filter, err
	}
	if token == "" && start == nil && end == nil {
		return filter, nil
	}
	if token == "" && start != nil {
		token = string(period.Custom)
	}

	window, err := period.ParseAndResolve(token, now, start, end)
	if err != nil {
		return filter, apperrors.ValidationError("period", err.Error()).WithCause(err)
	}
	filter.Start, filter.End = &window.Start, &window.End
	return filter, nil
}
