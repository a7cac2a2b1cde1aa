package podcasts

import (
	"log"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
)

// Post subscribes to a podcast feed
// @Summary      Add a podcast
// @Description  Fetches the feed once, stores the podcast and inserts every entry as a pending episode
// @Tags         podcasts
// @Accept       json
// @Produce      json
// @Param        request body types.AddPodcastRequest true "Feed to subscribe to"
// @Success      201 {object} podcasts.AddResult "Podcast created"
// @Failure      400 {object} types.ErrorResponse "Invalid feed URL"
// @Failure      409 {object} types.ErrorResponse "Feed already subscribed"
// @Failure      502 {object} types.ErrorResponse "Feed could not be fetched"
// @Router       /api/v1/podcasts [post]
func Post(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Podcasts == nil {
			types.SendUnavailable(c, "podcast service")
			return
		}

		var req types.AddPodcastRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		u, err := url.Parse(req.FeedURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			types.SendBadRequest(c, "feed_url must be an absolute http(s) URL")
			return
		}

		result, err := deps.Podcasts.Add(c.Request.Context(), req.FeedURL, req.AutoAnalyze)
		if err != nil {
			types.SendError(c, err)
			return
		}

		log.Printf("[INFO] Subscribed to %q (podcast %d, %d episodes)", result.Podcast.Title, result.Podcast.ID, result.EpisodesAdded)
		types.SendCreated(c, result)
	}
}
