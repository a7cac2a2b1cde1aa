package podcasts

import (
	"context"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
)

// PodcastSummary is a podcast with its episode count
type PodcastSummary struct {
	models.Podcast
	EpisodeCount int64 `json:"episode_count"`
}

// PodcastRepository defines the data access interface for podcasts
type PodcastRepository interface {
	CreatePodcast(ctx context.Context, podcast *models.Podcast) error
	GetPodcastByID(ctx context.Context, id uint) (*models.Podcast, error)
	GetPodcastByFeedURL(ctx context.Context, feedURL string) (*models.Podcast, error)
	ListPodcasts(ctx context.Context) ([]PodcastSummary, error)
	ListAll(ctx context.Context) ([]models.Podcast, error)
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	UpdateAutoAnalyze(ctx context.Context, id uint, autoAnalyze bool) error
	MarkChecked(ctx context.Context, id uint, at time.Time) error
	CountProcessing(ctx context.Context, id uint) (int64, error)
	DeletePodcast(ctx context.Context, id uint) error
}
