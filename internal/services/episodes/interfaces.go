package episodes

import (
	"context"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
)

// Filter narrows episode listings. Zero values mean "no constraint".
type Filter struct {
	Start      *time.Time
	End        *time.Time
	PodcastIDs []uint
	Status     models.Status
	Offset     int
	Limit      int
}

// EpisodeRepository defines the data access interface for episodes.
// Every status or step change is a single conditional UPDATE, so readers
// never observe a status from one write paired with a step from another.
type EpisodeRepository interface {
	// Read
	GetEpisodeByID(ctx context.Context, id uint) (*models.Episode, error)
	ListEpisodes(ctx context.Context, filter Filter) ([]models.Episode, int64, error)
	ListEpisodesByIDs(ctx context.Context, ids []uint, limit int) ([]models.Episode, error)
	KnownGUIDs(ctx context.Context, podcastID uint) (map[string]struct{}, error)

	// Feed ingestion
	InsertIfAbsent(ctx context.Context, episode *models.Episode) (bool, error)

	// Batch selection
	ListInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error)
	ListLatestPerPodcast(ctx context.Context, podcastIDs []uint) ([]models.Episode, error)
	ListAnalyzedInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error)
	CountByStatus(ctx context.Context, ids []uint) (map[models.Status]int64, error)

	// Analysis lifecycle
	Claim(ctx context.Context, id uint) (bool, error)
	SetStep(ctx context.Context, id uint, step models.EpisodeStep) (bool, error)
	SaveTranscript(ctx context.Context, id uint, transcript string) error
	CompleteAnalysis(ctx context.Context, id uint, analysis *models.EpisodeAnalysis) error
	Fail(ctx context.Context, id uint, cause string, kind models.FailureKind) error
	GetAnalysis(ctx context.Context, episodeID uint) (*models.EpisodeAnalysis, error)

	// Reclaim
	ListStale(ctx context.Context, cutoff time.Time) ([]models.Episode, error)
	ReclaimStale(ctx context.Context, id uint, cutoff time.Time) (bool, error)
	ListRetryableFailed(ctx context.Context) ([]models.Episode, error)
	RequeueFailed(ctx context.Context, id uint) (bool, error)
}
