package types

import (
	"context"

	"github.com/killallgit/podcast-analyzer/internal/database"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	"github.com/killallgit/podcast-analyzer/internal/services/digests"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	"github.com/killallgit/podcast-analyzer/internal/services/podcasts"
	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
	"github.com/killallgit/podcast-analyzer/internal/services/workers"
)

// PodcastService manages subscriptions
type PodcastService interface {
	Add(ctx context.Context, feedURL string, autoAnalyze bool) (*podcasts.AddResult, error)
	List(ctx context.Context) ([]podcasts.PodcastSummary, error)
	Get(ctx context.Context, id uint) (*models.Podcast, error)
	SetAutoAnalyze(ctx context.Context, id uint, autoAnalyze bool) (*models.Podcast, error)
	Delete(ctx context.Context, id uint) error
}

// EpisodeReader is the read side of the episode store
type EpisodeReader interface {
	GetEpisodeByID(ctx context.Context, id uint) (*models.Episode, error)
	ListEpisodes(ctx context.Context, filter episodes.Filter) ([]models.Episode, int64, error)
	GetAnalysis(ctx context.Context, episodeID uint) (*models.EpisodeAnalysis, error)
}

// AnalysisStarter starts single-episode analysis
type AnalysisStarter interface {
	Start(ctx context.Context, id uint, opts analysis.StartOptions) (*analysis.StartResult, error)
}

// BatchService queues analysis over a time window
type BatchService interface {
	Analyze(ctx context.Context, sel batch.Selection) (*batch.Result, error)
	Progress(ctx context.Context, ids []uint) (*batch.Progress, error)
}

// DigestService creates and manages digests
type DigestService interface {
	Create(ctx context.Context, req digests.CreateRequest) (*models.Digest, error)
	Get(ctx context.Context, id uint) (*models.Digest, error)
	List(ctx context.Context, limit, offset int) ([]models.Digest, int64, error)
	RegenerateImage(ctx context.Context, id uint) (*models.Digest, error)
	Delete(ctx context.Context, id uint) error
}

// FeedRefresher refreshes a single podcast on demand
type FeedRefresher interface {
	RefreshPodcast(ctx context.Context, id uint) (*scheduler.PodcastResult, error)
}

// SchedulerService triggers and reports on feed refreshes
type SchedulerService interface {
	TriggerNow(ctx context.Context) (*scheduler.RefreshResult, error)
	Status() scheduler.Status
}

// ReclaimService resets stuck jobs
type ReclaimService interface {
	Run(ctx context.Context, opts reclaimer.Options) (*reclaimer.Result, error)
}

// PoolStats reports worker pool activity
type PoolStats interface {
	Stats() workers.Stats
}

// JobLister lists the runs currently holding an entity
type JobLister interface {
	Snapshot() []jobs.Entry
}

// BuildInfo identifies the running binary
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB        *database.DB
	Podcasts  PodcastService
	Episodes  EpisodeReader
	Analyzer  AnalysisStarter
	Batch     BatchService
	Digests   DigestService
	Refresher FeedRefresher
	Scheduler SchedulerService
	Reclaimer ReclaimService
	Pool      PoolStats
	Jobs      JobLister
	Build     BuildInfo
}
