package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	"github.com/killallgit/podcast-analyzer/internal/services/feeds"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrRefreshInProgress is returned when a full refresh is already running
var ErrRefreshInProgress = errors.New("feed refresh already in progress")

// PodcastStore reads podcasts and records when their feed was checked
type PodcastStore interface {
	ListAll(ctx context.Context) ([]models.Podcast, error)
	GetPodcastByID(ctx context.Context, id uint) (*models.Podcast, error)
	MarkChecked(ctx context.Context, id uint, at time.Time) error
}

// EpisodeStore diffs and stores feed entries
type EpisodeStore interface {
	KnownGUIDs(ctx context.Context, podcastID uint) (map[string]struct{}, error)
	InsertIfAbsent(ctx context.Context, episode *models.Episode) (bool, error)
}

// Starter hands new episodes of auto_analyze podcasts to the analyzer
type Starter interface {
	Start(ctx context.Context, id uint, opts analysis.StartOptions) (*analysis.StartResult, error)
}

// PodcastResult is the outcome of refreshing one podcast
type PodcastResult struct {
	PodcastID   uint   `json:"podcast_id"`
	Title       string `json:"title"`
	NewEpisodes int    `json:"new_episodes"`
	AutoQueued  int    `json:"auto_queued"`
	Error       string `json:"error,omitempty"`
}

// RefreshResult summarises a full refresh run
type RefreshResult struct {
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Podcasts    int             `json:"podcasts"`
	Failed      int             `json:"failed"`
	NewEpisodes int             `json:"new_episodes"`
	AutoQueued  int             `json:"auto_queued"`
	Results     []PodcastResult `json:"results"`
}

// RefresherOptions configures fan-out and per-feed timeouts
type RefresherOptions struct {
	Concurrency  int
	FetchTimeout time.Duration
}

// Refresher pulls every feed and stores entries it has not seen before
type Refresher struct {
	podcasts PodcastStore
	episodes EpisodeStore
	source   feeds.Source
	starter  Starter
	registry *jobs.Registry
	opts     RefresherOptions
	now      func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	lastRun *time.Time
	last    *RefreshResult
}

func NewRefresher(podcasts PodcastStore, episodes EpisodeStore, source feeds.Source, starter Starter, registry *jobs.Registry, opts RefresherOptions) *Refresher {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	return &Refresher{
		podcasts: podcasts,
		episodes: episodes,
		source:   source,
		starter:  starter,
		registry: registry,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Refresh runs one pass over every podcast. A podcast that fails is
// recorded in the result and does not stop the others. Overlapping calls
// return ErrRefreshInProgress.
func (r *Refresher) Refresh(ctx context.Context) (*RefreshResult, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRefreshInProgress
	}
	defer r.running.Store(false)

	result := &RefreshResult{StartedAt: r.now()}

	podcasts, err := r.podcasts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}
	log.Printf("[INFO] Feed refresh started for %d podcasts", len(podcasts))

	results := make([]PodcastResult, len(podcasts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i := range podcasts {
		podcast := podcasts[i]
		g.Go(func() error {
			results[i] = r.refreshOne(gctx, &podcast)
			return nil
		})
	}
	_ = g.Wait()

	result.Podcasts = len(podcasts)
	result.Results = results
	for _, pr := range results {
		if pr.Error != "" {
			result.Failed++
		}
		result.NewEpisodes += pr.NewEpisodes
		result.AutoQueued += pr.AutoQueued
	}
	result.FinishedAt = r.now()

	r.mu.Lock()
	finished := result.FinishedAt
	r.lastRun = &finished
	r.last = result
	r.mu.Unlock()

	log.Printf("[INFO] Feed refresh finished: %d podcasts, %d new episodes, %d failed, %d auto-queued in %v",
		result.Podcasts, result.NewEpisodes, result.Failed, result.AutoQueued, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	return result, nil
}

// RefreshPodcast refreshes a single podcast on demand
func (r *Refresher) RefreshPodcast(ctx context.Context, id uint) (*PodcastResult, error) {
	podcast, err := r.podcasts.GetPodcastByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := r.refreshOne(ctx, podcast)
	if result.Error == feedBusy {
		return nil, apperrors.InFlight("podcast feed", id)
	}
	return &result, nil
}

// InProgress reports whether a full refresh is running
func (r *Refresher) InProgress() bool {
	return r.running.Load()
}

// Last returns the finish time and result of the latest full refresh
func (r *Refresher) Last() (*time.Time, *RefreshResult) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRun, r.last
}

const feedBusy = "feed refresh already running"

func (r *Refresher) refreshOne(ctx context.Context, podcast *models.Podcast) (result PodcastResult) {
	result = PodcastResult{PodcastID: podcast.ID, Title: podcast.Title}

	lease, ok := r.registry.TryAcquire(jobs.KindFeedRefresh, podcast.ID)
	if !ok {
		result.Error = feedBusy
		return result
	}
	defer lease.Release()

	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] Panic refreshing podcast %d: %v", podcast.ID, rec)
			result.Error = "unexpected internal error during refresh"
		}
	}()

	inserted, err := r.ingest(ctx, podcast)
	if err != nil {
		log.Printf("[WARN] Refresh of podcast %d (%s) failed: %v", podcast.ID, podcast.FeedURL, err)
		result.Error = err.Error()
		return result
	}
	result.NewEpisodes = len(inserted)

	if podcast.AutoAnalyze {
		for _, id := range inserted {
			started, err := r.starter.Start(ctx, id, analysis.StartOptions{})
			if err != nil {
				log.Printf("[WARN] Could not auto-queue episode %d of podcast %d: %v", id, podcast.ID, err)
				continue
			}
			if started.Outcome == analysis.OutcomeQueued {
				result.AutoQueued++
			}
		}
	}

	if result.NewEpisodes > 0 {
		log.Printf("[INFO] Podcast %d (%s): %d new episodes", podcast.ID, podcast.Title, result.NewEpisodes)
	} else {
		log.Printf("[DEBUG] Podcast %d (%s): no new episodes", podcast.ID, podcast.Title)
	}
	return result
}

// ingest fetches the feed and inserts unknown entries. It returns the ids
// of the inserted episodes.
func (r *Refresher) ingest(ctx context.Context, podcast *models.Podcast) ([]uint, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.opts.FetchTimeout)
	defer cancel()

	feed, err := r.source.Fetch(fetchCtx, podcast.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}

	known, err := r.episodes.KnownGUIDs(ctx, podcast.ID)
	if err != nil {
		return nil, err
	}

	var inserted []uint
	for _, entry := range feed.Entries {
		if _, seen := known[entry.GUID]; seen {
			continue
		}
		episode := entry.ToEpisode(podcast.ID)
		ok, err := r.episodes.InsertIfAbsent(ctx, episode)
		if err != nil {
			return inserted, fmt.Errorf("storing episode %q: %w", entry.GUID, err)
		}
		known[entry.GUID] = struct{}{}
		if ok {
			inserted = append(inserted, episode.ID)
		}
	}

	if err := r.podcasts.MarkChecked(ctx, podcast.ID, r.now()); err != nil {
		return inserted, fmt.Errorf("recording check time: %w", err)
	}
	return inserted, nil
}
