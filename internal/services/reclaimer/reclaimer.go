// Package reclaimer returns stuck jobs to a state where they can run again.
// An episode or digest is stuck when it is processing, its last
// progress write is older than the staleness threshold, and no live run
// holds it.
package reclaimer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
)

// EpisodeStore is the episode side of reclaiming
type EpisodeStore interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]models.Episode, error)
	ReclaimStale(ctx context.Context, id uint, cutoff time.Time) (bool, error)
	ListRetryableFailed(ctx context.Context) ([]models.Episode, error)
	RequeueFailed(ctx context.Context, id uint) (bool, error)
}

// DigestStore is the digest side of reclaiming
type DigestStore interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]models.Digest, error)
	ReclaimStale(ctx context.Context, id uint, cutoff time.Time, cause string) (bool, error)
}

// Options tunes a single reclaim run
type Options struct {
	// StaleAfter overrides the configured threshold when positive
	StaleAfter    time.Duration
	IncludeFailed bool
}

// Result lists what a run changed
type Result struct {
	StaleAfter      string `json:"stale_after"`
	EpisodesReset   []uint `json:"episodes_reset"`
	DigestsFailed   []uint `json:"digests_failed"`
	FailedRequeued  []uint `json:"failed_requeued"`
	SkippedInFlight int    `json:"skipped_in_flight"`
}

type Reclaimer struct {
	episodes   EpisodeStore
	digests    DigestStore
	registry   *jobs.Registry
	staleAfter time.Duration
	now        func() time.Time
}

func New(episodes EpisodeStore, digests DigestStore, registry *jobs.Registry, staleAfter time.Duration) *Reclaimer {
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	return &Reclaimer{
		episodes:   episodes,
		digests:    digests,
		registry:   registry,
		staleAfter: staleAfter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time staleness is measured against
func (r *Reclaimer) WithClock(now func() time.Time) *Reclaimer {
	r.now = now
	return r
}

// Run resets stale processing episodes to pending and fails stale
// digests. With IncludeFailed it also re-queues transiently failed
// episodes.
func (r *Reclaimer) Run(ctx context.Context, opts Options) (*Result, error) {
	staleAfter := r.staleAfter
	if opts.StaleAfter > 0 {
		staleAfter = opts.StaleAfter
	}
	cutoff := r.now().Add(-staleAfter)

	result := &Result{
		StaleAfter:     staleAfter.String(),
		EpisodesReset:  []uint{},
		DigestsFailed:  []uint{},
		FailedRequeued: []uint{},
	}

	stale, err := r.episodes.ListStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, ep := range stale {
		if r.registry.Held(jobs.KindEpisode, ep.ID) {
			result.SkippedInFlight++
			continue
		}
		ok, err := r.episodes.ReclaimStale(ctx, ep.ID, cutoff)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Printf("[INFO] Reclaimed episode %d (stuck in %s since %s)", ep.ID, ep.ProcessingStep, ep.UpdatedAt.Format(time.RFC3339))
			result.EpisodesReset = append(result.EpisodesReset, ep.ID)
		}
	}

	staleDigests, err := r.digests.ListStale(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	cause := fmt.Sprintf("generation stalled: no progress for %s", staleAfter)
	for _, d := range staleDigests {
		if r.registry.Held(jobs.KindDigest, d.ID) {
			result.SkippedInFlight++
			continue
		}
		ok, err := r.digests.ReclaimStale(ctx, d.ID, cutoff, cause)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Printf("[INFO] Reclaimed digest %d (stuck in %s since %s)", d.ID, d.ProcessingStep, d.UpdatedAt.Format(time.RFC3339))
			result.DigestsFailed = append(result.DigestsFailed, d.ID)
		}
	}

	if opts.IncludeFailed {
		failed, err := r.episodes.ListRetryableFailed(ctx)
		if err != nil {
			return nil, err
		}
		for _, ep := range failed {
			if r.registry.Held(jobs.KindEpisode, ep.ID) {
				result.SkippedInFlight++
				continue
			}
			ok, err := r.episodes.RequeueFailed(ctx, ep.ID)
			if err != nil {
				return nil, err
			}
			if ok {
				result.FailedRequeued = append(result.FailedRequeued, ep.ID)
			}
		}
	}

	log.Printf("[INFO] Reclaim finished: %d episodes reset, %d digests failed, %d failed episodes re-queued, %d skipped in flight",
		len(result.EpisodesReset), len(result.DigestsFailed), len(result.FailedRequeued), result.SkippedInFlight)
	return result, nil
}
