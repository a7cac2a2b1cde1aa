// Package batch selects episodes by period and podcast and queues their
// analysis.
package batch

import (
	"context"
	"log"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/killallgit/podcast-analyzer/pkg/period"
)

// EpisodeSelector is the read side of the episode repository
type EpisodeSelector interface {
	ListInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error)
	ListLatestPerPodcast(ctx context.Context, podcastIDs []uint) ([]models.Episode, error)
	CountByStatus(ctx context.Context, ids []uint) (map[models.Status]int64, error)
}

// Starter starts one episode analysis
type Starter interface {
	Start(ctx context.Context, id uint, opts analysis.StartOptions) (*analysis.StartResult, error)
}

// Result summarises a batch request. TotalMatched counts the episodes this
// batch accounts for, AlreadyCompleted + Queued. Episodes another job is
// already processing, and ones that could not be queued, are reported in
// their own counts outside the total.
type Result struct {
	Period            period.Window `json:"window"`
	TotalMatched      int           `json:"total_matched"`
	AlreadyCompleted  int           `json:"already_completed"`
	AlreadyProcessing int           `json:"already_processing"`
	Queued            int           `json:"queued"`
	QueueFailed       int           `json:"queue_failed,omitempty"`
	InFlight          []uint        `json:"episode_ids"`
}

// Progress is the aggregate status of a set of episodes
type Progress struct {
	Total      int64   `json:"total"`
	Pending    int64   `json:"pending"`
	Processing int64   `json:"processing"`
	Completed  int64   `json:"completed"`
	Failed     int64   `json:"failed"`
	Percent    float64 `json:"percent_complete"`
	Done       bool    `json:"done"`
}

type Orchestrator struct {
	episodes EpisodeSelector
	podcasts PodcastChecker
	starter  Starter
	now      func() time.Time
}

func NewOrchestrator(episodes EpisodeSelector, podcasts PodcastChecker, starter Starter) *Orchestrator {
	return &Orchestrator{
		episodes: episodes,
		podcasts: podcasts,
		starter:  starter,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time used to resolve periods
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Analyze queues every matched episode that is neither completed nor
// already processing, and returns without waiting for any of them.
// The worker pool bounds how many run at once.
func (o *Orchestrator) Analyze(ctx context.Context, sel Selection) (*Result, error) {
	resolved, err := Resolve(ctx, o.podcasts, sel, o.now())
	if err != nil {
		return nil, err
	}

	matched, err := o.match(ctx, resolved)
	if err != nil {
		return nil, apperrors.DatabaseError("selecting episodes", err)
	}

	result := &Result{
		Period:   resolved.Window,
		InFlight: []uint{},
	}

	for _, episode := range matched {
		switch episode.Status {
		case models.StatusCompleted:
			result.AlreadyCompleted++
			continue
		case models.StatusProcessing:
			result.AlreadyProcessing++
			result.InFlight = append(result.InFlight, episode.ID)
			continue
		}

		started, err := o.starter.Start(ctx, episode.ID, analysis.StartOptions{})
		if err != nil {
			// the episode is marked failed by the analyzer; siblings carry on
			log.Printf("[WARN] Batch could not queue episode %d: %v", episode.ID, err)
			result.QueueFailed++
			continue
		}
		switch started.Outcome {
		case analysis.OutcomeQueued:
			result.Queued++
			result.InFlight = append(result.InFlight, episode.ID)
		case analysis.OutcomeAlreadyProcessing:
			result.AlreadyProcessing++
			result.InFlight = append(result.InFlight, episode.ID)
		case analysis.OutcomeAlreadyCompleted:
			result.AlreadyCompleted++
		}
	}

	result.TotalMatched = result.AlreadyCompleted + result.Queued

	log.Printf("[INFO] Batch %s (%s): matched %d, completed %d, processing %d, queued %d, queue failed %d",
		resolved.Window.Token, resolved.Window.Describe(), result.TotalMatched,
		result.AlreadyCompleted, result.AlreadyProcessing, result.Queued, result.QueueFailed)
	return result, nil
}

// match resolves the episode set. The latest token picks the newest
// episode of each podcast instead of a time window.
func (o *Orchestrator) match(ctx context.Context, resolved *Resolved) ([]models.Episode, error) {
	if resolved.Window.Token == period.Latest {
		return o.episodes.ListLatestPerPodcast(ctx, resolved.PodcastIDs)
	}
	return o.episodes.ListInWindow(ctx, resolved.Window.Start, resolved.Window.End, resolved.PodcastIDs)
}

// Progress counts statuses among ids, or across every episode when ids is
// empty.
func (o *Orchestrator) Progress(ctx context.Context, ids []uint) (*Progress, error) {
	counts, err := o.episodes.CountByStatus(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, apperrors.DatabaseError("counting progress", err)
	}

	p := &Progress{
		Pending:    counts[models.StatusPending],
		Processing: counts[models.StatusProcessing],
		Completed:  counts[models.StatusCompleted],
		Failed:     counts[models.StatusFailed],
	}
	p.Total = p.Pending + p.Processing + p.Completed + p.Failed
	if p.Total > 0 {
		p.Percent = float64(p.Completed+p.Failed) / float64(p.Total) * 100
	}
	p.Done = p.Processing == 0 && p.Pending == 0
	return p, nil
}
