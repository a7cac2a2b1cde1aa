// Package analysis drives episodes through download, transcription and
// structured extraction.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	"github.com/killallgit/podcast-analyzer/internal/services/transcription"
	"github.com/killallgit/podcast-analyzer/pkg/download"
)

// errLostOwnership means the episode left the processing state underneath
// the run, e.g. it was reclaimed. The run stops without writing.
var errLostOwnership = errors.New("episode is no longer processing")

// EpisodeStore is the slice of the episode repository the analyzer writes
type EpisodeStore interface {
	GetEpisodeByID(ctx context.Context, id uint) (*models.Episode, error)
	Claim(ctx context.Context, id uint) (bool, error)
	SetStep(ctx context.Context, id uint, step models.EpisodeStep) (bool, error)
	SaveTranscript(ctx context.Context, id uint, transcript string) error
	CompleteAnalysis(ctx context.Context, id uint, analysis *models.EpisodeAnalysis) error
	Fail(ctx context.Context, id uint, cause string, kind models.FailureKind) error
}

// AudioSource downloads episode audio to a temporary file
type AudioSource interface {
	Fetch(ctx context.Context, url string, episodeID uint) (*download.Result, error)
}

// TranscriptSource fetches a transcript published with the feed entry
type TranscriptSource interface {
	FetchText(ctx context.Context, url, mimeType string) (string, error)
}

// StructuredExtractor produces the structured analysis for a transcript
type StructuredExtractor interface {
	Extract(ctx context.Context, text string) (*models.EpisodeAnalysis, error)
}

// callPlanner is implemented by extractors that can say up front how many
// generation calls a transcript needs
type callPlanner interface {
	GenerationCalls(text string) int
}

// Submitter queues jobs for the worker pool
type Submitter interface {
	Submit(job *models.Job) error
}

// Options holds per-step deadlines and source preferences
type Options struct {
	DownloadTimeout      time.Duration
	TranscriptionTimeout time.Duration
	// AnalysisTimeout is the budget per generation call. The analyzing step
	// gets one budget for every call the transcript needs.
	AnalysisTimeout time.Duration
	PreferPublished bool
}

// Outcome reports what Start did
type Outcome string

const (
	OutcomeQueued            Outcome = "queued"
	OutcomeAlreadyProcessing Outcome = "already_processing"
	OutcomeAlreadyCompleted  Outcome = "already_completed"
)

// StartOptions modifies Start
type StartOptions struct {
	// Force re-analyzes an episode that is already completed
	Force bool
}

// StartResult is returned by Start
type StartResult struct {
	EpisodeID uint          `json:"episode_id"`
	Outcome   Outcome       `json:"outcome"`
	Status    models.Status `json:"status"`
	JobID     string        `json:"job_id,omitempty"`
}

// Analyzer owns the episode state machine. At most one run per episode
// is in flight, enforced through the registry.
type Analyzer struct {
	episodes    EpisodeStore
	audio       AudioSource
	transcripts TranscriptSource
	transcriber transcription.Transcriber
	extractor   StructuredExtractor
	registry    *jobs.Registry
	pool        Submitter
	opts        Options
}

func NewAnalyzer(
	store EpisodeStore,
	audio AudioSource,
	transcripts TranscriptSource,
	transcriber transcription.Transcriber,
	extractor StructuredExtractor,
	registry *jobs.Registry,
	pool Submitter,
	opts Options,
) *Analyzer {
	return &Analyzer{
		episodes:    store,
		audio:       audio,
		transcripts: transcripts,
		transcriber: transcriber,
		extractor:   extractor,
		registry:    registry,
		pool:        pool,
		opts:        opts,
	}
}

// Start queues an analysis run. A second Start for an episode that is
// already in flight is a no-op reporting OutcomeAlreadyProcessing.
func (a *Analyzer) Start(ctx context.Context, id uint, opts StartOptions) (*StartResult, error) {
	episode, err := a.episodes.GetEpisodeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if episode.Status == models.StatusCompleted && !opts.Force {
		return &StartResult{EpisodeID: id, Outcome: OutcomeAlreadyCompleted, Status: episode.Status}, nil
	}

	lease, ok := a.registry.TryAcquire(jobs.KindEpisode, id)
	if !ok {
		return &StartResult{EpisodeID: id, Outcome: OutcomeAlreadyProcessing, Status: models.StatusProcessing}, nil
	}

	claimed, err := a.episodes.Claim(ctx, id)
	if err != nil {
		lease.Release()
		return nil, fmt.Errorf("claiming episode %d: %w", id, err)
	}
	if !claimed {
		// processing in the database but not in this process: left over
		// from a previous run and waiting for the reclaimer
		lease.Release()
		return &StartResult{EpisodeID: id, Outcome: OutcomeAlreadyProcessing, Status: models.StatusProcessing}, nil
	}

	job := models.NewJob(models.JobTypeEpisodeAnalysis, id, lease.Release)
	if err := a.pool.Submit(job); err != nil {
		lease.Release()
		cause := fmt.Sprintf("could not queue analysis: %v", err)
		if failErr := a.episodes.Fail(ctx, id, cause, models.FailureTransient); failErr != nil {
			log.Printf("[ERROR] Failed to record queue failure for episode %d: %v", id, failErr)
		}
		return nil, fmt.Errorf("queueing episode %d: %w", id, err)
	}

	log.Printf("[INFO] Queued analysis job %s for episode %d", job.ID, id)
	return &StartResult{EpisodeID: id, Outcome: OutcomeQueued, Status: models.StatusProcessing, JobID: job.ID}, nil
}

// CanProcess implements workers.JobProcessor
func (a *Analyzer) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeEpisodeAnalysis
}

// ProcessJob implements workers.JobProcessor. Every failure, panics
// included, ends with the episode marked failed.
func (a *Analyzer) ProcessJob(ctx context.Context, job *models.Job) (err error) {
	id := job.EntityID
	started := time.Now()
	log.Printf("[INFO] Job %s: analysis started for episode %d", job.ID, id)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Job %s: panic analyzing episode %d: %v\n%s", job.ID, id, r, debug.Stack())
			err = models.NewJobError(models.ErrorTypeSystem, "panic", "unexpected internal error during analysis", fmt.Errorf("%v", r))
			a.fail(job, err)
		}
	}()

	if err := a.execute(ctx, job); err != nil {
		if errors.Is(err, errLostOwnership) || errors.Is(err, episodes.ErrNotProcessing) {
			log.Printf("[WARN] Job %s: episode %d is no longer processing, abandoning run", job.ID, id)
			return nil
		}
		a.fail(job, err)
		return err
	}

	log.Printf("[INFO] Job %s: analysis completed for episode %d in %v", job.ID, id, time.Since(started).Round(time.Millisecond))
	return nil
}

func (a *Analyzer) execute(ctx context.Context, job *models.Job) error {
	episode, err := a.episodes.GetEpisodeByID(ctx, job.EntityID)
	if err != nil {
		return models.NewJobError(models.ErrorTypeSystem, "load_failed", "could not load episode: "+err.Error(), err)
	}

	text := ""
	if episode.HasTranscript() {
		text = *episode.Transcript
		log.Printf("[INFO] Job %s: episode %d already has a transcript, skipping download", job.ID, episode.ID)
	} else {
		text, err = a.acquireTranscript(ctx, job, episode)
		if err != nil {
			return err
		}
		if err := a.episodes.SaveTranscript(ctx, episode.ID, text); err != nil {
			return err
		}
	}

	var result *models.EpisodeAnalysis
	err = a.step(ctx, job, models.StepAnalyzing, a.analysisBudget(text), func(stepCtx context.Context) error {
		var extractErr error
		result, extractErr = a.extractor.Extract(stepCtx, text)
		if extractErr != nil {
			return models.NewJobError(models.ErrorTypeGeneration, "analysis_failed", "analysis failed: "+extractErr.Error(), extractErr)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.EpisodeID = episode.ID
	return a.episodes.CompleteAnalysis(ctx, episode.ID, result)
}

func (a *Analyzer) analysisBudget(text string) time.Duration {
	if a.opts.AnalysisTimeout <= 0 {
		return 0
	}
	calls := 1
	if planner, ok := a.extractor.(callPlanner); ok {
		calls = max(planner.GenerationCalls(text), 1)
	}
	return a.opts.AnalysisTimeout * time.Duration(calls)
}

// acquireTranscript prefers a published transcript and falls back to
// downloading and transcribing the audio.
func (a *Analyzer) acquireTranscript(ctx context.Context, job *models.Job, episode *models.Episode) (string, error) {
	var (
		text  string
		audio *download.Result
	)

	err := a.step(ctx, job, models.StepDownloading, a.opts.DownloadTimeout, func(stepCtx context.Context) error {
		if a.opts.PreferPublished && episode.TranscriptURL != "" && a.transcripts != nil {
			published, err := a.transcripts.FetchText(stepCtx, episode.TranscriptURL, episode.TranscriptType)
			if err == nil {
				log.Printf("[INFO] Job %s: using published transcript for episode %d", job.ID, episode.ID)
				text = published
				return nil
			}
			log.Printf("[WARN] Job %s: published transcript unavailable for episode %d, falling back to audio: %v", job.ID, episode.ID, err)
		}

		if episode.AudioURL == "" {
			return models.NewPermanentError(models.ErrorTypeDownload, "no_audio", "episode has no audio URL", nil)
		}
		result, err := a.audio.Fetch(stepCtx, episode.AudioURL, episode.ID)
		if err != nil {
			return classifyDownload(err)
		}
		audio = result
		return nil
	})
	if err != nil {
		return "", err
	}
	if text != "" {
		return text, nil
	}
	defer audio.Cleanup()

	err = a.step(ctx, job, models.StepTranscribing, a.opts.TranscriptionTimeout, func(stepCtx context.Context) error {
		transcribed, err := a.transcriber.Transcribe(stepCtx, audio.FilePath)
		if err != nil {
			return models.NewJobError(models.ErrorTypeTranscription, "transcription_failed", "transcription failed: "+err.Error(), err)
		}
		text = transcribed
		return nil
	})
	return text, err
}

// step records the step, then runs fn under the step deadline
func (a *Analyzer) step(ctx context.Context, job *models.Job, step models.EpisodeStep, timeout time.Duration, fn func(context.Context) error) error {
	ok, err := a.episodes.SetStep(ctx, job.EntityID, step)
	if err != nil {
		return models.NewJobError(models.ErrorTypeSystem, "step_write_failed", "could not record progress: "+err.Error(), err)
	}
	if !ok {
		return errLostOwnership
	}
	log.Printf("[INFO] Job %s: episode %d %s", job.ID, job.EntityID, step)

	stepCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err = fn(stepCtx)
	if err != nil && ctx.Err() == nil && errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		return models.NewJobError(models.ErrorTypeTimeout, "step_timeout", fmt.Sprintf("%s timed out after %v", step, timeout), err)
	}
	return err
}

func classifyDownload(err error) error {
	var sizeErr *download.SizeError
	switch {
	case errors.As(err, &sizeErr):
		return models.NewPermanentError(models.ErrorTypeDownload, "size_exceeded", "Audio file too large: "+sizeErr.Error(), err)
	case errors.Is(err, download.ErrUnsupportedMedia):
		return models.NewPermanentError(models.ErrorTypeDownload, "unsupported_media", err.Error(), err)
	default:
		return models.NewJobError(models.ErrorTypeDownload, "download_failed", "audio download failed: "+err.Error(), err)
	}
}

// fail persists the failure. It uses a fresh context so a cancelled run
// still records why it stopped.
func (a *Analyzer) fail(job *models.Job, err error) {
	cause := err.Error()
	var jobErr *models.StructuredJobError
	if errors.As(err, &jobErr) && jobErr.Message != "" {
		cause = jobErr.Message
	}

	log.Printf("[ERROR] Job %s: analysis failed for episode %d: %s", job.ID, job.EntityID, cause)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if failErr := a.episodes.Fail(ctx, job.EntityID, cause, models.FailureKindOf(err)); failErr != nil {
		log.Printf("[ERROR] Job %s: could not record failure for episode %d: %v", job.ID, job.EntityID, failErr)
	}
}
