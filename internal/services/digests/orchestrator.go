// Package digests synthesizes cross-episode digests over a time window and
// paints their artwork.
package digests

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	"github.com/killallgit/podcast-analyzer/internal/services/imagegen"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/killallgit/podcast-analyzer/pkg/period"
)

// errLostOwnership means the digest left processing underneath the run
var errLostOwnership = errors.New("digest is no longer processing")

// AnalyzedEpisodes reads the completed episodes a digest draws on
type AnalyzedEpisodes interface {
	ListAnalyzedInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error)
}

// ContentSynthesizer is the single text-generation point of a digest
type ContentSynthesizer interface {
	Synthesize(ctx context.Context, episodes []models.Episode, window period.Window) (*Content, error)
}

// Submitter queues jobs for the worker pool
type Submitter interface {
	Submit(job *models.Job) error
}

// Options configures artwork
type Options struct {
	ImagesEnabled bool
	ImageTimeout  time.Duration
}

// CreateRequest selects the episodes of a new digest
type CreateRequest struct {
	batch.Selection
	Title string `json:"title,omitempty"`
}

type Orchestrator struct {
	repo     DigestRepository
	episodes AnalyzedEpisodes
	podcasts batch.PodcastChecker
	synth    ContentSynthesizer
	images   imagegen.Generator
	picker   *StylePicker
	registry *jobs.Registry
	pool     Submitter
	opts     Options
	now      func() time.Time
}

func NewOrchestrator(
	repo DigestRepository,
	episodes AnalyzedEpisodes,
	podcasts batch.PodcastChecker,
	synth ContentSynthesizer,
	images imagegen.Generator,
	picker *StylePicker,
	registry *jobs.Registry,
	pool Submitter,
	opts Options,
) *Orchestrator {
	if picker == nil {
		picker = NewStylePicker(Styles, 0)
	}
	if images == nil {
		opts.ImagesEnabled = false
	}
	return &Orchestrator{
		repo:     repo,
		episodes: episodes,
		podcasts: podcasts,
		synth:    synth,
		images:   images,
		picker:   picker,
		registry: registry,
		pool:     pool,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time used to resolve periods
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Create validates the request, stores a pending digest and queues its
// generation. Problems found while generating surface only through the
// digest's status.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (*models.Digest, error) {
	resolved, err := batch.Resolve(ctx, o.podcasts, req.Selection, o.now())
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = resolved.Window.Title()
	}

	digest := &models.Digest{
		Title:       title,
		PeriodToken: string(resolved.Window.Token),
		PeriodStart: resolved.Window.Start,
		PeriodEnd:   resolved.Window.End,
		PodcastIDs:  models.UintList(resolved.PodcastIDs),
		Status:      models.StatusPending,
	}
	if err := o.repo.Create(ctx, digest); err != nil {
		return nil, err
	}

	lease, ok := o.registry.TryAcquire(jobs.KindDigest, digest.ID)
	if !ok {
		return nil, apperrors.InFlight("digest", digest.ID)
	}
	claimed, err := o.repo.Claim(ctx, digest.ID, "Waiting for a free worker...")
	if err != nil || !claimed {
		lease.Release()
		if err == nil {
			err = fmt.Errorf("digest %d was not pending", digest.ID)
		}
		return nil, apperrors.DatabaseError("claiming digest", err)
	}

	job := models.NewJob(models.JobTypeDigestGeneration, digest.ID, lease.Release)
	if err := o.pool.Submit(job); err != nil {
		lease.Release()
		if failErr := o.repo.Fail(ctx, digest.ID, "could not queue digest: "+err.Error()); failErr != nil {
			log.Printf("[ERROR] Failed to record queue failure for digest %d: %v", digest.ID, failErr)
		}
		return nil, apperrors.Unavailable("digest queue", err)
	}

	log.Printf("[INFO] Queued digest job %s for digest %d (%s)", job.ID, digest.ID, resolved.Window.Describe())
	return o.repo.Get(ctx, digest.ID)
}

func (o *Orchestrator) Get(ctx context.Context, id uint) (*models.Digest, error) {
	return o.repo.Get(ctx, id)
}

func (o *Orchestrator) List(ctx context.Context, limit, offset int) ([]models.Digest, int64, error) {
	return o.repo.List(ctx, limit, offset)
}

// Delete removes a digest that is not currently being generated
func (o *Orchestrator) Delete(ctx context.Context, id uint) error {
	digest, err := o.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if digest.Status == models.StatusProcessing || o.registry.Held(jobs.KindDigest, id) {
		return apperrors.Conflict("digest", "generation is still running")
	}
	if err := o.repo.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("[INFO] Deleted digest %d", id)
	return nil
}

// CanProcess implements workers.JobProcessor
func (o *Orchestrator) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeDigestGeneration
}

// ProcessJob implements workers.JobProcessor
func (o *Orchestrator) ProcessJob(ctx context.Context, job *models.Job) (err error) {
	id := job.EntityID
	started := time.Now()
	log.Printf("[INFO] Job %s: digest %d started", job.ID, id)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Job %s: panic generating digest %d: %v\n%s", job.ID, id, r, debug.Stack())
			err = fmt.Errorf("panic: %v", r)
			o.fail(job, "unexpected internal error while generating the digest")
		}
	}()

	if err := o.execute(ctx, job); err != nil {
		if errors.Is(err, errLostOwnership) || errors.Is(err, ErrNotProcessing) {
			log.Printf("[WARN] Job %s: digest %d is no longer processing, abandoning run", job.ID, id)
			return nil
		}
		o.fail(job, err.Error())
		return err
	}

	log.Printf("[INFO] Job %s: digest %d completed in %v", job.ID, id, time.Since(started).Round(time.Millisecond))
	return nil
}

func (o *Orchestrator) execute(ctx context.Context, job *models.Job) error {
	digest, err := o.repo.Get(ctx, job.EntityID)
	if err != nil {
		return fmt.Errorf("could not load digest: %w", err)
	}
	window := period.Window{Token: period.Token(digest.PeriodToken), Start: digest.PeriodStart, End: digest.PeriodEnd}

	if err := o.step(ctx, job, models.DigestStepCollectingEpisodes, "Finding analysed episodes..."); err != nil {
		return err
	}
	episodes, err := o.episodes.ListAnalyzedInWindow(ctx, digest.PeriodStart, digest.PeriodEnd, []uint(digest.PodcastIDs))
	if err != nil {
		return fmt.Errorf("could not collect episodes: %w", err)
	}
	if len(episodes) == 0 {
		return fmt.Errorf("no analyzed episodes found between %s", window.Describe())
	}

	ordered := analyzedInOrder(episodes)
	ids := make([]uint, len(ordered))
	for i, ep := range ordered {
		ids[i] = ep.ID
	}
	if err := o.repo.LinkEpisodes(ctx, digest.ID, ids); err != nil {
		return fmt.Errorf("could not link episodes: %w", err)
	}
	if err := o.step(ctx, job, models.DigestStepCollectingEpisodes, fmt.Sprintf("Found %d analysed episodes", len(ordered))); err != nil {
		return err
	}

	if err := o.step(ctx, job, models.DigestStepGeneratingContent, fmt.Sprintf("Synthesising insights from %d episodes...", len(ordered))); err != nil {
		return err
	}
	content, err := o.synth.Synthesize(ctx, ordered, window)
	if err != nil {
		return fmt.Errorf("content generation failed: %w", err)
	}

	art := Artwork{}
	if o.opts.ImagesEnabled {
		style := o.picker.Next("")
		scene := content.ImageDescription
		if scene == "" {
			scene = sceneFromThemes(content.CommonThemes)
		}
		if err := o.step(ctx, job, models.DigestStepGeneratingImage, fmt.Sprintf("Painting in the style of %s...", style.Artist)); err != nil {
			return err
		}
		art = o.paint(ctx, style, scene)
		if art.Error != "" {
			log.Printf("[WARN] Job %s: artwork for digest %d failed, completing without image: %s", job.ID, digest.ID, art.Error)
		}
	}

	return o.repo.Complete(ctx, digest.ID, content, art, len(ordered))
}

// paint requests one image. Failure is recorded in the artwork rather
// than returned.
func (o *Orchestrator) paint(ctx context.Context, style Style, scene string) Artwork {
	prompt := BuildImagePrompt(style, scene)
	art := Artwork{Prompt: prompt, Artist: style.Artist, Scene: cleanScene(scene)}

	if o.opts.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.ImageTimeout)
		defer cancel()
	}

	url, err := o.images.Generate(ctx, prompt)
	switch {
	case err == nil:
		art.URL = url
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		art.Error = fmt.Sprintf("image generation timed out after %v", o.opts.ImageTimeout)
	default:
		art.Error = err.Error()
	}
	return art
}

// RegenerateImage repaints a completed digest in a style different from
// its current one. Only the artwork fields change.
func (o *Orchestrator) RegenerateImage(ctx context.Context, id uint) (*models.Digest, error) {
	if !o.opts.ImagesEnabled {
		return nil, apperrors.Unavailable("image generation", nil)
	}

	var repainted *models.Digest
	err := o.registry.Run(jobs.KindDigest, id, func() error {
		var err error
		repainted, err = o.repaint(ctx, id)
		return err
	})
	if errors.Is(err, jobs.ErrInFlight) {
		return nil, apperrors.Conflict("digest", "generation is still running")
	}
	if err != nil {
		return nil, err
	}
	return repainted, nil
}

// repaint does the work of RegenerateImage while the digest key is held
func (o *Orchestrator) repaint(ctx context.Context, id uint) (*models.Digest, error) {
	digest, err := o.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if digest.Status != models.StatusCompleted {
		return nil, apperrors.Conflict("digest", fmt.Sprintf("is %s, artwork can only be regenerated once completed", digest.Status))
	}

	scene := digest.ImageScene
	current := digest.ImageArtist
	if parsedArtist, parsedScene, ok := ParseImagePrompt(digest.ImagePrompt); ok {
		if scene == "" {
			scene = parsedScene
		}
		if current == "" {
			current = parsedArtist
		}
	}
	if scene == "" {
		scene = sceneFromThemes(digest.CommonThemes)
	}

	style := o.picker.Next(current)
	log.Printf("[INFO] Regenerating artwork for digest %d in the style of %s (was %q)", id, style.Artist, current)

	art := o.paint(ctx, style, scene)
	if art.Error != "" {
		return nil, apperrors.ExternalServiceError("imagegen", errors.New(art.Error))
	}
	if err := o.repo.ReplaceArtwork(ctx, id, art); err != nil {
		if errors.Is(err, ErrNotCompleted) {
			return nil, apperrors.Conflict("digest", "is no longer completed")
		}
		return nil, err
	}
	return o.repo.Get(ctx, id)
}

func (o *Orchestrator) step(ctx context.Context, job *models.Job, step models.DigestStep, detail string) error {
	ok, err := o.repo.SetStep(ctx, job.EntityID, step, detail)
	if err != nil {
		return fmt.Errorf("could not record progress: %w", err)
	}
	if !ok {
		return errLostOwnership
	}
	log.Printf("[INFO] Job %s: digest %d %s: %s", job.ID, job.EntityID, step, detail)
	return nil
}

func (o *Orchestrator) fail(job *models.Job, cause string) {
	log.Printf("[ERROR] Job %s: digest %d failed: %s", job.ID, job.EntityID, cause)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.repo.Fail(ctx, job.EntityID, cause); err != nil {
		log.Printf("[ERROR] Job %s: could not record failure for digest %d: %v", job.ID, job.EntityID, err)
	}
}
