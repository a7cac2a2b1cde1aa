package episodes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotProcessing is returned when a lifecycle write finds the episode no
// longer in processing, e.g. because it was reclaimed underneath the job.
var ErrNotProcessing = errors.New("episode is not processing")

// listColumns excludes the transcript body from listings
var listColumns = []string{"transcript"}

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// Ensure Repository implements EpisodeRepository interface
var _ EpisodeRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source used for updated_at
func (r *Repository) WithClock(now func() time.Time) *Repository {
	r.now = func() time.Time { return now().UTC() }
	return r
}

func (r *Repository) GetEpisodeByID(ctx context.Context, id uint) (*models.Episode, error) {
	var episode models.Episode
	if err := r.db.WithContext(ctx).
		Preload("Podcast").
		Preload("Analysis").
		First(&episode, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("episode", id)
		}
		return nil, fmt.Errorf("getting episode: %w", err)
	}
	return &episode, nil
}

func (r *Repository) ListEpisodes(ctx context.Context, filter Filter) ([]models.Episode, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Episode{})
	if filter.Start != nil {
		query = query.Where("published_at >= ?", filter.Start.UTC())
	}
	if filter.End != nil {
		query = query.Where("published_at <= ?", filter.End.UTC())
	}
	if len(filter.PodcastIDs) > 0 {
		query = query.Where("podcast_id IN ?", filter.PodcastIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting episodes: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var episodes []models.Episode
	if err := query.
		Omit(listColumns...).
		Preload("Podcast").
		Order("published_at DESC, id DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&episodes).Error; err != nil {
		return nil, 0, fmt.Errorf("listing episodes: %w", err)
	}
	return episodes, total, nil
}

func (r *Repository) ListEpisodesByIDs(ctx context.Context, ids []uint, limit int) ([]models.Episode, error) {
	query := r.db.WithContext(ctx).Omit(listColumns...).Order("updated_at DESC, id DESC")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var episodes []models.Episode
	if err := query.Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing episodes by id: %w", err)
	}
	return episodes, nil
}

func (r *Repository) KnownGUIDs(ctx context.Context, podcastID uint) (map[string]struct{}, error) {
	var guids []string
	if err := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("podcast_id = ?", podcastID).
		Pluck("guid", &guids).Error; err != nil {
		return nil, fmt.Errorf("loading known guids: %w", err)
	}

	known := make(map[string]struct{}, len(guids))
	for _, g := range guids {
		known[g] = struct{}{}
	}
	return known, nil
}

// InsertIfAbsent stores a new episode unless (podcast_id, guid) already
// exists. It reports whether a row was inserted.
func (r *Repository) InsertIfAbsent(ctx context.Context, episode *models.Episode) (bool, error) {
	if episode.Status == "" {
		episode.Status = models.StatusPending
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(episode)
	if result.Error != nil {
		return false, fmt.Errorf("inserting episode %q: %w", episode.GUID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) ListInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error) {
	query := r.db.WithContext(ctx).
		Omit(listColumns...).
		Where("published_at >= ? AND published_at <= ?", start.UTC(), end.UTC())
	if len(podcastIDs) > 0 {
		query = query.Where("podcast_id IN ?", podcastIDs)
	}

	var episodes []models.Episode
	if err := query.Order("published_at ASC, id ASC").Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing episodes in window: %w", err)
	}
	return episodes, nil
}

// ListLatestPerPodcast returns the newest episode of each podcast
func (r *Repository) ListLatestPerPodcast(ctx context.Context, podcastIDs []uint) ([]models.Episode, error) {
	query := r.db.WithContext(ctx).
		Omit(listColumns...).
		Where(`episodes.id = (
			SELECT e2.id FROM episodes e2
			WHERE e2.podcast_id = episodes.podcast_id
			ORDER BY e2.published_at DESC, e2.id DESC
			LIMIT 1)`)
	if len(podcastIDs) > 0 {
		query = query.Where("episodes.podcast_id IN ?", podcastIDs)
	}

	var episodes []models.Episode
	if err := query.Order("episodes.podcast_id ASC").Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing latest episodes: %w", err)
	}
	return episodes, nil
}

// ListAnalyzedInWindow returns completed episodes with a stored analysis,
// ordered by publication time.
func (r *Repository) ListAnalyzedInWindow(ctx context.Context, start, end time.Time, podcastIDs []uint) ([]models.Episode, error) {
	query := r.db.WithContext(ctx).
		Omit(listColumns...).
		Preload("Podcast").
		Preload("Analysis").
		Where("status = ?", models.StatusCompleted).
		Where("published_at >= ? AND published_at <= ?", start.UTC(), end.UTC()).
		Where("EXISTS (SELECT 1 FROM episode_analyses a WHERE a.episode_id = episodes.id)")
	if len(podcastIDs) > 0 {
		query = query.Where("podcast_id IN ?", podcastIDs)
	}

	var episodes []models.Episode
	if err := query.Order("published_at ASC, id ASC").Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing analyzed episodes: %w", err)
	}
	return episodes, nil
}

// CountByStatus counts episodes per status among ids, or across all
// episodes when ids is empty.
func (r *Repository) CountByStatus(ctx context.Context, ids []uint) (map[models.Status]int64, error) {
	type statusCount struct {
		Status models.Status
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var rows []statusCount
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("counting episode statuses: %w", err)
	}

	counts := map[models.Status]int64{
		models.StatusPending:    0,
		models.StatusProcessing: 0,
		models.StatusCompleted:  0,
		models.StatusFailed:     0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Claim moves an episode into processing/starting unless it is already
// processing. It reports whether this caller won the transition.
func (r *Repository) Claim(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status <> ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":          models.StatusProcessing,
			"processing_step": models.StepStarting,
			"summary":         nil,
			"failure_kind":    models.FailureNone,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("claiming episode %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SetStep records the current sub-stage of a processing episode
func (r *Repository) SetStep(ctx context.Context, id uint, step models.EpisodeStep) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"processing_step": step,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("setting step %s on episode %d: %w", step, id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SaveTranscript persists a transcript as soon as it is available, so a
// later failure does not force a second transcription.
func (r *Repository) SaveTranscript(ctx context.Context, id uint, transcript string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"transcript": transcript,
			"updated_at": r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("saving transcript for episode %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotProcessing
	}
	return nil
}

// CompleteAnalysis replaces the episode's analysis and marks it completed
// in one transaction.
func (r *Repository) CompleteAnalysis(ctx context.Context, id uint, analysis *models.EpisodeAnalysis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("episode_id = ?", id).Delete(&models.EpisodeAnalysis{}).Error; err != nil {
			return fmt.Errorf("removing previous analysis: %w", err)
		}

		analysis.ID = 0
		analysis.EpisodeID = id
		if err := tx.Create(analysis).Error; err != nil {
			return fmt.Errorf("storing analysis: %w", err)
		}

		result := tx.Model(&models.Episode{}).
			Where("id = ? AND status = ?", id, models.StatusProcessing).
			Updates(map[string]interface{}{
				"status":          models.StatusCompleted,
				"processing_step": models.StepNone,
				"summary":         analysis.Summary,
				"failure_kind":    models.FailureNone,
				"updated_at":      r.now(),
			})
		if result.Error != nil {
			return fmt.Errorf("completing episode %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotProcessing
		}
		return nil
	})
}

// Fail records a failed run. The cause is stored in the summary as
// "Error: <cause>".
func (r *Repository) Fail(ctx context.Context, id uint, cause string, kind models.FailureKind) error {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":          models.StatusFailed,
			"processing_step": models.StepNone,
			"summary":         "Error: " + cause,
			"failure_kind":    kind,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failing episode %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotProcessing
	}
	return nil
}

func (r *Repository) GetAnalysis(ctx context.Context, episodeID uint) (*models.EpisodeAnalysis, error) {
	var analysis models.EpisodeAnalysis
	if err := r.db.WithContext(ctx).Where("episode_id = ?", episodeID).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("analysis", episodeID)
		}
		return nil, fmt.Errorf("getting analysis: %w", err)
	}
	return &analysis, nil
}

// ListStale returns processing episodes last touched before cutoff
func (r *Repository) ListStale(ctx context.Context, cutoff time.Time) ([]models.Episode, error) {
	var episodes []models.Episode
	if err := r.db.WithContext(ctx).
		Select("id", "podcast_id", "title", "processing_step", "updated_at").
		Where("status = ? AND updated_at < ?", models.StatusProcessing, cutoff.UTC()).
		Order("updated_at ASC").
		Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing stale episodes: %w", err)
	}
	return episodes, nil
}

// ReclaimStale resets a stale processing episode to pending. The cutoff is
// re-checked so an episode that made progress meanwhile is left alone.
func (r *Repository) ReclaimStale(ctx context.Context, id uint, cutoff time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status = ? AND updated_at < ?", id, models.StatusProcessing, cutoff.UTC()).
		Updates(map[string]interface{}{
			"status":          models.StatusPending,
			"processing_step": models.StepNone,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("reclaiming episode %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListRetryableFailed returns failed episodes whose failure was transient
func (r *Repository) ListRetryableFailed(ctx context.Context) ([]models.Episode, error) {
	var episodes []models.Episode
	if err := r.db.WithContext(ctx).
		Select("id", "podcast_id", "title", "failure_kind", "updated_at").
		Where("status = ? AND failure_kind <> ?", models.StatusFailed, models.FailurePermanent).
		Order("updated_at ASC").
		Find(&episodes).Error; err != nil {
		return nil, fmt.Errorf("listing failed episodes: %w", err)
	}
	return episodes, nil
}

// RequeueFailed moves a transiently failed episode back to pending
func (r *Repository) RequeueFailed(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("id = ? AND status = ? AND failure_kind <> ?", id, models.StatusFailed, models.FailurePermanent).
		Updates(map[string]interface{}{
			"status":          models.StatusPending,
			"processing_step": models.StepNone,
			"failure_kind":    models.FailureNone,
			"updated_at":      r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("requeueing episode %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
