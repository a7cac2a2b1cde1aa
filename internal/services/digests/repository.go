package digests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"gorm.io/gorm"
)

// ErrNotProcessing is returned when a lifecycle write finds the digest no
// longer in processing
var ErrNotProcessing = errors.New("digest is not processing")

// ErrNotCompleted is returned when artwork is replaced on a digest that is
// not completed
var ErrNotCompleted = errors.New("digest is not completed")

// Artwork is the image state of a digest
type Artwork struct {
	URL    string
	Prompt string
	Artist string
	Scene  string
	Error  string
}

// DigestRepository defines the data access interface for digests. Status,
// step and detail always change in one UPDATE.
type DigestRepository interface {
	Create(ctx context.Context, digest *models.Digest) error
	Get(ctx context.Context, id uint) (*models.Digest, error)
	List(ctx context.Context, limit, offset int) ([]models.Digest, int64, error)
	Delete(ctx context.Context, id uint) error

	Claim(ctx context.Context, id uint, detail string) (bool, error)
	SetStep(ctx context.Context, id uint, step models.DigestStep, detail string) (bool, error)
	LinkEpisodes(ctx context.Context, id uint, episodeIDs []uint) error
	Complete(ctx context.Context, id uint, content *Content, art Artwork, episodeCount int) error
	Fail(ctx context.Context, id uint, cause string) error
	ReplaceArtwork(ctx context.Context, id uint, art Artwork) error

	ListStale(ctx context.Context, cutoff time.Time) ([]models.Digest, error)
	ReclaimStale(ctx context.Context, id uint, cutoff time.Time, cause string) (bool, error)
}

type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ DigestRepository = (*Repository)(nil)

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

func (r *Repository) Create(ctx context.Context, digest *models.Digest) error {
	if digest.Status == "" {
		digest.Status = models.StatusPending
	}
	if err := r.db.WithContext(ctx).Create(digest).Error; err != nil {
		return apperrors.DatabaseError("creating digest", err)
	}
	return nil
}

// Get loads a digest with its linked episodes in publish order
func (r *Repository) Get(ctx context.Context, id uint) (*models.Digest, error) {
	var digest models.Digest
	err := r.db.WithContext(ctx).
		Preload("EpisodeLinks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("EpisodeLinks.Episode", func(db *gorm.DB) *gorm.DB {
			return db.Omit("transcript")
		}).
		Preload("EpisodeLinks.Episode.Podcast").
		First(&digest, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("digest", id)
		}
		return nil, fmt.Errorf("getting digest: %w", err)
	}
	return &digest, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]models.Digest, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Digest{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting digests: %w", err)
	}

	var digests []models.Digest
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&digests).Error; err != nil {
		return nil, 0, fmt.Errorf("listing digests: %w", err)
	}
	return digests, total, nil
}

// Delete removes a digest and its episode links
func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("digest_id = ?", id).Delete(&models.DigestEpisode{}).Error; err != nil {
			return fmt.Errorf("removing digest links: %w", err)
		}
		result := tx.Delete(&models.Digest{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting digest: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("digest", id)
		}
		return nil
	})
}

// Claim moves a pending digest into processing
func (r *Repository) Claim(ctx context.Context, id uint, detail string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":            models.StatusProcessing,
			"processing_step":   models.DigestStepCollectingEpisodes,
			"processing_detail": detail,
			"error_message":     "",
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("claiming digest %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) SetStep(ctx context.Context, id uint, step models.DigestStep, detail string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"processing_step":   step,
			"processing_detail": detail,
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("setting step %s on digest %d: %w", step, id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// LinkEpisodes replaces the digest's episode links. Position follows the
// order of episodeIDs.
func (r *Repository) LinkEpisodes(ctx context.Context, id uint, episodeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("digest_id = ?", id).Delete(&models.DigestEpisode{}).Error; err != nil {
			return fmt.Errorf("clearing digest links: %w", err)
		}
		if len(episodeIDs) == 0 {
			return nil
		}
		links := make([]models.DigestEpisode, len(episodeIDs))
		for i, episodeID := range episodeIDs {
			links[i] = models.DigestEpisode{DigestID: id, EpisodeID: episodeID, Position: i}
		}
		if err := tx.Create(&links).Error; err != nil {
			return fmt.Errorf("linking digest episodes: %w", err)
		}
		return tx.Model(&models.Digest{}).Where("id = ?", id).
			Updates(map[string]interface{}{"episode_count": len(episodeIDs), "updated_at": r.now()}).Error
	})
}

// Complete stores the generated content and artwork and marks the digest
// completed
func (r *Repository) Complete(ctx context.Context, id uint, content *Content, art Artwork, episodeCount int) error {
	completed := r.now()
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":            models.StatusCompleted,
			"processing_step":   models.DigestStepNone,
			"processing_detail": "",
			"error_message":     "",
			"summary":           content.Summary,
			"common_themes":     models.StringList(content.CommonThemes),
			"trends":            models.TrendList(content.Trends),
			"predictions":       models.StringList(content.Predictions),
			"recommendations":   models.StringList(content.Recommendations),
			"key_advice":        models.StringList(content.KeyAdvice),
			"action_items":      models.StringList(content.ActionItems),
			"image_url":         art.URL,
			"image_prompt":      art.Prompt,
			"image_artist":      art.Artist,
			"image_scene":       art.Scene,
			"image_error":       art.Error,
			"episode_count":     episodeCount,
			"completed_at":      completed,
			"updated_at":        completed,
		})
	if result.Error != nil {
		return fmt.Errorf("completing digest %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotProcessing
	}
	return nil
}

// Fail records a failed run. Episode links collected so far are kept.
func (r *Repository) Fail(ctx context.Context, id uint, cause string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ?", id, models.StatusProcessing).
		Updates(map[string]interface{}{
			"status":            models.StatusFailed,
			"processing_step":   models.DigestStepNone,
			"processing_detail": "",
			"error_message":     cause,
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failing digest %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotProcessing
	}
	return nil
}

// ReplaceArtwork swaps the image of a completed digest, leaving every
// other field alone
func (r *Repository) ReplaceArtwork(ctx context.Context, id uint, art Artwork) error {
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ?", id, models.StatusCompleted).
		Updates(map[string]interface{}{
			"image_url":    art.URL,
			"image_prompt": art.Prompt,
			"image_artist": art.Artist,
			"image_scene":  art.Scene,
			"image_error":  art.Error,
			"updated_at":   r.now(),
		})
	if result.Error != nil {
		return fmt.Errorf("replacing artwork of digest %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotCompleted
	}
	return nil
}

// ListStale returns processing digests last touched before cutoff
func (r *Repository) ListStale(ctx context.Context, cutoff time.Time) ([]models.Digest, error) {
	var digests []models.Digest
	if err := r.db.WithContext(ctx).
		Select("id", "title", "processing_step", "updated_at").
		Where("status = ? AND updated_at < ?", models.StatusProcessing, cutoff.UTC()).
		Order("updated_at ASC").
		Find(&digests).Error; err != nil {
		return nil, fmt.Errorf("listing stale digests: %w", err)
	}
	return digests, nil
}

// ReclaimStale fails a stale processing digest, re-checking the cutoff
func (r *Repository) ReclaimStale(ctx context.Context, id uint, cutoff time.Time, cause string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Digest{}).
		Where("id = ? AND status = ? AND updated_at < ?", id, models.StatusProcessing, cutoff.UTC()).
		Updates(map[string]interface{}{
			"status":            models.StatusFailed,
			"processing_step":   models.DigestStepNone,
			"processing_detail": "",
			"error_message":     cause,
			"updated_at":        r.now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("reclaiming digest %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}
