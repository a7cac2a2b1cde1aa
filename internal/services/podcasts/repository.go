package podcasts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

var _ PodcastRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePodcast creates a new podcast
func (r *Repository) CreatePodcast(ctx context.Context, podcast *models.Podcast) error {
	if err := r.db.WithContext(ctx).Create(podcast).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.AlreadyExists("podcast", podcast.FeedURL)
		}
		return fmt.Errorf("creating podcast: %w", err)
	}
	return nil
}

// GetPodcastByID retrieves a podcast by its database ID
func (r *Repository) GetPodcastByID(ctx context.Context, id uint) (*models.Podcast, error) {
	var podcast models.Podcast
	if err := r.db.WithContext(ctx).First(&podcast, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("podcast", id)
		}
		return nil, fmt.Errorf("getting podcast: %w", err)
	}
	return &podcast, nil
}

// GetPodcastByFeedURL retrieves a podcast by feed URL
func (r *Repository) GetPodcastByFeedURL(ctx context.Context, feedURL string) (*models.Podcast, error) {
	var podcast models.Podcast
	if err := r.db.WithContext(ctx).
		Where("feed_url = ?", feedURL).
		First(&podcast).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("podcast", feedURL)
		}
		return nil, fmt.Errorf("getting podcast by feed url: %w", err)
	}
	return &podcast, nil
}

// ListPodcasts returns every podcast with its episode count, newest first
func (r *Repository) ListPodcasts(ctx context.Context) ([]PodcastSummary, error) {
	var podcasts []models.Podcast
	if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&podcasts).Error; err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}

	type countRow struct {
		PodcastID uint
		Count     int64
	}
	var counts []countRow
	if err := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Select("podcast_id, COUNT(*) AS count").
		Group("podcast_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("counting episodes: %w", err)
	}

	byPodcast := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byPodcast[c.PodcastID] = c.Count
	}

	summaries := make([]PodcastSummary, len(podcasts))
	for i, p := range podcasts {
		summaries[i] = PodcastSummary{Podcast: p, EpisodeCount: byPodcast[p.ID]}
	}
	return summaries, nil
}

// ListAll returns every podcast ordered by id
func (r *Repository) ListAll(ctx context.Context) ([]models.Podcast, error) {
	var podcasts []models.Podcast
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&podcasts).Error; err != nil {
		return nil, fmt.Errorf("listing podcasts: %w", err)
	}
	return podcasts, nil
}

// ExistingIDs returns the subset of ids that refer to stored podcasts
func (r *Repository) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Podcast{}).
		Where("id IN ?", ids).
		Order("id ASC").
		Pluck("id", &found).Error; err != nil {
		return nil, fmt.Errorf("checking podcast ids: %w", err)
	}
	return found, nil
}

func (r *Repository) UpdateAutoAnalyze(ctx context.Context, id uint, autoAnalyze bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.Podcast{}).
		Where("id = ?", id).
		Update("auto_analyze", autoAnalyze)
	if result.Error != nil {
		return fmt.Errorf("updating podcast: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("podcast", id)
	}
	return nil
}

// MarkChecked records a successful feed fetch
func (r *Repository) MarkChecked(ctx context.Context, id uint, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Podcast{}).
		Where("id = ?", id).
		Update("last_checked_at", at.UTC()).Error; err != nil {
		return fmt.Errorf("marking podcast %d checked: %w", id, err)
	}
	return nil
}

// CountProcessing counts the podcast's episodes that are being analyzed
func (r *Repository) CountProcessing(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Episode{}).
		Where("podcast_id = ? AND status = ?", id, models.StatusProcessing).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting processing episodes: %w", err)
	}
	return count, nil
}

// DeletePodcast removes a podcast and everything hanging off its episodes
// in a single transaction.
func (r *Repository) DeletePodcast(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		episodeIDs := tx.Model(&models.Episode{}).Select("id").Where("podcast_id = ?", id)

		if err := tx.Where("episode_id IN (?)", episodeIDs).Delete(&models.EpisodeAnalysis{}).Error; err != nil {
			return fmt.Errorf("deleting analyses: %w", err)
		}
		if err := tx.Where("episode_id IN (?)", episodeIDs).Delete(&models.DigestEpisode{}).Error; err != nil {
			return fmt.Errorf("deleting digest links: %w", err)
		}
		if err := tx.Where("podcast_id = ?", id).Delete(&models.Episode{}).Error; err != nil {
			return fmt.Errorf("deleting episodes: %w", err)
		}

		result := tx.Delete(&models.Podcast{}, id)
		if result.Error != nil {
			return fmt.Errorf("deleting podcast: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.NotFound("podcast", id)
		}
		return nil
	})
}
