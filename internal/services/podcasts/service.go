package podcasts

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/feeds"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
)

// EpisodeInserter stores feed entries as episodes
type EpisodeInserter interface {
	InsertIfAbsent(ctx context.Context, episode *models.Episode) (bool, error)
}

type Service struct {
	repository   PodcastRepository
	episodes     EpisodeInserter
	source       feeds.Source
	fetchTimeout time.Duration
	now          func() time.Time
}

func NewService(repository PodcastRepository, episodes EpisodeInserter, source feeds.Source, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Service{
		repository:   repository,
		episodes:     episodes,
		source:       source,
		fetchTimeout: fetchTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// AddResult reports the stored podcast and how many episodes it brought in
type AddResult struct {
	Podcast       *models.Podcast `json:"podcast"`
	EpisodesAdded int             `json:"episodes_added"`
}

// Add subscribes to a feed: it fetches the feed once, stores the podcast
// and inserts every entry as a pending episode.
func (s *Service) Add(ctx context.Context, feedURL string, autoAnalyze bool) (*AddResult, error) {
	feedURL = strings.TrimSpace(feedURL)
	if feedURL == "" {
		return nil, apperrors.MissingFieldError("feed_url")
	}
	if u, err := url.Parse(feedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.ValidationError("feed_url", "must be an absolute http(s) URL")
	}

	if existing, err := s.repository.GetPodcastByFeedURL(ctx, feedURL); err == nil {
		return nil, apperrors.AlreadyExists("podcast", existing.FeedURL).WithDetail("podcast_id", existing.ID)
	} else if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	feed, err := s.source.Fetch(fetchCtx, feedURL)
	if err != nil {
		return nil, apperrors.ExternalServiceError("feed", err)
	}

	checked := s.now()
	podcast := &models.Podcast{
		FeedURL:       feedURL,
		Title:         feed.Title,
		Author:        feed.Author,
		Description:   feed.Description,
		ImageURL:      feed.ImageURL,
		Website:       feed.Website,
		AutoAnalyze:   autoAnalyze,
		LastCheckedAt: &checked,
	}
	if podcast.Title == "" {
		podcast.Title = feedURL
	}
	if err := s.repository.CreatePodcast(ctx, podcast); err != nil {
		return nil, err
	}

	added := 0
	for _, entry := range feed.Entries {
		inserted, err := s.episodes.InsertIfAbsent(ctx, entry.ToEpisode(podcast.ID))
		if err != nil {
			return nil, fmt.Errorf("storing episodes for podcast %d: %w", podcast.ID, err)
		}
		if inserted {
			added++
		}
	}

	log.Printf("[INFO] Added podcast %d (%s) with %d episodes", podcast.ID, podcast.Title, added)
	return &AddResult{Podcast: podcast, EpisodesAdded: added}, nil
}

func (s *Service) List(ctx context.Context) ([]PodcastSummary, error) {
	return s.repository.ListPodcasts(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Podcast, error) {
	return s.repository.GetPodcastByID(ctx, id)
}

// SetAutoAnalyze toggles automatic analysis of newly discovered episodes
func (s *Service) SetAutoAnalyze(ctx context.Context, id uint, autoAnalyze bool) (*models.Podcast, error) {
	if err := s.repository.UpdateAutoAnalyze(ctx, id, autoAnalyze); err != nil {
		return nil, err
	}
	return s.repository.GetPodcastByID(ctx, id)
}

// Delete removes a podcast with its episodes, analyses and digest links.
// It refuses while any of the podcast's episodes is being analyzed.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repository.GetPodcastByID(ctx, id); err != nil {
		return err
	}

	processing, err := s.repository.CountProcessing(ctx, id)
	if err != nil {
		return err
	}
	if processing > 0 {
		return apperrors.Conflict("podcast", fmt.Sprintf("has %d episode(s) being analyzed", processing))
	}

	if err := s.repository.DeletePodcast(ctx, id); err != nil {
		return err
	}
	log.Printf("[INFO] Deleted podcast %d", id)
	return nil
}
