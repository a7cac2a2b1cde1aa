package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/database"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	"github.com/killallgit/podcast-analyzer/internal/services/feeds"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	"github.com/killallgit/podcast-analyzer/internal/services/podcasts"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu    sync.Mutex
	feeds map[string]*feeds.Feed
	gate  chan struct{}
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context, feedURL string) (*feeds.Feed, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	feed, ok := f.feeds[feedURL]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("404 Not Found")
	}
	return feed, nil
}

// MockStarter is a mock implementation of Starter
type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) Start(ctx context.Context, id uint, opts analysis.StartOptions) (*analysis.StartResult, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analysis.StartResult), args.Error(1)
}

func feedWith(guids ...string) *feeds.Feed {
	feed := &feeds.Feed{Title: "Signals"}
	for i, g := range guids {
		feed.Entries = append(feed.Entries, feeds.Entry{
			GUID:        g,
			Title:       "Episode " + g,
			AudioURL:    "https://cdn.example.com/" + g + ".mp3",
			PublishedAt: time.Date(2026, 3, 1+i, 6, 0, 0, 0, time.UTC),
		})
	}
	return feed
}

type refreshHarness struct {
	db       *database.DB
	podcasts *podcasts.Repository
	source   *fakeSource
	starter  *MockStarter
	ref      *Refresher
}

func setupRefresher(t *testing.T) *refreshHarness {
	t.Helper()
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	h := &refreshHarness{
		db:       db,
		podcasts: podcasts.NewRepository(db.DB),
		source:   &fakeSource{feeds: map[string]*feeds.Feed{}},
		starter:  &MockStarter{},
	}
	h.ref = NewRefresher(h.podcasts, episodes.NewRepository(db.DB), h.source, h.starter, jobs.NewRegistry(),
		RefresherOptions{Concurrency: 2, FetchTimeout: time.Second})
	return h
}

func (h *refreshHarness) addPodcast(t *testing.T, feedURL string, autoAnalyze bool, feed *feeds.Feed) *models.Podcast {
	t.Helper()
	p := &models.Podcast{FeedURL: feedURL, Title: feedURL, AutoAnalyze: autoAnalyze}
	require.NoError(t, h.db.Create(p).Error)
	if feed != nil {
		h.source.feeds[feedURL] = feed
	}
	return p
}

func (h *refreshHarness) episodeCount(t *testing.T, podcastID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&models.Episode{}).Where("podcast_id = ? AND status = ?", podcastID, models.StatusPending).Count(&n).Error)
	return n
}

func TestRefresh_InsertsOnlyNewEpisodes(t *testing.T) {
	h := setupRefresher(t)
	p := h.addPodcast(t, "https://example.com/a.xml", false, feedWith("g1", "g2", "g3"))

	result, err := h.ref.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Podcasts)
	assert.Equal(t, 3, result.NewEpisodes)
	assert.Zero(t, result.Failed)
	assert.Equal(t, int64(3), h.episodeCount(t, p.ID))

	stored, err := h.podcasts.GetPodcastByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastCheckedAt)
	firstCheck := *stored.LastCheckedAt

	result, err = h.ref.Refresh(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.NewEpisodes)
	assert.Equal(t, int64(3), h.episodeCount(t, p.ID))

	stored, err = h.podcasts.GetPodcastByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.False(t, stored.LastCheckedAt.Before(firstCheck), "checked even without new episodes")

	lastRun, last := h.ref.Last()
	require.NotNil(t, lastRun)
	assert.Same(t, result, last)
	h.starter.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_FailureDoesNotAbortOthers(t *testing.T) {
	h := setupRefresher(t)
	broken := h.addPodcast(t, "https://example.com/broken.xml", false, nil)
	ok := h.addPodcast(t, "https://example.com/ok.xml", false, feedWith("x1", "x2"))

	result, err := h.ref.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Podcasts)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.NewEpisodes)

	for _, pr := range result.Results {
		if pr.PodcastID == broken.ID {
			assert.Contains(t, pr.Error, "404 Not Found")
		} else {
			assert.Empty(t, pr.Error)
		}
	}

	stored, err := h.podcasts.GetPodcastByID(context.Background(), broken.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastCheckedAt)
	assert.Equal(t, int64(2), h.episodeCount(t, ok.ID))
}

func TestRefresh_AutoAnalyzeHandsOffNewEpisodes(t *testing.T) {
	h := setupRefresher(t)
	p := h.addPodcast(t, "https://example.com/auto.xml", true, feedWith("n1", "n2"))
	h.starter.On("Start", mock.Anything, mock.Anything, analysis.StartOptions{}).
		Return(&analysis.StartResult{Outcome: analysis.OutcomeQueued}, nil).Twice()

	result, err := h.ref.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.AutoQueued)
	h.starter.AssertNumberOfCalls(t, "Start", 2)

	h.source.feeds[p.FeedURL] = feedWith("n1", "n2", "n3")
	h.starter.On("Start", mock.Anything, mock.Anything, analysis.StartOptions{}).
		Return(nil, errors.New("pool stopped")).Once()

	result, err = h.ref.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewEpisodes)
	assert.Zero(t, result.AutoQueued)
	assert.Zero(t, result.Failed, "a hand-off failure does not fail the refresh")
	h.starter.AssertNumberOfCalls(t, "Start", 3)
}

func TestRefresh_OverlappingRunsRejected(t *testing.T) {
	h := setupRefresher(t)
	h.addPodcast(t, "https://example.com/slow.xml", false, feedWith("s1"))
	h.source.gate = make(chan struct{})

	done := make(chan *RefreshResult)
	go func() {
		result, _ := h.ref.Refresh(context.Background())
		done <- result
	}()

	require.Eventually(t, h.ref.InProgress, time.Second, 5*time.Millisecond)
	_, err := h.ref.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInProgress)

	close(h.source.gate)
	result := <-done
	require.NotNil(t, result)
	assert.Equal(t, 1, result.NewEpisodes)
	assert.False(t, h.ref.InProgress())
}

func TestRefreshPodcast(t *testing.T) {
	h := setupRefresher(t)
	p := h.addPodcast(t, "https://example.com/one.xml", false, feedWith("o1", "o2"))

	result, err := h.ref.RefreshPodcast(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.NewEpisodes)

	_, err = h.ref.RefreshPodcast(context.Background(), 999)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))

	lease, ok := h.ref.registry.TryAcquire(jobs.KindFeedRefresh, p.ID)
	require.True(t, ok)
	defer lease.Release()
	_, err = h.ref.RefreshPodcast(context.Background(), p.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))
}

func TestScheduler_StatusAndLifecycle(t *testing.T) {
	h := setupRefresher(t)
	h.addPodcast(t, "https://example.com/tick.xml", false, feedWith("t1"))

	s := New(h.ref, Options{Enabled: true, Interval: time.Hour, RunOnStart: true})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		st := s.Status()
		return st.LastRun != nil && st.NextRun != nil && !st.RefreshInProgress
	}, 2*time.Second, 10*time.Millisecond)

	status := s.Status()
	assert.True(t, status.Enabled)
	assert.Equal(t, "1h0m0s", status.Interval)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 1, status.LastResult.NewEpisodes)
	assert.True(t, status.NextRun.After(time.Now()))

	result, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.NewEpisodes)

	s.Stop()
	assert.Nil(t, s.Status().NextRun)
}

func TestScheduler_Disabled(t *testing.T) {
	h := setupRefresher(t)
	s := New(h.ref, Options{Enabled: false})
	require.NoError(t, s.Start(context.Background()))
	s.Stop()

	status := s.Status()
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)
	assert.Equal(t, "4h0m0s", status.Interval)
}
