package podcasts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	"github.com/killallgit/podcast-analyzer/internal/services/podcasts"
	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPodcastService struct {
	mock.Mock
}

func (m *MockPodcastService) Add(ctx context.Context, feedURL string, autoAnalyze bool) (*podcasts.AddResult, error) {
	args := m.Called(ctx, feedURL, autoAnalyze)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*podcasts.AddResult), args.Error(1)
}

func (m *MockPodcastService) List(ctx context.Context) ([]podcasts.PodcastSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]podcasts.PodcastSummary), args.Error(1)
}

func (m *MockPodcastService) Get(ctx context.Context, id uint) (*models.Podcast, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastService) SetAutoAnalyze(ctx context.Context, id uint, autoAnalyze bool) (*models.Podcast, error) {
	args := m.Called(ctx, id, autoAnalyze)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Podcast), args.Error(1)
}

func (m *MockPodcastService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockEpisodeReader struct {
	mock.Mock
}

func (m *MockEpisodeReader) GetEpisodeByID(ctx context.Context, id uint) (*models.Episode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Episode), args.Error(1)
}

func (m *MockEpisodeReader) ListEpisodes(ctx context.Context, filter episodes.Filter) ([]models.Episode, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Episode), args.Get(1).(int64), args.Error(2)
}

func (m *MockEpisodeReader) GetAnalysis(ctx context.Context, episodeID uint) (*models.EpisodeAnalysis, error) {
	args := m.Called(ctx, episodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EpisodeAnalysis), args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) RefreshPodcast(ctx context.Context, id uint) (*scheduler.PodcastResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.PodcastResult), args.Error(1)
}

func newRouter(deps *types.Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/podcasts"), deps, func(c *gin.Context) { c.Next() })
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPost(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setup          func(m *MockPodcastService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created",
			body: `{"feed_url":"https://feeds.example.com/a.xml","auto_analyze":true}`,
			setup: func(m *MockPodcastService) {
				m.On("Add", mock.Anything, "https://feeds.example.com/a.xml", true).
					Return(&podcasts.AddResult{Podcast: &models.Podcast{ID: 1, Title: "A"}, EpisodesAdded: 3}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing feed_url",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION",
		},
		{
			name:           "relative url",
			body:           `{"feed_url":"feeds/a.xml"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION",
		},
		{
			name: "duplicate",
			body: `{"feed_url":"https://feeds.example.com/a.xml"}`,
			setup: func(m *MockPodcastService) {
				m.On("Add", mock.Anything, "https://feeds.example.com/a.xml", false).
					Return(nil, apperrors.AlreadyExists("podcast", "https://feeds.example.com/a.xml"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "ALREADY_EXISTS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPodcastService)
			if tt.setup != nil {
				tt.setup(svc)
			}
			router := newRouter(&types.Dependencies{Podcasts: svc})

			w := serve(router, http.MethodPost, "/podcasts", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decode(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, resp["error"])
			} else {
				assert.Equal(t, float64(3), resp["episodes_added"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetAll(t *testing.T) {
	svc := new(MockPodcastService)
	svc.On("List", mock.Anything).Return([]podcasts.PodcastSummary{
		{Podcast: models.Podcast{ID: 1, Title: "A"}, EpisodeCount: 4},
		{Podcast: models.Podcast{ID: 2, Title: "B"}, EpisodeCount: 0},
	}, nil)
	router := newRouter(&types.Dependencies{Podcasts: svc})

	w := serve(router, http.MethodGet, "/podcasts", "")

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(2), resp["count"])
}

func TestGetByID(t *testing.T) {
	svc := new(MockPodcastService)
	svc.On("Get", mock.Anything, uint(7)).Return(nil, apperrors.NotFound("podcast", uint(7)))
	router := newRouter(&types.Dependencies{Podcasts: svc})

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/podcasts/7", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/podcasts/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/podcasts/0", "").Code)
}

func TestPatch(t *testing.T) {
	svc := new(MockPodcastService)
	svc.On("SetAutoAnalyze", mock.Anything, uint(3), false).Return(&models.Podcast{ID: 3, AutoAnalyze: false}, nil)
	router := newRouter(&types.Dependencies{Podcasts: svc})

	w := serve(router, http.MethodPatch, "/podcasts/3", `{"auto_analyze":false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode(t, w)["auto_analyze"])

	w = serve(router, http.MethodPatch, "/podcasts/3", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "auto_analyze is required")
	svc.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	svc := new(MockPodcastService)
	svc.On("Delete", mock.Anything, uint(2)).Return(nil)
	svc.On("Delete", mock.Anything, uint(5)).Return(apperrors.Conflict("podcast", "episodes are being analyzed"))
	router := newRouter(&types.Dependencies{Podcasts: svc})

	w := serve(router, http.MethodDelete, "/podcasts/2", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusConflict, serve(router, http.MethodDelete, "/podcasts/5", "").Code)
}

func TestPostRefresh(t *testing.T) {
	ref := new(MockRefresher)
	ref.On("RefreshPodcast", mock.Anything, uint(1)).Return(&scheduler.PodcastResult{PodcastID: 1, NewEpisodes: 2}, nil)
	ref.On("RefreshPodcast", mock.Anything, uint(9)).Return(nil, apperrors.Conflict("podcast", "refresh already running"))

	router := newRouter(&types.Dependencies{Refresher: ref})

	w := serve(router, http.MethodPost, "/podcasts/1/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decode(t, w)["new_episodes"])

	assert.Equal(t, http.StatusConflict, serve(router, http.MethodPost, "/podcasts/9/refresh", "").Code)

	router = newRouter(&types.Dependencies{})
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodPost, "/podcasts/1/refresh", "").Code)
}

func TestGetEpisodes(t *testing.T) {
	svc := new(MockPodcastService)
	svc.On("Get", mock.Anything, uint(4)).Return(&models.Podcast{ID: 4}, nil)
	svc.On("Get", mock.Anything, uint(8)).Return(nil, apperrors.NotFound("podcast", uint(8)))

	eps := new(MockEpisodeReader)
	eps.On("ListEpisodes", mock.Anything, episodes.Filter{
		PodcastIDs: []uint{4},
		Status:     models.StatusCompleted,
		Offset:     0,
		Limit:      10,
	}).Return([]models.Episode{{ID: 11}, {ID: 12}}, int64(30), nil)

	router := newRouter(&types.Dependencies{Podcasts: svc, Episodes: eps})

	w := serve(router, http.MethodGet, "/podcasts/4/episodes?status=completed&limit=10", "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(2), resp["count"])
	assert.Equal(t, float64(30), resp["total"])

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/podcasts/8/episodes", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/podcasts/4/episodes?status=done", "").Code)
	eps.AssertExpectations(t)
}
