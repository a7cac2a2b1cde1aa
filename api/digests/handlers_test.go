package digests

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
	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	"github.com/killallgit/podcast-analyzer/internal/services/digests"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDigestService struct {
	mock.Mock
}

func (m *MockDigestService) Create(ctx context.Context, req digests.CreateRequest) (*models.Digest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Digest), args.Error(1)
}

func (m *MockDigestService) Get(ctx context.Context, id uint) (*models.Digest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Digest), args.Error(1)
}

func (m *MockDigestService) List(ctx context.Context, limit, offset int) ([]models.Digest, int64, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Digest), args.Get(1).(int64), args.Error(2)
}

func (m *MockDigestService) RegenerateImage(ctx context.Context, id uint) (*models.Digest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Digest), args.Error(1)
}

func (m *MockDigestService) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func newRouter(deps *types.Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/digests"), deps)
	return router
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
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
	svc := new(MockDigestService)
	svc.On("Create", mock.Anything, digests.CreateRequest{
		Selection: batch.Selection{Period: "week", PodcastIDs: []uint{3}},
		Title:     "Rates roundup",
	}).Return(&models.Digest{ID: 1, Title: "Rates roundup", Status: models.StatusPending}, nil)
	svc.On("Create", mock.Anything, digests.CreateRequest{Selection: batch.Selection{Period: "decade"}}).
		Return(nil, apperrors.ValidationError("period", "unknown period"))
	router := newRouter(&types.Dependencies{Digests: svc})

	w := serve(router, http.MethodPost, "/digests", `{"period":"week","podcast_ids":[3],"title":"Rates roundup"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "pending", resp["status"])
	assert.Equal(t, "Rates roundup", resp["title"])

	w = serve(router, http.MethodPost, "/digests", `{"period":"decade"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestGetAll(t *testing.T) {
	svc := new(MockDigestService)
	svc.On("List", mock.Anything, 20, 0).Return([]models.Digest{{ID: 2}, {ID: 1}}, int64(2), nil)
	svc.On("List", mock.Anything, 100, 40).Return([]models.Digest{}, int64(2), nil)
	router := newRouter(&types.Dependencies{Digests: svc})

	resp := decode(t, serve(router, http.MethodGet, "/digests", ""))
	assert.Equal(t, float64(2), resp["count"])
	assert.Equal(t, float64(20), resp["limit"])

	resp = decode(t, serve(router, http.MethodGet, "/digests?limit=1000&offset=40", ""))
	assert.Equal(t, float64(0), resp["count"])
	assert.Equal(t, float64(100), resp["limit"])
	svc.AssertExpectations(t)
}

func TestGetByID(t *testing.T) {
	svc := new(MockDigestService)
	svc.On("Get", mock.Anything, uint(4)).Return(&models.Digest{
		ID:               4,
		Status:           models.StatusProcessing,
		ProcessingStep:   models.DigestStepGeneratingContent,
		ProcessingDetail: "Synthesizing 3 episodes",
	}, nil)
	router := newRouter(&types.Dependencies{Digests: svc})

	resp := decode(t, serve(router, http.MethodGet, "/digests/4", ""))
	assert.Equal(t, "generating_content", resp["processing_step"])
	assert.Equal(t, "Synthesizing 3 episodes", resp["processing_detail"])
}

func TestPostRegenerateImage(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "regenerated", expectedStatus: http.StatusOK},
		{name: "still running", err: apperrors.Conflict("digest", "is still being generated"), expectedStatus: http.StatusConflict},
		{name: "disabled", err: apperrors.Unavailable("image generation", nil), expectedStatus: http.StatusServiceUnavailable},
		{name: "provider failed", err: apperrors.ExternalServiceError("image generation", assert.AnError), expectedStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDigestService)
			if tt.err != nil {
				svc.On("RegenerateImage", mock.Anything, uint(6)).Return(nil, tt.err)
			} else {
				svc.On("RegenerateImage", mock.Anything, uint(6)).Return(&models.Digest{ID: 6, ImageArtist: "Hokusai"}, nil)
			}
			router := newRouter(&types.Dependencies{Digests: svc})

			w := serve(router, http.MethodPost, "/digests/6/regenerate-image", "")
			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestDelete(t *testing.T) {
	svc := new(MockDigestService)
	svc.On("Delete", mock.Anything, uint(1)).Return(nil)
	svc.On("Delete", mock.Anything, uint(2)).Return(apperrors.Conflict("digest", "is still being generated"))
	svc.On("Delete", mock.Anything, uint(3)).Return(apperrors.NotFound("digest", uint(3)))
	router := newRouter(&types.Dependencies{Digests: svc})

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/digests/1", "").Code)
	assert.Equal(t, http.StatusConflict, serve(router, http.MethodDelete, "/digests/2", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/digests/3", "").Code)
}

func TestUnavailable(t *testing.T) {
	router := newRouter(&types.Dependencies{})
	w := serve(router, http.MethodGet, "/digests", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SERVICE_DOWN", decode(t, w)["error"])
}
