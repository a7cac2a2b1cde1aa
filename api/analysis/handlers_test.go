package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBatch struct {
	mock.Mock
}

func (m *MockBatch) Analyze(ctx context.Context, sel batch.Selection) (*batch.Result, error) {
	args := m.Called(ctx, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Result), args.Error(1)
}

func (m *MockBatch) Progress(ctx context.Context, ids []uint) (*batch.Progress, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*batch.Progress), args.Error(1)
}

type MockReclaimer struct {
	mock.Mock
}

func (m *MockReclaimer) Run(ctx context.Context, opts reclaimer.Options) (*reclaimer.Result, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reclaimer.Result), args.Error(1)
}

func newRouter(deps *types.Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/analysis"), deps)
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

func TestPostBatch(t *testing.T) {
	svc := new(MockBatch)
	svc.On("Analyze", mock.Anything, batch.Selection{Period: "week", PodcastIDs: []uint{1, 2}}).
		Return(&batch.Result{TotalMatched: 5, AlreadyCompleted: 2, Queued: 3, InFlight: []uint{7, 8, 9}}, nil)
	svc.On("Analyze", mock.Anything, batch.Selection{Period: "yearly"}).
		Return(nil, apperrors.ValidationError("period", "unknown period"))
	router := newRouter(&types.Dependencies{Batch: svc})

	w := serve(router, http.MethodPost, "/analysis/batch", `{"period":"week","podcast_ids":[1,2]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["queued"])
	assert.Equal(t, float64(2), resp["already_completed"])
	assert.Len(t, resp["episode_ids"], 3)

	w = serve(router, http.MethodPost, "/analysis/batch", `{"period":"yearly"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/analysis/batch", `{"period":"custom","start_date":"yesterday"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start_date", decode(t, w)["details"].(map[string]interface{})["field"])
	svc.AssertExpectations(t)
}

func TestPostBatch_CustomDates(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := new(MockBatch)
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(sel batch.Selection) bool {
		return sel.Period == "custom" && sel.StartDate != nil && sel.StartDate.Equal(start) && sel.EndDate == nil
	})).Return(&batch.Result{}, nil)
	router := newRouter(&types.Dependencies{Batch: svc})

	w := serve(router, http.MethodPost, "/analysis/batch", `{"period":"custom","start_date":"2026-01-01"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGetProgress(t *testing.T) {
	svc := new(MockBatch)
	svc.On("Progress", mock.Anything, []uint{1, 2, 3}).
		Return(&batch.Progress{Total: 3, Completed: 1, Processing: 2, Percent: 33.3}, nil)
	svc.On("Progress", mock.Anything, []uint(nil)).
		Return(&batch.Progress{Total: 0, Done: true}, nil)
	router := newRouter(&types.Dependencies{Batch: svc})

	resp := decode(t, serve(router, http.MethodGet, "/analysis/progress?episode_ids=1,2,3", ""))
	assert.Equal(t, float64(3), resp["total"])
	assert.Equal(t, 33.3, resp["percent_complete"])

	resp = decode(t, serve(router, http.MethodGet, "/analysis/progress", ""))
	assert.Equal(t, true, resp["done"])

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/analysis/progress?episode_ids=a", "").Code)
	svc.AssertExpectations(t)
}

func TestPostResetStuck(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedOpts   *reclaimer.Options
		expectedStatus int
	}{
		{name: "empty body uses defaults", body: "", expectedOpts: &reclaimer.Options{}, expectedStatus: http.StatusOK},
		{name: "overrides", body: `{"include_failed":true,"stale_after":"2m"}`, expectedOpts: &reclaimer.Options{IncludeFailed: true, StaleAfter: 2 * time.Minute}, expectedStatus: http.StatusOK},
		{name: "bad duration", body: `{"stale_after":"soon"}`, expectedStatus: http.StatusBadRequest},
		{name: "negative duration", body: `{"stale_after":"-5m"}`, expectedStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"include_failed":`, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := new(MockReclaimer)
			if tt.expectedOpts != nil {
				rec.On("Run", mock.Anything, *tt.expectedOpts).
					Return(&reclaimer.Result{StaleAfter: "30m0s", EpisodesReset: []uint{4}}, nil)
			}
			router := newRouter(&types.Dependencies{Reclaimer: rec})

			w := serve(router, http.MethodPost, "/analysis/reset-stuck", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedOpts != nil {
				assert.Len(t, decode(t, w)["episodes_reset"], 1)
			}
			rec.AssertExpectations(t)
		})
	}
}
