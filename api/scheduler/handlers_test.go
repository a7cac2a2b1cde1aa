package scheduler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
	"github.com/killallgit/podcast-analyzer/internal/services/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) TriggerNow(ctx context.Context) (*scheduler.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scheduler.RefreshResult), args.Error(1)
}

func (m *MockScheduler) Status() scheduler.Status {
	return m.Called().Get(0).(scheduler.Status)
}

type fixedPool workers.Stats

func (p fixedPool) Stats() workers.Stats { return workers.Stats(p) }

func newRouter(deps *types.Dependencies) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router.Group("/scheduler"), deps, func(c *gin.Context) { c.Next() })
	return router
}

func serve(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestPostRefresh(t *testing.T) {
	sched := new(MockScheduler)
	sched.On("TriggerNow", mock.Anything).Return(&scheduler.RefreshResult{Podcasts: 2, NewEpisodes: 5}, nil).Once()
	sched.On("TriggerNow", mock.Anything).Return(nil, scheduler.ErrRefreshInProgress).Once()
	router := newRouter(&types.Dependencies{Scheduler: sched})

	w := serve(router, http.MethodPost, "/scheduler/refresh")
	assert.Equal(t, http.StatusOK, w.Code)
	var result scheduler.RefreshResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 5, result.NewEpisodes)

	w = serve(router, http.MethodPost, "/scheduler/refresh")
	assert.Equal(t, http.StatusConflict, w.Code)
	sched.AssertExpectations(t)
}

func TestGetStatus(t *testing.T) {
	last := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	next := last.Add(4 * time.Hour)
	sched := new(MockScheduler)
	sched.On("Status").Return(scheduler.Status{
		Enabled:  true,
		Interval: "4h0m0s",
		NextRun:  &next,
		LastRun:  &last,
	})
	router := newRouter(&types.Dependencies{
		Scheduler: sched,
		Pool:      fixedPool{Workers: 2, Active: 1, Queued: 3},
	})

	w := serve(router, http.MethodGet, "/scheduler/status")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["enabled"])
	assert.Equal(t, false, resp["refresh_in_progress"])
	assert.Equal(t, "4h0m0s", resp["interval"])
	assert.Equal(t, "2026-01-09T12:00:00Z", resp["next_run"])
	assert.Equal(t, "2026-01-09T08:00:00Z", resp["last_run"])
	pool := resp["pool"].(map[string]interface{})
	assert.Equal(t, float64(3), pool["queued"])
}

func TestUnavailable(t *testing.T) {
	router := newRouter(&types.Dependencies{})
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodGet, "/scheduler/status").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(router, http.MethodPost, "/scheduler/refresh").Code)
}
