package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/killallgit/podcast-analyzer/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		hasField bool
	}{
		{name: "validation", err: apperrors.ValidationError("period", "unknown"), status: http.StatusBadRequest, code: "VALIDATION", hasField: true},
		{name: "not found", err: apperrors.NotFound("episode", 7), status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "conflict", err: apperrors.Conflict("digest", "is running"), status: http.StatusConflict, code: "CONFLICT"},
		{name: "external", err: apperrors.ExternalServiceError("feed", errors.New("dns")), status: http.StatusBadGateway, code: "EXTERNAL_SERVICE"},
		{name: "plain error", err: errors.New("boom"), status: http.StatusInternalServerError, code: "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			SendError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "error", resp["status"])
			assert.Equal(t, tt.code, resp["error"])
			if tt.hasField {
				details := resp["details"].(map[string]interface{})
				assert.Equal(t, "period", details["field"])
			}
			assert.NotContains(t, w.Body.String(), "boom", "internal causes are not leaked")
		})
	}
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList(" 1, 2,,3 ")
	require.NoError(t, err)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = ParseIDList("1,abc")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
	_, err = ParseIDList("0")
	assert.Error(t, err)
}

func TestSelectionRequest(t *testing.T) {
	sel, err := SelectionRequest{Period: "custom", StartDate: "2026-01-01", EndDate: "2026-01-08T12:00:00Z", PodcastIDs: []uint{4}}.Selection()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *sel.StartDate)
	assert.Equal(t, time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC), sel.EndDate.UTC())
	assert.Equal(t, []uint{4}, sel.PodcastIDs)

	_, err = SelectionRequest{Period: "custom", StartDate: "Jan 1"}.Selection()
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
}

func TestParsePaging(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x?limit=500&offset=10", nil)
	limit, offset, ok := ParsePaging(c, 20, 100)
	require.True(t, ok)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 10, offset)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x?limit=-1", nil)
	_, _, ok = ParsePaging(c, 20, 100)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
