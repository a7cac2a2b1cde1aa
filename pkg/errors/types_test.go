package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"not found", NotFound("episode", 1), http.StatusNotFound},
		{"already exists", AlreadyExists("podcast", "https://example.com/feed"), http.StatusConflict},
		{"conflict", Conflict("digest", "is still being generated"), http.StatusConflict},
		{"validation", ValidationError("period", "unknown"), http.StatusBadRequest},
		{"missing field", MissingFieldError("feed_url"), http.StatusBadRequest},
		{"external", ExternalServiceError("feed", fmt.Errorf("dns")), http.StatusBadGateway},
		{"in flight", InFlight("digest", 3), http.StatusConflict},
		{"unavailable", Unavailable("image generation", nil), http.StatusServiceUnavailable},
		{"database", DatabaseError("insert", fmt.Errorf("locked")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.GetHTTPCode())
			assert.Equal(t, tt.want, GetHTTPCode(tt.err))
		})
	}
}

func TestWrappedAppErrorIsFound(t *testing.T) {
	base := NotFound("digest", 42)
	wrapped := fmt.Errorf("loading digest: %w", base)

	assert.True(t, Is(wrapped, ErrCodeNotFound))
	assert.Equal(t, ErrCodeNotFound, GetCode(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPCode(wrapped))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, 42, appErr.Details["id"])
}

func TestPlainErrorDefaults(t *testing.T) {
	err := stderrors.New("boom")
	assert.False(t, Is(err, ErrCodeNotFound))
	assert.Equal(t, ErrCodeInternal, GetCode(err))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPCode(err))
}

func TestUnwrapCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrCodeExternalService, "fetching feed")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: connection refused")
}

func TestInFlightDetails(t *testing.T) {
	err := InFlight("podcast feed", uint(7))

	assert.True(t, Is(err, ErrCodeConflict))
	assert.Equal(t, "in_flight", err.Details["state"])
	assert.Equal(t, uint(7), err.Details["id"])
	assert.Contains(t, err.Message, "already being processed")
}

func TestUnavailableKeepsCause(t *testing.T) {
	cause := stderrors.New("queue full")
	err := Unavailable("digest queue", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPCode(err))
	assert.Equal(t, "digest queue", err.Details["service"])
}
