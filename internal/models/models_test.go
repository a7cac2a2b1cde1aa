package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList_ValueAndScan(t *testing.T) {
	v, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	var fromText StringList
	require.NoError(t, fromText.Scan(`["a","b"]`))
	assert.Equal(t, StringList{"a", "b"}, fromText)

	var fromBytes StringList
	require.NoError(t, fromBytes.Scan([]byte(`["c"]`)))
	assert.Equal(t, StringList{"c"}, fromBytes)

	var fromNull StringList
	require.NoError(t, fromNull.Scan(nil))
	assert.Nil(t, fromNull)

	assert.Error(t, fromNull.Scan(42))
}

func TestTrendList_Scan(t *testing.T) {
	var trends TrendList
	require.NoError(t, trends.Scan(`[{"trend":"AI agents","evidence":"3 episodes","direction":"rising"}]`))
	require.Len(t, trends, 1)
	assert.Equal(t, "rising", trends[0].Direction)
}

func TestFailureKindOf(t *testing.T) {
	permanent := NewPermanentError(ErrorTypeDownload, "size_exceeded", "Audio file too large", nil)
	transient := NewJobError(ErrorTypeGeneration, "llm", "LLM unavailable", nil)

	assert.Equal(t, FailurePermanent, FailureKindOf(permanent))
	assert.Equal(t, FailurePermanent, FailureKindOf(fmt.Errorf("step: %w", permanent)))
	assert.Equal(t, FailureTransient, FailureKindOf(transient))
	assert.Equal(t, FailureTransient, FailureKindOf(errors.New("boom")))
}

func TestNewJob(t *testing.T) {
	released := false
	job := NewJob(JobTypeEpisodeAnalysis, 7, func() { released = true })

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, uint(7), job.EntityID)
	assert.False(t, job.EnqueuedAt.IsZero())

	job.Release()
	assert.True(t, released)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusFailed.Valid())
	assert.False(t, Status("running").Valid())
}
