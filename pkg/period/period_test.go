package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Token
		wantErr bool
	}{
		{"", Week, false},
		{"latest", Latest, false},
		{"DAY", Day, false},
		{" 2weeks ", TwoWeeks, false},
		{"3weeks", ThreeWeeks, false},
		{"month", Month, false},
		{"custom", Custom, false},
		{"fortnight", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPeriod)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Rolling(t *testing.T) {
	now := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		token Token
		back  time.Duration
	}{
		{Latest, 24 * time.Hour},
		{Day, 24 * time.Hour},
		{Week, 7 * 24 * time.Hour},
		{TwoWeeks, 14 * 24 * time.Hour},
		{ThreeWeeks, 21 * 24 * time.Hour},
		{Month, 30 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(string(tt.token), func(t *testing.T) {
			w, err := Resolve(tt.token, now, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, now.Add(-tt.back), w.Start)
			assert.Equal(t, now, w.End)
		})
	}
}

func TestResolve_Custom(t *testing.T) {
	now := time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	w, err := Resolve(Custom, now, &start, &end)
	require.NoError(t, err)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, end, w.End)

	w, err = Resolve(Custom, now, &start, nil)
	require.NoError(t, err)
	assert.Equal(t, now, w.End)

	_, err = Resolve(Custom, now, nil, nil)
	assert.ErrorIs(t, err, ErrMissingStart)

	_, err = Resolve(Custom, now, &end, &start)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestWindow_TitleAndContains(t *testing.T) {
	now := time.Date(2026, 1, 9, 8, 0, 0, 0, time.UTC)
	w, err := ParseAndResolve("week", now, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "Weekly Digest - Jan 02 to Jan 09, 2026", w.Title())
	assert.True(t, w.Contains(now.Add(-time.Hour)))
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(now.Add(time.Minute)))
	assert.Equal(t, "Jan 02, 2026 and Jan 09, 2026", w.Describe())
}
