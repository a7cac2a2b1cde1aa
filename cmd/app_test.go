package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/podcast-analyzer/internal/database"
	"github.com/killallgit/podcast-analyzer/internal/models"
	"github.com/killallgit/podcast-analyzer/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Database:   config.DatabaseConfig{Path: ":memory:"},
		Processing: config.ProcessingConfig{Workers: 1, StaleAfter: time.Minute, LockFile: filepath.Join(dir, "analyzer.lock")},
		Download:   config.DownloadConfig{TempDir: dir},
		Whisper:    config.WhisperConfig{Mode: "api"},
		Scheduler:  config.SchedulerConfig{Interval: time.Hour, Concurrency: 2},
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "analyzer.lock")

	first, err := acquireLock(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Unlock() })

	_, err = acquireLock(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another podcast-analyzer process")

	require.NoError(t, first.Unlock())
	second, err := acquireLock(path)
	require.NoError(t, err)
	require.NoError(t, second.Unlock())
}

func TestBuildApplication(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	app, err := buildApplication(cfg, db)
	require.NoError(t, err)

	deps := app.dependencies()
	assert.NotNil(t, deps.Podcasts)
	assert.NotNil(t, deps.Episodes)
	assert.NotNil(t, deps.Analyzer)
	assert.NotNil(t, deps.Batch)
	assert.NotNil(t, deps.Digests)
	assert.NotNil(t, deps.Refresher)
	assert.NotNil(t, deps.Scheduler)
	assert.NotNil(t, deps.Reclaimer)
	assert.Equal(t, Version, deps.Build.Version)

	// both job processors are registered with the pool
	released := 0
	for _, jobType := range []models.JobType{models.JobTypeEpisodeAnalysis, models.JobTypeDigestGeneration} {
		require.NoError(t, app.pool.Submit(models.NewJob(jobType, 1, func() { released++ })))
	}
	app.pool.Stop()
	assert.Equal(t, 2, released, "queued jobs are released on stop")
}

func TestBuildApplication_UnknownWhisperMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Whisper.Mode = "carrier-pigeon"

	_, err := buildApplication(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription")
}

func TestWaitIdle(t *testing.T) {
	cfg := testConfig(t)
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app, err := buildApplication(cfg, db)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, app.waitIdle(ctx, 10*time.Millisecond))

	require.NoError(t, app.pool.Submit(models.NewJob(models.JobTypeEpisodeAnalysis, 1, nil)))
	short, cancelShort := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelShort()
	assert.ErrorIs(t, app.waitIdle(short, 10*time.Millisecond), context.DeadlineExceeded)
	app.pool.Stop()
}
