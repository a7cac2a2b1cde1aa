package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/killallgit/podcast-analyzer/api/types"
	"github.com/killallgit/podcast-analyzer/internal/database"
	"github.com/killallgit/podcast-analyzer/internal/services/analysis"
	"github.com/killallgit/podcast-analyzer/internal/services/batch"
	"github.com/killallgit/podcast-analyzer/internal/services/cleanup"
	"github.com/killallgit/podcast-analyzer/internal/services/digests"
	"github.com/killallgit/podcast-analyzer/internal/services/episodes"
	"github.com/killallgit/podcast-analyzer/internal/services/feeds"
	"github.com/killallgit/podcast-analyzer/internal/services/imagegen"
	"github.com/killallgit/podcast-analyzer/internal/services/jobs"
	"github.com/killallgit/podcast-analyzer/internal/services/llm"
	"github.com/killallgit/podcast-analyzer/internal/services/podcasts"
	"github.com/killallgit/podcast-analyzer/internal/services/reclaimer"
	"github.com/killallgit/podcast-analyzer/internal/services/scheduler"
	"github.com/killallgit/podcast-analyzer/internal/services/transcription"
	"github.com/killallgit/podcast-analyzer/internal/services/workers"
	"github.com/killallgit/podcast-analyzer/pkg/config"
	"github.com/killallgit/podcast-analyzer/pkg/download"
	"github.com/killallgit/podcast-analyzer/pkg/transcript"
)

// application holds every long-lived collaborator of one process
type application struct {
	cfg       *config.Config
	db        *database.DB
	lock      *flock.Flock
	registry  *jobs.Registry
	pool      *workers.WorkerPool
	podcasts  *podcasts.Service
	episodes  *episodes.Repository
	analyzer  *analysis.Analyzer
	batch     *batch.Orchestrator
	digests   *digests.Orchestrator
	refresher *scheduler.Refresher
	scheduler *scheduler.Scheduler
	reclaimer *reclaimer.Reclaimer
	cleanup   *cleanup.Service
}

// acquireLock takes the single-orchestrator lock. Job ownership lives in
// process memory, so two processes sharing a database would reclaim each
// other's work.
func acquireLock(path string) (*flock.Flock, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("another podcast-analyzer process holds %s", path)
	}
	return lock, nil
}

func openDatabase(cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Options{
		Path:           cfg.Path,
		Verbose:        cfg.Verbose,
		EnableWAL:      cfg.EnableWAL,
		ForeignKeys:    cfg.EnableForeignKeys,
		BusyTimeout:    cfg.BusyTimeout,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newApplication locks, opens the database and builds every collaborator.
// Nothing is started.
func newApplication(cfg *config.Config) (*application, error) {
	lock, err := acquireLock(cfg.Processing.LockFile)
	if err != nil {
		return nil, err
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	app, err := buildApplication(cfg, db)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	app.lock = lock
	return app, nil
}

func buildApplication(cfg *config.Config, db *database.DB) (*application, error) {
	transcriber, err := transcription.New(cfg.Whisper, cfg.Timeouts.Transcription)
	if err != nil {
		return nil, fmt.Errorf("failed to configure transcription: %w", err)
	}

	registry := jobs.NewRegistry()
	pool := workers.NewWorkerPool(cfg.Processing.Workers)

	source := feeds.NewClient(feeds.Options{
		Timeout:   cfg.Timeouts.Feed,
		UserAgent: cfg.Download.UserAgent,
	})
	generator := llm.NewClient(llm.Config{
		BaseURL:           cfg.LLM.BaseURL,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
		Timeout:           cfg.Timeouts.Generation,
	})

	var images imagegen.Generator
	if cfg.ImageGen.Enabled {
		images = imagegen.NewClient(imagegen.Config{
			APIURL:      cfg.ImageGen.APIURL,
			APIKey:      cfg.ImageGen.APIKey,
			Model:       cfg.ImageGen.Model,
			AspectRatio: cfg.ImageGen.AspectRatio,
			Timeout:     cfg.Timeouts.Image,
		})
	}

	podcastRepo := podcasts.NewRepository(db.DB)
	episodeRepo := episodes.NewRepository(db.DB)
	digestRepo := digests.NewRepository(db.DB)

	downloader := download.NewDownloader(download.DownloadOptions{
		TempDir:       cfg.Download.TempDir,
		MaxSize:       cfg.Download.MaxSize,
		Timeout:       cfg.Timeouts.Download,
		UserAgent:     cfg.Download.UserAgent,
		ValidateAudio: true,
	})
	fetchOpts := transcript.DefaultFetchOptions()
	fetchOpts.UserAgent = cfg.Download.UserAgent
	chunkOpts := transcript.DefaultChunkOptions()
	chunkOpts.MaxSize = cfg.LLM.ChunkSize
	chunkOpts.Overlap = cfg.LLM.ChunkOverlap

	extractor := analysis.NewExtractor(generator, transcript.NewChunker(chunkOpts), analysis.ExtractorOptions{
		MaxTokens:   cfg.LLM.MaxTokens,
		CallTimeout: cfg.Timeouts.Generation,
	})
	analyzer := analysis.NewAnalyzer(
		episodeRepo,
		downloader,
		transcript.NewFetcher(fetchOpts),
		transcriber,
		extractor,
		registry,
		pool,
		analysis.Options{
			DownloadTimeout:      cfg.Timeouts.Download,
			TranscriptionTimeout: cfg.Timeouts.Transcription,
			AnalysisTimeout:      cfg.Timeouts.Generation,
			PreferPublished:      cfg.Transcripts.PreferPublished,
		},
	)

	digestOrchestrator := digests.NewOrchestrator(
		digestRepo,
		episodeRepo,
		podcastRepo,
		digests.NewSynthesizer(generator, cfg.LLM.MaxTokens, cfg.Timeouts.Generation),
		images,
		digests.NewStylePicker(digests.Styles, 0),
		registry,
		pool,
		digests.Options{
			ImagesEnabled: cfg.ImageGen.Enabled,
			ImageTimeout:  cfg.Timeouts.Image,
		},
	)

	pool.RegisterProcessor(analyzer)
	pool.RegisterProcessor(digestOrchestrator)

	refresher := scheduler.NewRefresher(podcastRepo, episodeRepo, source, analyzer, registry, scheduler.RefresherOptions{
		Concurrency:  cfg.Scheduler.Concurrency,
		FetchTimeout: cfg.Timeouts.Feed,
	})

	return &application{
		cfg:       cfg,
		db:        db,
		registry:  registry,
		pool:      pool,
		podcasts:  podcasts.NewService(podcastRepo, episodeRepo, source, cfg.Timeouts.Feed),
		episodes:  episodeRepo,
		analyzer:  analyzer,
		batch:     batch.NewOrchestrator(episodeRepo, podcastRepo, analyzer),
		digests:   digestOrchestrator,
		refresher: refresher,
		scheduler: scheduler.New(refresher, scheduler.Options{
			Enabled:    cfg.Scheduler.Enabled,
			Interval:   cfg.Scheduler.Interval,
			RunOnStart: cfg.Scheduler.RunOnStart,
		}),
		reclaimer: reclaimer.New(episodeRepo, digestRepo, registry, cfg.Processing.StaleAfter),
		cleanup:   cleanup.NewService(cfg.Download.TempDir, cfg.Storage.MaxTempAge, cfg.Storage.CleanupInterval),
	}, nil
}

// dependencies exposes the collaborators to the HTTP handlers
func (a *application) dependencies() *types.Dependencies {
	return &types.Dependencies{
		DB:        a.db,
		Podcasts:  a.podcasts,
		Episodes:  a.episodes,
		Analyzer:  a.analyzer,
		Batch:     a.batch,
		Digests:   a.digests,
		Refresher: a.refresher,
		Scheduler: a.scheduler,
		Reclaimer: a.reclaimer,
		Pool:      a.pool,
		Jobs:      a.registry,
		Build: types.BuildInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildDate: BuildTime,
		},
	}
}

// waitIdle blocks until the pool has no queued or running jobs
func (a *application) waitIdle(ctx context.Context, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		stats := a.pool.Stats()
		if stats.Queued == 0 && stats.Active == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// close releases the database and the process lock
func (a *application) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[WARN] Failed to close database: %v", err)
		}
	}
	if a.lock != nil {
		if err := a.lock.Unlock(); err != nil {
			log.Printf("[WARN] Failed to release lock: %v", err)
		}
	}
}
