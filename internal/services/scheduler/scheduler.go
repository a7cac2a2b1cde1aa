// Package scheduler keeps podcast feeds fresh: a cron-driven trigger runs
// the Refresher on a fixed interval, and the same refresh can be started
// on demand.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Options configures the periodic trigger
type Options struct {
	Enabled    bool
	Interval   time.Duration
	RunOnStart bool
}

// Status is the externally visible state of the scheduler
type Status struct {
	Enabled           bool           `json:"enabled"`
	RefreshInProgress bool           `json:"refresh_in_progress"`
	Interval          string         `json:"interval"`
	NextRun           *time.Time     `json:"next_run,omitempty"`
	LastRun           *time.Time     `json:"last_run,omitempty"`
	LastResult        *RefreshResult `json:"last_result,omitempty"`
}

type Scheduler struct {
	refresher *Refresher
	opts      Options

	mu      sync.Mutex
	cron    *cron.Cron
	entry   cron.EntryID
	cancel  context.CancelFunc
	started bool
}

func New(refresher *Refresher, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 4 * time.Hour
	}
	return &Scheduler{refresher: refresher, opts: opts}
}

// Start registers the periodic refresh. It is a no-op when the scheduler
// is disabled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opts.Enabled {
		log.Printf("[INFO] Feed refresh scheduler disabled")
		return nil
	}
	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cron.PrintfLogger(log.Default())
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	entry, err := c.AddFunc(fmt.Sprintf("@every %s", s.opts.Interval), func() { s.tick(runCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("scheduling feed refresh: %w", err)
	}

	s.cron = c
	s.entry = entry
	s.cancel = cancel
	s.started = true
	c.Start()

	log.Printf("[INFO] Feed refresh scheduled every %s", s.opts.Interval)
	if s.opts.RunOnStart {
		go s.tick(runCtx)
	}
	return nil
}

// Stop halts the trigger, cancels a running refresh and waits for it
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	c, cancel := s.cron, s.cancel
	s.started = false
	s.mu.Unlock()

	cancel()
	<-c.Stop().Done()
	log.Printf("[INFO] Feed refresh scheduler stopped")
}

// TriggerNow runs a full refresh synchronously
func (s *Scheduler) TriggerNow(ctx context.Context) (*RefreshResult, error) {
	log.Printf("[INFO] Manual feed refresh requested")
	return s.refresher.Refresh(ctx)
}

func (s *Scheduler) Status() Status {
	lastRun, last := s.refresher.Last()
	status := Status{
		Enabled:           s.opts.Enabled,
		RefreshInProgress: s.refresher.InProgress(),
		Interval:          s.opts.Interval.String(),
		LastRun:           lastRun,
		LastResult:        last,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		if next := s.cron.Entry(s.entry).Next; !next.IsZero() {
			status.NextRun = &next
		}
	}
	return status
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.refresher.Refresh(ctx); err != nil {
		if errors.Is(err, ErrRefreshInProgress) {
			log.Printf("[WARN] Skipping scheduled feed refresh: a refresh is already running")
			return
		}
		log.Printf("[ERROR] Scheduled feed refresh failed: %v", err)
	}
}
