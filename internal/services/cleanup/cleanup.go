package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// tempPrefix matches the files the audio downloader creates
const tempPrefix = "episode_"

// Service periodically removes downloaded audio that an interrupted run
// left behind
type Service struct {
	tempDir         string
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new cleanup service
func NewService(tempDir string, maxAge, cleanupInterval time.Duration) *Service {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &Service{
		tempDir:         tempDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one sweep immediately, then one per interval until Stop or
// ctx is cancelled
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.Sweep()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (dir: %s, interval: %v, max age: %v)", s.tempDir, s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service and waits for the loop to exit
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Sweep removes episode temp files older than the maximum age and reports
// how many files and bytes it freed. Subdirectories are not entered.
func (s *Service) Sweep() (removed int, freed int64) {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ERROR] Cleanup could not read %s: %v", s.tempDir, err)
		}
		return 0, 0
	}

	cutoff := s.now().Add(-s.maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), tempPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			log.Printf("[WARN] Failed to remove temp file %s: %v", path, err)
			continue
		}
		log.Printf("[DEBUG] Removed old temp file: %s", path)
		removed++
		freed += info.Size()
	}

	if removed > 0 {
		log.Printf("[INFO] Cleanup removed %d temp files (%s)", removed, humanize.IBytes(uint64(freed)))
	}
	return removed, freed
}
