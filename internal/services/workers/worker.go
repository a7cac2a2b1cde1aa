package workers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/killallgit/podcast-analyzer/internal/models"
)

var (
	// ErrPoolStopped is returned when submitting to a stopped pool
	ErrPoolStopped = errors.New("worker pool is stopped")
	// ErrNoProcessor is returned when no registered processor accepts a job type
	ErrNoProcessor = errors.New("no processor registered for job type")
)

// JobProcessor defines the interface for processing different job types
type JobProcessor interface {
	ProcessJob(ctx context.Context, job *models.Job) error
	CanProcess(jobType models.JobType) bool
}

// Stats is a point-in-time view of the pool
type Stats struct {
	Workers   int    `json:"workers"`
	Queued    int    `json:"queued"`
	Active    int    `json:"active"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

// WorkerPool runs submitted jobs on a fixed number of workers. Jobs beyond
// the worker count wait in an in-memory FIFO queue.
type WorkerPool struct {
	mu         sync.Mutex
	cond       *sync.Cond
	queue      []*models.Job
	processors []JobProcessor
	size       int
	active     int
	processed  uint64
	failed     uint64
	started    bool
	stopped    bool
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewWorkerPool creates a pool with workerCount workers
func NewWorkerPool(workerCount int) *WorkerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	pool := &WorkerPool{size: workerCount}
	pool.cond = sync.NewCond(&pool.mu)
	return pool
}

// RegisterProcessor registers a processor with all workers
func (p *WorkerPool) RegisterProcessor(processor JobProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors = append(p.processors, processor)
}

// Start starts all workers. Jobs run under a context derived from ctx.
func (p *WorkerPool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if p.started {
		return fmt.Errorf("worker pool already started")
	}

	log.Printf("[INFO] Starting worker pool with %d workers", p.size)

	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(workerCtx, fmt.Sprintf("worker-%d", i+1))
	}

	p.started = true
	return nil
}

// Submit queues a job. The job's Release hook runs exactly once when the
// job finishes, or when it is dropped by Stop.
func (p *WorkerPool) Submit(job *models.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}
	if p.processorFor(job.Type) == nil {
		return fmt.Errorf("%w: %s", ErrNoProcessor, job.Type)
	}

	p.queue = append(p.queue, job)
	p.cond.Signal()
	log.Printf("[DEBUG] Queued %s job %s for entity %d (%d waiting)", job.Type, job.ID, job.EntityID, len(p.queue))
	return nil
}

// Stop cancels running jobs, waits for workers to exit and releases any
// job that never started.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	dropped := p.queue
	p.queue = nil
	if p.cancel != nil {
		p.cancel()
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	log.Printf("[INFO] Stopping worker pool")
	p.wg.Wait()

	for _, job := range dropped {
		release(job)
	}
	if len(dropped) > 0 {
		log.Printf("[WARN] Dropped %d queued job(s) on shutdown", len(dropped))
	}
}

// Stats reports queue depth and activity
func (p *WorkerPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers:   p.size,
		Queued:    len(p.queue),
		Active:    p.active,
		Processed: p.processed,
		Failed:    p.failed,
	}
}

func (p *WorkerPool) processorFor(jobType models.JobType) JobProcessor {
	for _, proc := range p.processors {
		if proc.CanProcess(jobType) {
			return proc
		}
	}
	return nil
}

// run is the main worker loop
func (p *WorkerPool) run(ctx context.Context, id string) {
	defer p.wg.Done()

	log.Printf("[DEBUG] Worker %s starting", id)
	defer log.Printf("[DEBUG] Worker %s stopped", id)

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if p.stopped {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++
		processor := p.processorFor(job.Type)
		p.mu.Unlock()

		err := p.process(ctx, id, processor, job)

		p.mu.Lock()
		p.active--
		p.processed++
		if err != nil {
			p.failed++
		}
		p.mu.Unlock()
	}
}

// process runs one job. A panicking processor is contained so the worker
// keeps serving the queue.
func (p *WorkerPool) process(ctx context.Context, workerID string, processor JobProcessor, job *models.Job) (err error) {
	defer release(job)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Worker %s: job %s panicked: %v\n%s", workerID, job.ID, r, debug.Stack())
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	log.Printf("[DEBUG] Worker %s picked up %s job %s for entity %d", workerID, job.Type, job.ID, job.EntityID)

	if err := processor.ProcessJob(ctx, job); err != nil {
		log.Printf("[WARN] Worker %s: job %s failed: %v", workerID, job.ID, err)
		return err
	}

	log.Printf("[DEBUG] Worker %s completed job %s", workerID, job.ID)
	return nil
}

func release(job *models.Job) {
	if job.Release != nil {
		job.Release()
	}
}
