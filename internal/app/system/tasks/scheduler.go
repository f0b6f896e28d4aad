// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is a unit of periodic background work.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero means Interval.
	Timeout time.Duration
	// RunOnStart runs the job once immediately when the scheduler starts.
	RunOnStart bool
	Run        func(ctx context.Context) error
}

// Scheduler runs each job on its own ticker. Runs of the same job never
// overlap: a tick that arrives while the previous run is still going is
// dropped by the ticker.
type Scheduler struct {
	log  *zap.Logger
	jobs []Job

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{log: logger, ctx: ctx, cancel: cancel}
}

// Add registers a job. It must be called before Start.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("tasks: cannot add job %q after start", job.Name)
	}
	if job.Interval <= 0 {
		return fmt.Errorf("tasks: job %q has non-positive interval %v", job.Name, job.Interval)
	}
	if job.Run == nil {
		return fmt.Errorf("tasks: job %q has no Run func", job.Name)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

// Start launches one goroutine per job. Calling it twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
		s.log.Info("background job scheduled",
			zap.String("job", job.Name),
			zap.Duration("interval", job.Interval))
	}
}

// Stop cancels running jobs and waits for every loop to exit. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.log.Info("background jobs stopped")
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	if job.RunOnStart {
		s.runOnce(job)
	}

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(job)
		}
	}
}

func (s *Scheduler) runOnce(job Job) {
	if s.ctx.Err() != nil {
		return
	}
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = job.Interval
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("background job panicked",
				zap.String("job", job.Name),
				zap.Any("panic", rec))
		}
	}()

	if err := job.Run(ctx); err != nil {
		s.log.Error("background job failed",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}
	s.log.Debug("background job finished",
		zap.String("job", job.Name),
		zap.Duration("took", time.Since(start)))
}
