package export

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job produces and delivers one export, returning where it went.
type Job func(ctx context.Context) (string, error)

// Scheduler runs a Job immediately and then at a fixed interval until
// stopped. A failed run is logged and the next tick tries again.
type Scheduler struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	runs     int
	failures int
}

func NewScheduler(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{job: job, interval: interval, logger: logger}
}

// Start begins the schedule. It stops on its own when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Stats reports how many runs have finished and how many of them failed.
func (s *Scheduler) Stats() (runs, failures int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.failures
}

func (s *Scheduler) run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	loc, err := s.job(ctx)

	s.mu.Lock()
	s.runs++
	if err != nil {
		s.failures++
	}
	s.mu.Unlock()

	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("scheduled_export_failed", slog.String("err", err.Error()))
		}
		return
	}
	s.logger.Info("scheduled_export_completed", slog.String("location", loc), slog.Duration("elapsed", time.Since(start)))
}
