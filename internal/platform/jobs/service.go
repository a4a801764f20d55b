package jobs

import (
	"context"
	"log/slog"
	"time"
)

const JobProgressSweep = "progress_sweep"

type Job struct {
	Type string
	Run  func(context.Context) (any, error)
}

// Observer is told about every finished job run.
type Observer interface {
	ObserveJob(jobType string, err error)
}

type Service struct {
	queue    chan Job
	observer Observer
}

func New(queueSize int, observer Observer) *Service {
	if queueSize <= 0 {
		queueSize = 16
	}
	return &Service{
		queue:    make(chan Job, queueSize),
		observer: observer,
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue drops the job and reports false when the queue is full.
func (s *Service) Enqueue(j Job) bool {
	select {
	case s.queue <- j:
		return true
	default:
		slog.Warn("job queue full", "jobType", j.Type)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, j Job) (any, error) {
	return s.runJob(ctx, j)
}

// Schedule enqueues j once immediately and then on every tick until ctx ends.
func (s *Service) Schedule(ctx context.Context, interval time.Duration, j Job) {
	if interval <= 0 {
		return
	}
	go func() {
		s.Enqueue(j)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(j)
			}
		}
	}()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j Job) (any, error) {
	start := time.Now()
	details, err := j.Run(ctx)
	if s.observer != nil {
		s.observer.ObserveJob(j.Type, err)
	}
	if err == nil {
		slog.Debug("job completed", "jobType", j.Type, "durationMs", time.Since(start).Milliseconds(), "details", details)
	}
	return details, err
}
