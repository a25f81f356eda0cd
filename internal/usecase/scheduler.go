package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsRanker/internal/domain"
	"NewsRanker/internal/ports"
)

// Scheduler wires the cron driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	request  Request
	logger   *slog.Logger
	sink     func(time.Time, []domain.ScoredArticle)
}

// NewScheduler returns a helper to start/stop recurring runs of req. Each
// successful result is handed to sink, which may be nil.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, req Request, sink func(time.Time, []domain.ScoredArticle), logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, request: req, sink: sink, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		ranked, err := s.pipeline.Run(ctx, s.request)
		if err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled ranking failed", "trigger", trigger, "error", err)
			}
			return
		}
		if s.sink != nil {
			s.sink(trigger, ranked)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
