package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job é uma tarefa periódica (varredura, conciliação).
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler roda os jobs em tickers próprios até Stop ou o cancelamento do ctx.
type Scheduler struct {
	jobs     []Job
	logger   *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewScheduler(logger *zap.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("starting background scheduler", zap.Int("jobs", len(s.jobs)))

	for _, job := range s.jobs {
		if job.Run == nil || job.Interval <= 0 {
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
}

// Stop espera a execução corrente de cada job terminar.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		s.logger.Info("stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	// primeira execução logo na partida
	s.run(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.run(ctx, job)
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if err := job.Run(ctx); err != nil {
		s.logger.Error("scheduled job failed", zap.String("job", job.Name), zap.Error(err))
	}
}

// SweepJob adapta a varredura de expiração para o scheduler.
func (s *Services) SweepJob(interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "sweep_expired",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := s.Sweep.Execute(ctx)
			if n > 0 {
				logger.Info("expired bookings", zap.Int("count", n))
			}
			return err
		},
	}
}

// ReconcileJob devolve um job vazio quando não há gateway.
func (s *Services) ReconcileJob(interval time.Duration) Job {
	if s.Reconcile == nil {
		return Job{Name: "reconcile"}
	}
	return Job{
		Name:     "reconcile",
		Interval: interval,
		Run: func(ctx context.Context) error {
			_, err := s.Reconcile.Execute(ctx)
			return err
		},
	}
}
