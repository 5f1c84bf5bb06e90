package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

type Job func(ctx context.Context) error

type Scheduler struct {
	log        *zap.Logger
	name       string
	interval   time.Duration
	job        Job
	runOnStart bool
	newTicker  func(d time.Duration) Ticker
}

type Option func(*Scheduler)

func WithTicker(fn func(d time.Duration) Ticker) Option {
	return func(s *Scheduler) {
		s.newTicker = fn
	}
}

func WithRunOnStart(on bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = on
	}
}

func New(name string, interval time.Duration, job Job, log *zap.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		log:      log.Named("scheduler").With(zap.String("job", name)),
		name:     name,
		interval: interval,
		job:      job,
		newTicker: func(d time.Duration) Ticker {
			return realTicker{t: time.NewTicker(d)}
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fires the job on every tick until ctx is done. Job errors are logged and do not
// stop the schedule. Ticks that arrive while the job runs are dropped.
func (s *Scheduler) Run(ctx context.Context) error {
	t := s.newTicker(s.interval)
	defer t.Stop()
	s.log.Info("started", zap.Duration("interval", s.interval))

	if s.runOnStart {
		s.fire(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopped")
			return nil
		case <-t.C():
			s.fire(ctx)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	start := time.Now()
	if err := s.job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error("job failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return
	}
	s.log.Debug("job done", zap.Duration("took", time.Since(start)))
}
