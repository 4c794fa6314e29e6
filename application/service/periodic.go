package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of periodic work. Errors are logged and do not stop the loop.
type Job func(ctx context.Context) error

// Periodic runs a job immediately and then on every tick of interval.
type Periodic struct {
	name     string
	job      Job
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPeriodic creates a Periodic. A non-positive interval disables it.
func NewPeriodic(name string, interval time.Duration, job Job, logger *slog.Logger) *Periodic {
	return &Periodic{
		name:     name,
		job:      job,
		interval: interval,
		logger:   logger.With(slog.String("job", name)),
	}
}

// Enabled reports whether the job has a positive interval.
func (p *Periodic) Enabled() bool { return p.interval > 0 }

// Run blocks until ctx is done. If disabled it returns immediately.
func (p *Periodic) Run(ctx context.Context) error {
	if !p.Enabled() {
		p.logger.Info("periodic job disabled")
		return nil
	}

	p.logger.Info("periodic job started", slog.Duration("interval", p.interval))
	defer p.logger.Info("periodic job stopped")

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Start runs the job in a background goroutine until Stop.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Go(func() {
		_ = p.Run(ctx)
	})
}

// Stop cancels the background goroutine and waits for it to finish.
func (p *Periodic) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

func (p *Periodic) tick(ctx context.Context) {
	if err := p.job(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("periodic job failed", slog.String("error", err.Error()))
	}
}
