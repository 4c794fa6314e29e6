package service

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Subscriber delivers content hashes of new briefs.
type Subscriber interface {
	Next(ctx context.Context) (string, error)
}

// defaultRetryDelay is the pause after a subscriber error when no liveness
// timeout is configured.
const defaultRetryDelay = 5 * time.Second

// Listener annotates each brief as soon as its notification arrives.
type Listener struct {
	subscriber Subscriber
	annotator  *Annotator
	liveness   time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewListener creates a Listener. A liveness timeout of zero waits forever.
// After a subscriber error the listener pauses for the liveness timeout, or
// five seconds without one, before waiting again.
func NewListener(subscriber Subscriber, annotator *Annotator, liveness time.Duration, logger *slog.Logger) *Listener {
	retryDelay := defaultRetryDelay
	if liveness > 0 {
		retryDelay = liveness
	}
	return &Listener{
		subscriber: subscriber,
		annotator:  annotator,
		liveness:   liveness,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

// WithRetryDelay returns a copy of l that pauses for d after a subscriber error.
func (l *Listener) WithRetryDelay(d time.Duration) *Listener {
	c := *l
	c.retryDelay = d
	return &c
}

// Run catches up on briefs stored while nobody was listening, then annotates
// each notified brief until ctx is done. Subscriber errors are logged and the
// listener keeps going, catching up again after each one since notifications
// may have been lost. It returns nil once ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	l.catchUp(ctx, "startup")

	l.logger.InfoContext(ctx, "listening for new briefs")
	for {
		payload, timedOut, err := l.next(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if timedOut {
			l.logger.InfoContext(ctx, "listener timeout, still alive")
			continue
		}
		if err != nil {
			l.logger.WarnContext(ctx, "subscriber failed, retrying",
				slog.Duration("delay", l.retryDelay),
				slog.String("error", err.Error()),
			)
			if !pause(ctx, l.retryDelay) {
				return nil
			}
			l.catchUp(ctx, "recovery")
			continue
		}
		l.handle(ctx, payload)
	}
}

// catchUp annotates one batch of briefs that may have missed a notification.
func (l *Listener) catchUp(ctx context.Context, reason string) {
	backlog, err := l.annotator.RunBatch(ctx, 0)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.ErrorContext(ctx, "catch-up annotation batch failed",
				slog.String("reason", reason),
				slog.String("error", err.Error()),
			)
		}
		return
	}
	if backlog.Processed > 0 || backlog.Failed > 0 {
		l.logger.InfoContext(ctx, "annotated backlog",
			slog.String("reason", reason),
			slog.Int("processed", backlog.Processed),
			slog.Int("failed", backlog.Failed),
		)
	}
}

// pause waits for d and reports false if ctx ended first.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (l *Listener) next(ctx context.Context) (string, bool, error) {
	if l.liveness <= 0 {
		payload, err := l.subscriber.Next(ctx)
		return payload, false, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.liveness)
	defer cancel()

	payload, err := l.subscriber.Next(waitCtx)
	if err != nil && waitCtx.Err() != nil && ctx.Err() == nil {
		return "", true, nil
	}
	return payload, false, err
}

func (l *Listener) handle(ctx context.Context, payload string) {
	hash := strings.TrimSpace(payload)
	if hash == "" {
		l.logger.WarnContext(ctx, "ignoring empty notification")
		return
	}

	l.logger.InfoContext(ctx, "received notification", slog.String("hash", hash))
	outcome, err := l.annotator.AnnotateOne(ctx, hash)
	if err != nil {
		l.logger.WarnContext(ctx, "failed to annotate notified brief",
			slog.String("hash", hash),
			slog.String("error", err.Error()),
		)
		return
	}
	l.logger.InfoContext(ctx, "notified brief handled",
		slog.String("hash", hash),
		slog.String("outcome", outcome.String()),
	)
}
