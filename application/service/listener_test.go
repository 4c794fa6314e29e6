package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chanSubscriber delivers payloads from a channel.
type chanSubscriber struct {
	payloads chan string
	err      error
}

func (s *chanSubscriber) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	select {
	case p := <-s.payloads:
		return p, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestListener_CatchesUpThenAnnotatesNotifications(t *testing.T) {
	store := newTestStore(t)
	seed(t, store, "backlog")

	sub := &chanSubscriber{payloads: make(chan string, 4)}
	annotator := NewAnnotator(store, newFakeAnalyzer(), 5, log.Discard())
	listener := NewListener(sub, annotator, 20*time.Millisecond, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	require.Eventually(t, func() bool {
		b, err := store.FindByHash(context.Background(), brief.Hash("backlog"))
		return err == nil && b.Annotated()
	}, 2*time.Second, 10*time.Millisecond)

	// Give the liveness timeout a chance to fire at least once.
	time.Sleep(50 * time.Millisecond)

	seed(t, store, "pushed")
	sub.payloads <- brief.Hash("pushed")
	sub.payloads <- "  "
	sub.payloads <- brief.Hash("never stored")

	require.Eventually(t, func() bool {
		b, err := store.FindByHash(context.Background(), brief.Hash("pushed"))
		return err == nil && b.Annotated()
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

// flakySubscriber fails its first failures calls, then delivers payloads.
type flakySubscriber struct {
	chanSubscriber
	failures int
	calls    atomic.Int32
}

func (s *flakySubscriber) Next(ctx context.Context) (string, error) {
	if int(s.calls.Add(1)) <= s.failures {
		return "", errBoom
	}
	return s.chanSubscriber.Next(ctx)
}

func TestListener_KeepsRunningAfterSubscriberError(t *testing.T) {
	store := newTestStore(t)
	sub := &flakySubscriber{chanSubscriber: chanSubscriber{payloads: make(chan string, 1)}, failures: 2}
	annotator := NewAnnotator(store, newFakeAnalyzer(), 5, log.Discard())
	listener := NewListener(sub, annotator, time.Second, log.Discard()).WithRetryDelay(5 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	seed(t, store, "queued")
	sub.payloads <- brief.Hash("queued")

	require.Eventually(t, func() bool {
		b, err := store.FindByHash(context.Background(), brief.Hash("queued"))
		return err == nil && b.Annotated() && sub.calls.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("listener stopped early: %v", err)
	default:
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListener_PersistentErrorStopsOnCancel(t *testing.T) {
	store := newTestStore(t)
	sub := &chanSubscriber{err: errBoom}
	listener := NewListener(sub, NewAnnotator(store, newFakeAnalyzer(), 5, log.Discard()), 0, log.Discard()).
		WithRetryDelay(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, listener.Run(ctx))
}
