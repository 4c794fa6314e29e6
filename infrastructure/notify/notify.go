// Package notify carries the content hash of newly stored briefs from the
// scraper to the annotation listener.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixml/newsbrief/internal/config"
	"github.com/helixml/newsbrief/internal/database"
)

// ErrUnsupportedBackend indicates a backend that cannot be used with the
// current configuration.
var ErrUnsupportedBackend = errors.New("unsupported notify backend")

// Publisher announces new briefs.
type Publisher interface {
	Publish(ctx context.Context, hash string) error
	Close() error
}

// Subscriber receives announcements.
type Subscriber interface {
	// Next blocks until a payload arrives or ctx is done.
	Next(ctx context.Context) (string, error)
	Close() error
}

// NopPublisher discards every announcement.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, string) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// NewPublisher creates the publisher for cfg. Postgres publishes through db.
func NewPublisher(ctx context.Context, cfg config.NotifyConfig, db database.Database) (Publisher, error) {
	switch cfg.Backend() {
	case config.NotifyBackendNone, "":
		return NopPublisher{}, nil
	case config.NotifyBackendPostgres:
		if !db.IsPostgres() {
			return nil, fmt.Errorf("%w: postgres notifications need a postgres database", ErrUnsupportedBackend)
		}
		return NewPostgresPublisher(db, cfg.Channel()), nil
	case config.NotifyBackendNATS:
		return NewNATSPublisher(cfg.NATSURL(), cfg.Channel())
	case config.NotifyBackendRedis:
		return NewRedisPublisher(ctx, cfg.RedisURL(), cfg.Channel())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend())
	}
}

// NewSubscriber creates the subscriber for cfg. Postgres listens on its own
// connection opened from dbURL.
func NewSubscriber(ctx context.Context, cfg config.NotifyConfig, dbURL string) (Subscriber, error) {
	switch cfg.Backend() {
	case config.NotifyBackendPostgres:
		return NewPostgresSubscriber(ctx, dbURL, cfg.Channel())
	case config.NotifyBackendNATS:
		return NewNATSSubscriber(cfg.NATSURL(), cfg.Channel())
	case config.NotifyBackendRedis:
		return NewRedisSubscriber(ctx, cfg.RedisURL(), cfg.Channel())
	default:
		return nil, fmt.Errorf("%w: cannot subscribe with %q", ErrUnsupportedBackend, cfg.Backend())
	}
}
