package notify

import (
	"context"
	"fmt"

	"github.com/helixml/newsbrief/internal/database"
	"github.com/jackc/pgx/v5"
)

// PostgresPublisher sends NOTIFY through the application database.
type PostgresPublisher struct {
	db      database.Database
	channel string
}

// NewPostgresPublisher creates a PostgresPublisher on channel.
func NewPostgresPublisher(db database.Database, channel string) *PostgresPublisher {
	return &PostgresPublisher{db: db, channel: channel}
}

// Publish sends hash as the notification payload.
func (p *PostgresPublisher) Publish(ctx context.Context, hash string) error {
	if err := p.db.Session(ctx).Exec("SELECT pg_notify(?, ?)", p.channel, hash).Error; err != nil {
		return fmt.Errorf("pg_notify %s: %w", p.channel, err)
	}
	return nil
}

// Close does nothing; the database is owned by the caller.
func (p *PostgresPublisher) Close() error { return nil }

// PostgresSubscriber LISTENs on a dedicated connection. A dropped
// connection is re-established on the next call to Next.
type PostgresSubscriber struct {
	url     string
	conn    *pgx.Conn
	channel string
}

// NewPostgresSubscriber connects to url and LISTENs on channel.
func NewPostgresSubscriber(ctx context.Context, url, channel string) (*PostgresSubscriber, error) {
	s := &PostgresSubscriber{url: url, channel: channel}
	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresSubscriber) connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, s.url)
	if err != nil {
		return fmt.Errorf("connect listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{s.channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("listen %s: %w", s.channel, err)
	}
	s.conn = conn
	return nil
}

// Next waits for the next notification on the channel.
func (s *PostgresSubscriber) Next(ctx context.Context) (string, error) {
	if s.conn == nil || s.conn.IsClosed() {
		if err := s.connect(ctx); err != nil {
			return "", err
		}
	}
	n, err := s.conn.WaitForNotification(ctx)
	if err != nil {
		return "", fmt.Errorf("wait for notification: %w", err)
	}
	return n.Payload, nil
}

// Close releases the listening connection.
func (s *PostgresSubscriber) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close(context.Background())
}
