package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

func connectNATS(url string) (*nats.Conn, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("newsbrief"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// NATSPublisher publishes on a core NATS subject.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
}

// NewNATSPublisher connects to url and publishes on subject.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	nc, err := connectNATS(url)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, subject: subject}, nil
}

// Publish sends hash and flushes so a short-lived process does not drop it.
func (p *NATSPublisher) Publish(ctx context.Context, hash string) error {
	if err := p.nc.Publish(p.subject, []byte(hash)); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	if err := p.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", p.subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}

// NATSSubscriber reads a core NATS subject synchronously.
type NATSSubscriber struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

// NewNATSSubscriber connects to url and subscribes to subject.
func NewNATSSubscriber(url, subject string) (*NATSSubscriber, error) {
	nc, err := connectNATS(url)
	if err != nil {
		return nil, err
	}
	sub, err := nc.SubscribeSync(subject)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return &NATSSubscriber{nc: nc, sub: sub}, nil
}

// Next waits for the next message on the subject.
func (s *NATSSubscriber) Next(ctx context.Context) (string, error) {
	msg, err := s.sub.NextMsgWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("next message: %w", err)
	}
	return string(msg.Data), nil
}

// Close unsubscribes and closes the connection.
func (s *NATSSubscriber) Close() error {
	_ = s.sub.Unsubscribe()
	s.nc.Close()
	return nil
}
