package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/internal/log"
)

// Fetcher returns the raw item texts currently on the news page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]brief.RawItem, error)
}

// Publisher announces the content hash of a newly stored brief.
type Publisher interface {
	Publish(ctx context.Context, hash string) error
}

// ScrapeResult summarizes one scrape run.
type ScrapeResult struct {
	RunID     string
	Fetched   int
	Kept      int
	Saved     brief.SaveResult
	Published int
}

// Scrape runs one fetch, normalize, filter, save and notify cycle.
type Scrape struct {
	fetcher   Fetcher
	filter    brief.Filter
	store     brief.Store
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewScrape creates a new Scrape service. publisher may be nil.
func NewScrape(fetcher Fetcher, filter brief.Filter, store brief.Store, publisher Publisher, logger *slog.Logger) *Scrape {
	return &Scrape{
		fetcher:   fetcher,
		filter:    filter,
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock returns a copy of s that reads the current time from now.
func (s *Scrape) WithClock(now func() time.Time) *Scrape {
	c := *s
	c.now = now
	return &c
}

// Run executes one scrape cycle. A fetch failure is logged and ends the run
// with zero items; only storage failures are returned, after any briefs the
// store did insert have been published.
func (s *Scrape) Run(ctx context.Context) (ScrapeResult, error) {
	result := ScrapeResult{RunID: uuid.NewString()}
	ctx = log.WithRunID(ctx, result.RunID)

	s.logger.InfoContext(ctx, "scrape started")

	items, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "fetch failed", slog.String("error", err.Error()))
		return result, nil
	}
	result.Fetched = len(items)

	now := s.now()
	candidates := make([]brief.Candidate, 0, len(items))
	for _, item := range items {
		c := brief.NewCandidate(item.Text, now)
		if c.Content == "" {
			continue
		}
		candidates = append(candidates, c)
	}

	kept := s.filter.Apply(candidates, now)
	result.Kept = len(kept)
	if len(kept) == 0 {
		s.logger.InfoContext(ctx, "no items passed the filter",
			slog.Int("fetched", result.Fetched),
			slog.Int("min_length", s.filter.MinLength()),
		)
		return result, nil
	}

	saved, err := s.store.Save(ctx, kept)
	result.Saved = saved
	// Rows inserted before a failed trim are stored and still announced.
	result.Published = s.publish(ctx, saved.Inserted)
	if err != nil {
		return result, fmt.Errorf("save briefs: %w", err)
	}

	s.logger.InfoContext(ctx, "scrape finished",
		slog.Int("fetched", result.Fetched),
		slog.Int("kept", result.Kept),
		slog.Int("inserted", len(saved.Inserted)),
		slog.Int("skipped", saved.Skipped),
		slog.Int("failed", saved.Failed),
		slog.Int("trimmed", saved.Trimmed),
	)
	return result, nil
}

func (s *Scrape) publish(ctx context.Context, hashes []string) int {
	if s.publisher == nil {
		return 0
	}
	published := 0
	for _, hash := range hashes {
		if err := s.publisher.Publish(ctx, hash); err != nil {
			s.logger.WarnContext(ctx, "failed to publish new brief",
				slog.String("hash", hash),
				slog.String("error", err.Error()),
			)
			continue
		}
		published++
	}
	return published
}
