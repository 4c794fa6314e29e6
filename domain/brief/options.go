package brief

import (
	"time"

	"github.com/helixml/newsbrief/domain/repository"
)

// WithContentHash filters by the "content_hash" column.
func WithContentHash(hash string) repository.Option {
	return repository.WithCondition("content_hash", hash)
}

// WithUnannotated selects briefs without a sentiment.
func WithUnannotated() repository.Option {
	return repository.WithNull("sentiment")
}

// WithAnnotated selects briefs with a sentiment.
func WithAnnotated() repository.Option {
	return repository.WithNotNull("sentiment")
}

// WithScrapedBetween selects briefs with start <= scraped_at < end.
func WithScrapedBetween(start, end time.Time) repository.Option {
	return repository.WithRange("scraped_at", start.UTC(), end.UTC())
}

// WithMinConfidence selects briefs with confidence >= min. Briefs without a
// confidence only pass a zero threshold.
func WithMinConfidence(minConfidence float64) repository.Option {
	if minConfidence <= 0 {
		return func(q repository.Query) repository.Query { return q }
	}
	return repository.WithAtLeast("confidence", minConfidence)
}

// WithOldestFirst orders by scraped_at then id ascending.
func WithOldestFirst() []repository.Option {
	return []repository.Option{repository.WithOrderAsc("scraped_at"), repository.WithOrderAsc("id")}
}

// WithNewestFirst orders by scraped_at then id descending.
func WithNewestFirst() []repository.Option {
	return []repository.Option{repository.WithOrderDesc("scraped_at"), repository.WithOrderDesc("id")}
}

// ForQuery returns the options selecting annotated briefs matching q.
func ForQuery(q Query) []repository.Option {
	start, end := q.DayRange()
	return []repository.Option{
		WithAnnotated(),
		WithScrapedBetween(start, end),
		WithMinConfidence(q.MinConfidence()),
	}
}
