package brief

import (
	"context"
	"time"
)

// SaveResult reports the outcome of one save cycle.
type SaveResult struct {
	Inserted []string // content hashes of newly stored briefs
	Skipped  int      // already stored
	Failed   int      // rolled back after an error
	Trimmed  int      // removed by retention
}

// Query selects annotated briefs on one UTC calendar day.
type Query struct {
	date          time.Time
	minConfidence float64
}

// NewQuery creates a Query for the UTC day containing date.
func NewQuery(date time.Time, minConfidence float64) Query {
	d := date.UTC()
	return Query{
		date:          time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		minConfidence: minConfidence,
	}
}

// Date returns midnight UTC of the queried day.
func (q Query) Date() time.Time { return q.date }

// MinConfidence returns the inclusive confidence threshold.
func (q Query) MinConfidence() float64 { return q.minConfidence }

// DayRange returns [start, end) of the queried day.
func (q Query) DayRange() (time.Time, time.Time) {
	return q.date, q.date.AddDate(0, 0, 1)
}

// MonthRange returns [start, end) of the calendar month containing the day.
func (q Query) MonthRange() (time.Time, time.Time) {
	start := time.Date(q.date.Year(), q.date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Counts holds the number of briefs per sentiment.
type Counts struct {
	Positive int64
	Negative int64
	Neutral  int64
}

// Add increments the counter for s by n. Unknown sentiments are ignored.
func (c *Counts) Add(s Sentiment, n int64) {
	switch s {
	case SentimentPositive:
		c.Positive += n
	case SentimentNegative:
		c.Negative += n
	case SentimentNeutral:
		c.Neutral += n
	}
}

// Total returns the sum of all counters.
func (c Counts) Total() int64 {
	return c.Positive + c.Negative + c.Neutral
}

// Summary holds day and month sentiment counts for a Query.
type Summary struct {
	Query   Query
	Daily   Counts
	Monthly Counts
}

// Store persists briefs with content-hash deduplication and bounded retention.
type Store interface {
	// Save inserts each candidate in its own transaction, ignoring ones already
	// stored, then trims the oldest rows beyond the retention bound.
	Save(ctx context.Context, candidates []Candidate) (SaveResult, error)

	// FindUnprocessed returns up to limit unannotated briefs, oldest first.
	FindUnprocessed(ctx context.Context, limit int) ([]Brief, error)

	// FindByHash returns the brief with the given content hash.
	FindByHash(ctx context.Context, hash string) (Brief, error)

	// Annotate records an annotation if the brief is still unannotated.
	// It reports whether a row changed.
	Annotate(ctx context.Context, hash string, a Annotation) (bool, error)

	// FindForQuery returns annotated briefs matching q, newest first.
	FindForQuery(ctx context.Context, q Query) ([]Brief, error)

	// Latest returns up to limit annotated briefs, newest first.
	Latest(ctx context.Context, limit int) ([]Brief, error)

	// Aggregate counts annotated briefs per sentiment for the day and month of q.
	Aggregate(ctx context.Context, q Query) (Summary, error)

	// Count returns the total number of stored briefs.
	Count(ctx context.Context) (int64, error)
}
