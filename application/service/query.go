package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/internal/config"
)

// DateLayout is the accepted query date format.
const DateLayout = "2006-01-02"

// Confidence aliases accepted by ParseConfidence.
const (
	ConfidenceAll  = "all"
	ConfidenceHigh = "high"
)

// ParseDate parses a YYYY-MM-DD date as a UTC day. Empty input means today.
func ParseDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC(), nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrValidation, raw)
	}
	return d, nil
}

// ParseConfidence parses a threshold in [0,1]. "all" and empty mean 0,
// "high" means the high-confidence threshold.
func ParseConfidence(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "", ConfidenceAll:
		return 0, nil
	case ConfidenceHigh:
		return config.HighConfidenceThreshold, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w: confidence must be a number in [0,1], %q or %q, got %q",
			ErrValidation, ConfidenceAll, ConfidenceHigh, raw)
	}
	return v, nil
}

// BriefQuery serves read-only views of annotated briefs.
type BriefQuery struct {
	store brief.Store
	now   func() time.Time
}

// NewBriefQuery creates a new BriefQuery.
func NewBriefQuery(store brief.Store) *BriefQuery {
	return &BriefQuery{store: store, now: time.Now}
}

// WithClock returns a copy of q that reads the current time from now.
func (q *BriefQuery) WithClock(now func() time.Time) *BriefQuery {
	c := *q
	c.now = now
	return &c
}

// Parse validates raw date and confidence parameters into a brief.Query.
func (q *BriefQuery) Parse(date, confidence string) (brief.Query, error) {
	d, err := ParseDate(date, q.now())
	if err != nil {
		return brief.Query{}, err
	}
	c, err := ParseConfidence(confidence)
	if err != nil {
		return brief.Query{}, err
	}
	return brief.NewQuery(d, c), nil
}

// Articles returns the annotated briefs of one day, newest first.
func (q *BriefQuery) Articles(ctx context.Context, date, confidence string) ([]brief.Brief, error) {
	query, err := q.Parse(date, confidence)
	if err != nil {
		return nil, err
	}
	briefs, err := q.store.FindForQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find briefs: %w", err)
	}
	return briefs, nil
}

// Summary returns sentiment counts for one day and its month.
func (q *BriefQuery) Summary(ctx context.Context, date, confidence string) (brief.Summary, error) {
	query, err := q.Parse(date, confidence)
	if err != nil {
		return brief.Summary{}, err
	}
	summary, err := q.store.Aggregate(ctx, query)
	if err != nil {
		return brief.Summary{}, fmt.Errorf("aggregate briefs: %w", err)
	}
	return summary, nil
}

// Latest returns up to limit annotated briefs, newest first.
func (q *BriefQuery) Latest(ctx context.Context, limit int) ([]brief.Brief, error) {
	briefs, err := q.store.Latest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("latest briefs: %w", err)
	}
	return briefs, nil
}
