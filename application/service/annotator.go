package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	domainservice "github.com/helixml/newsbrief/domain/service"
	"github.com/helixml/newsbrief/internal/database"
)

// BatchResult summarizes one annotation batch.
type BatchResult struct {
	Processed int
	Failed    int
}

// AnnotateOutcome describes what AnnotateOne did with a brief.
type AnnotateOutcome int

// AnnotateOutcome values.
const (
	AnnotateUpdated AnnotateOutcome = iota
	AnnotateMissing
	AnnotateAlreadyDone
	AnnotateFailed
)

// String returns the outcome name.
func (o AnnotateOutcome) String() string {
	switch o {
	case AnnotateUpdated:
		return "updated"
	case AnnotateMissing:
		return "missing"
	case AnnotateAlreadyDone:
		return "already annotated"
	case AnnotateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Annotator attaches entities and sentiment to stored briefs.
type Annotator struct {
	store     brief.Store
	analyzer  domainservice.Analyzer
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnnotator creates a new Annotator. batchSize bounds RunBatch when the
// caller passes no limit.
func NewAnnotator(store brief.Store, analyzer domainservice.Analyzer, batchSize int, logger *slog.Logger) *Annotator {
	return &Annotator{
		store:     store,
		analyzer:  analyzer,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock returns a copy of a that reads the current time from now.
func (a *Annotator) WithClock(now func() time.Time) *Annotator {
	c := *a
	c.now = now
	return &c
}

// BatchSize returns the default batch bound.
func (a *Annotator) BatchSize() int { return a.batchSize }

// RunBatch annotates up to limit unannotated briefs, oldest first. A
// non-positive limit uses the configured batch size. Item failures are
// counted and never abort the batch.
func (a *Annotator) RunBatch(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		limit = a.batchSize
	}

	pending, err := a.store.FindUnprocessed(ctx, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("find unprocessed briefs: %w", err)
	}

	var result BatchResult
	for _, b := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome, err := a.annotate(ctx, b)
		if err != nil {
			result.Failed++
			a.logger.WarnContext(ctx, "failed to annotate brief",
				slog.String("hash", b.ContentHash()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if outcome == AnnotateUpdated {
			result.Processed++
		}
	}

	if len(pending) > 0 {
		a.logger.InfoContext(ctx, "annotation batch finished",
			slog.Int("processed", result.Processed),
			slog.Int("failed", result.Failed),
		)
	}
	return result, nil
}

// AnnotateOne annotates the brief with the given content hash. A missing or
// already annotated brief is skipped without error.
func (a *Annotator) AnnotateOne(ctx context.Context, hash string) (AnnotateOutcome, error) {
	b, err := a.store.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			a.logger.WarnContext(ctx, "brief not found", slog.String("hash", hash))
			return AnnotateMissing, nil
		}
		return AnnotateFailed, fmt.Errorf("find brief: %w", err)
	}
	return a.annotate(ctx, b)
}

func (a *Annotator) annotate(ctx context.Context, b brief.Brief) (AnnotateOutcome, error) {
	if b.Annotated() {
		return AnnotateAlreadyDone, nil
	}

	entities, err := a.analyzer.ExtractEntities(ctx, b.Content())
	if err != nil {
		return AnnotateFailed, fmt.Errorf("extract entities: %w", err)
	}

	classification, err := a.analyzer.ClassifySentiment(ctx, b.Content())
	if err != nil {
		return AnnotateFailed, fmt.Errorf("classify sentiment: %w", err)
	}

	sentiment, err := brief.ParseSentiment(classification.Label())
	if err != nil {
		return AnnotateFailed, err
	}

	annotation := brief.NewAnnotation(
		domainservice.EntityTexts(entities),
		sentiment,
		classification.Score(),
		a.now(),
	)

	updated, err := a.store.Annotate(ctx, b.ContentHash(), annotation)
	if err != nil {
		return AnnotateFailed, fmt.Errorf("store annotation: %w", err)
	}
	if !updated {
		return AnnotateAlreadyDone, nil
	}

	a.logger.DebugContext(ctx, "brief annotated",
		slog.String("hash", b.ContentHash()),
		slog.String("sentiment", string(sentiment)),
		slog.String("company", annotation.Company()),
	)
	return AnnotateUpdated, nil
}
