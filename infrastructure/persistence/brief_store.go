package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/domain/repository"
	"github.com/helixml/newsbrief/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// trimStatement deletes the n oldest briefs in one statement.
const trimStatement = `DELETE FROM briefs WHERE id IN (
	SELECT id FROM briefs ORDER BY scraped_at ASC, id ASC LIMIT ?
)`

// BriefStore implements brief.Store using GORM.
type BriefStore struct {
	database.Repository[brief.Brief, BriefModel]
	maxEntries int
	logger     *slog.Logger
}

// NewBriefStore creates a new BriefStore that retains at most maxEntries rows.
// A non-positive maxEntries disables retention.
func NewBriefStore(db database.Database, maxEntries int, logger *slog.Logger) BriefStore {
	if logger == nil {
		logger = slog.Default()
	}
	return BriefStore{
		Repository: database.NewRepository[brief.Brief, BriefModel](db, BriefMapper{}, "brief"),
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Save inserts each candidate in its own transaction, ignoring duplicates,
// then trims the table to the retention bound.
func (s BriefStore) Save(ctx context.Context, candidates []brief.Candidate) (brief.SaveResult, error) {
	result := brief.SaveResult{Inserted: []string{}}

	for _, c := range candidates {
		b := brief.NewBrief(c.Content, c.PublishedAt)
		if b.Content() == "" {
			result.Failed++
			s.logger.WarnContext(ctx, "skipping brief with empty content")
			continue
		}

		inserted, err := s.insert(ctx, b)
		if err != nil {
			result.Failed++
			s.logger.ErrorContext(ctx, "failed to insert brief",
				slog.String("hash", b.ContentHash()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if inserted {
			result.Inserted = append(result.Inserted, b.ContentHash())
		} else {
			result.Skipped++
		}
	}

	trimmed, err := s.trim(ctx)
	if err != nil {
		return result, err
	}
	result.Trimmed = trimmed

	return result, nil
}

func (s BriefStore) insert(ctx context.Context, b brief.Brief) (bool, error) {
	model := s.Mapper().ToModel(b)
	return database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (bool, error) {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			DoNothing: true,
		}).Create(&model)
		if res.Error != nil {
			return false, fmt.Errorf("insert brief: %w", res.Error)
		}
		return res.RowsAffected > 0, nil
	})
}

func (s BriefStore) trim(ctx context.Context) (int, error) {
	if s.maxEntries <= 0 {
		return 0, nil
	}

	total, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if total <= int64(s.maxEntries) {
		return 0, nil
	}

	excess := total - int64(s.maxEntries)
	res := s.DB(ctx).Exec(trimStatement, excess)
	if res.Error != nil {
		return 0, fmt.Errorf("trim briefs: %w", res.Error)
	}
	s.logger.InfoContext(ctx, "trimmed oldest briefs",
		slog.Int64("removed", res.RowsAffected),
		slog.Int("max_entries", s.maxEntries),
	)
	return int(res.RowsAffected), nil
}

// FindUnprocessed returns up to limit unannotated briefs, oldest first.
func (s BriefStore) FindUnprocessed(ctx context.Context, limit int) ([]brief.Brief, error) {
	opts := append([]repository.Option{brief.WithUnannotated()}, brief.WithOldestFirst()...)
	opts = append(opts, repository.WithLimit(limit))
	return s.Find(ctx, opts...)
}

// FindByHash returns the brief with the given content hash.
func (s BriefStore) FindByHash(ctx context.Context, hash string) (brief.Brief, error) {
	return s.FindOne(ctx, brief.WithContentHash(hash))
}

// Annotate records a unless the brief has already been annotated.
func (s BriefStore) Annotate(ctx context.Context, hash string, a brief.Annotation) (bool, error) {
	return database.WithTransactionResult(ctx, s.Database(), func(tx *gorm.DB) (bool, error) {
		res := database.ApplyConditions(tx.Model(&BriefModel{}),
			brief.WithContentHash(hash),
			brief.WithUnannotated(),
		).Updates(annotationColumns(a))
		if res.Error != nil {
			return false, fmt.Errorf("annotate brief: %w", res.Error)
		}
		return res.RowsAffected > 0, nil
	})
}

// FindForQuery returns annotated briefs on the queried day, newest first.
func (s BriefStore) FindForQuery(ctx context.Context, q brief.Query) ([]brief.Brief, error) {
	opts := append(brief.ForQuery(q), brief.WithNewestFirst()...)
	return s.Find(ctx, opts...)
}

// Latest returns up to limit annotated briefs, newest first.
func (s BriefStore) Latest(ctx context.Context, limit int) ([]brief.Brief, error) {
	opts := append([]repository.Option{brief.WithAnnotated()}, brief.WithNewestFirst()...)
	opts = append(opts, repository.WithLimit(limit))
	return s.Find(ctx, opts...)
}

// Aggregate counts annotated briefs per sentiment for the day and month of q.
func (s BriefStore) Aggregate(ctx context.Context, q brief.Query) (brief.Summary, error) {
	daily, err := s.countBySentiment(ctx, brief.ForQuery(q)...)
	if err != nil {
		return brief.Summary{}, err
	}

	monthStart, monthEnd := q.MonthRange()
	monthly, err := s.countBySentiment(ctx,
		brief.WithAnnotated(),
		brief.WithScrapedBetween(monthStart, monthEnd),
		brief.WithMinConfidence(q.MinConfidence()),
	)
	if err != nil {
		return brief.Summary{}, err
	}

	return brief.Summary{Query: q, Daily: daily, Monthly: monthly}, nil
}

type sentimentCount struct {
	Sentiment string
	N         int64
}

func (s BriefStore) countBySentiment(ctx context.Context, options ...repository.Option) (brief.Counts, error) {
	var rows []sentimentCount
	err := database.ApplyConditions(s.DB(ctx).Model(&BriefModel{}), options...).
		Select("sentiment, COUNT(*) AS n").
		Group("sentiment").
		Scan(&rows).Error
	if err != nil {
		return brief.Counts{}, fmt.Errorf("count briefs by sentiment: %w", err)
	}

	var counts brief.Counts
	for _, r := range rows {
		counts.Add(brief.Sentiment(r.Sentiment), r.N)
	}
	return counts, nil
}

// Count returns the total number of stored briefs.
func (s BriefStore) Count(ctx context.Context) (int64, error) {
	return s.Repository.Count(ctx)
}
