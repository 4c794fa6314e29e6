package persistence_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/infrastructure/persistence"
	"github.com/helixml/newsbrief/internal/database"
	"github.com/helixml/newsbrief/internal/log"
	"github.com/helixml/newsbrief/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T, maxEntries int) persistence.BriefStore {
	t.Helper()
	return persistence.NewBriefStore(testdb.New(t), maxEntries, log.Discard())
}

func candidate(content string, at time.Time) brief.Candidate {
	return brief.Candidate{Content: content, PublishedAt: at}
}

func annotate(t *testing.T, store persistence.BriefStore, content string, s brief.Sentiment, confidence float64) {
	t.Helper()
	ok, err := store.Annotate(context.Background(), brief.Hash(content),
		brief.NewAnnotation([]string{"Acme"}, s, confidence, baseTime))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestBriefStore_SaveInsertsAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	result, err := store.Save(ctx, []brief.Candidate{
		candidate("first brief", baseTime),
		candidate("second brief", baseTime.Add(time.Minute)),
		candidate("first brief", baseTime.Add(time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{brief.Hash("first brief"), brief.Hash("second brief")}, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Trimmed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestBriefStore_ResubmitKeepsOriginalTimestamp(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{candidate("repeat", baseTime)})
	require.NoError(t, err)

	result, err := store.Save(ctx, []brief.Candidate{candidate("repeat", baseTime.Add(24*time.Hour))})
	require.NoError(t, err)
	assert.Empty(t, result.Inserted)
	assert.Equal(t, 1, result.Skipped)

	b, err := store.FindByHash(ctx, brief.Hash("repeat"))
	require.NoError(t, err)
	assert.True(t, b.ScrapedAt().Equal(baseTime))
}

func TestBriefStore_TrimsOldestBeyondMaxEntries(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	candidates := make([]brief.Candidate, 0, 300)
	for i := range 300 {
		candidates = append(candidates, candidate(fmt.Sprintf("brief %03d", i), baseTime.Add(time.Duration(i)*time.Second)))
	}
	result, err := store.Save(ctx, candidates)
	require.NoError(t, err)
	require.Len(t, result.Inserted, 300)
	assert.Zero(t, result.Trimmed)

	result, err = store.Save(ctx, []brief.Candidate{candidate("newest", baseTime.Add(time.Hour))})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Trimmed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(300), count)

	_, err = store.FindByHash(ctx, brief.Hash("brief 000"))
	assert.ErrorIs(t, err, database.ErrNotFound)

	_, err = store.FindByHash(ctx, brief.Hash("newest"))
	assert.NoError(t, err)
}

func TestBriefStore_NoRetentionWhenDisabled(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 0)

	result, err := store.Save(ctx, []brief.Candidate{
		candidate("a", baseTime),
		candidate("b", baseTime),
	})
	require.NoError(t, err)
	assert.Zero(t, result.Trimmed)
}

func TestBriefStore_FindUnprocessedOldestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{
		candidate("middle", baseTime),
		candidate("oldest", baseTime.Add(-time.Hour)),
		candidate("newest", baseTime.Add(time.Hour)),
	})
	require.NoError(t, err)
	annotate(t, store, "middle", brief.SentimentNeutral, 0.7)

	pending, err := store.FindUnprocessed(ctx, 5)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "oldest", pending[0].Content())
	assert.Equal(t, "newest", pending[1].Content())

	limited, err := store.FindUnprocessed(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "oldest", limited[0].Content())
}

func TestBriefStore_AnnotateOnlyOnce(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{candidate("Acme beats estimates", baseTime)})
	require.NoError(t, err)
	hash := brief.Hash("Acme beats estimates")

	first := brief.NewAnnotation([]string{"Acme", "Acme"}, brief.SentimentPositive, 0.93, baseTime)
	ok, err := store.Annotate(ctx, hash, first)
	require.NoError(t, err)
	assert.True(t, ok)

	second := brief.NewAnnotation(nil, brief.SentimentNegative, 0.5, baseTime.Add(time.Hour))
	ok, err = store.Annotate(ctx, hash, second)
	require.NoError(t, err)
	assert.False(t, ok)

	b, err := store.FindByHash(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, brief.SentimentPositive, b.Sentiment())
	assert.Equal(t, "Acme", b.Company())
	confidence, has := b.Confidence()
	assert.True(t, has)
	assert.InDelta(t, 0.93, confidence, 1e-9)
	assert.True(t, b.ProcessedAt().Equal(baseTime))
}

func TestBriefStore_AnnotateWithoutEntitiesStoresNullCompany(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{candidate("markets drift", baseTime)})
	require.NoError(t, err)

	ok, err := store.Annotate(ctx, brief.Hash("markets drift"),
		brief.NewAnnotation(nil, brief.SentimentNeutral, 0.6, baseTime))
	require.NoError(t, err)
	require.True(t, ok)

	b, err := store.FindByHash(ctx, brief.Hash("markets drift"))
	require.NoError(t, err)
	assert.Empty(t, b.Company())
	assert.True(t, b.Annotated())
}

func TestBriefStore_FindForQueryExcludesUnannotated(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{
		candidate("annotated early", baseTime.Add(-2*time.Hour)),
		candidate("annotated late", baseTime),
		candidate("pending", baseTime.Add(time.Hour)),
		candidate("yesterday", baseTime.Add(-24*time.Hour)),
	})
	require.NoError(t, err)
	annotate(t, store, "annotated early", brief.SentimentPositive, 0.9)
	annotate(t, store, "annotated late", brief.SentimentNegative, 0.4)
	annotate(t, store, "yesterday", brief.SentimentNeutral, 0.99)

	got, err := store.FindForQuery(ctx, brief.NewQuery(baseTime, 0))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "annotated late", got[0].Content())
	assert.Equal(t, "annotated early", got[1].Content())

	high, err := store.FindForQuery(ctx, brief.NewQuery(baseTime, 0.85))
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "annotated early", high[0].Content())
}

func TestBriefStore_Latest(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{
		candidate("one", baseTime),
		candidate("two", baseTime.Add(time.Minute)),
		candidate("three", baseTime.Add(2*time.Minute)),
	})
	require.NoError(t, err)
	annotate(t, store, "one", brief.SentimentPositive, 0.9)
	annotate(t, store, "two", brief.SentimentNeutral, 0.9)

	latest, err := store.Latest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "two", latest[0].Content())
}

func TestBriefStore_Aggregate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 300)

	_, err := store.Save(ctx, []brief.Candidate{
		candidate("positive today", baseTime),
		candidate("negative today", baseTime.Add(time.Minute)),
		candidate("neutral today", baseTime.Add(2*time.Minute)),
		candidate("earlier this month", time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)),
		candidate("last month", time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)),
		candidate("pending today", baseTime.Add(3*time.Minute)),
	})
	require.NoError(t, err)
	annotate(t, store, "positive today", brief.SentimentPositive, 0.9)
	annotate(t, store, "negative today", brief.SentimentNegative, 0.5)
	annotate(t, store, "neutral today", brief.SentimentNeutral, 0.95)
	annotate(t, store, "earlier this month", brief.SentimentNegative, 0.99)
	annotate(t, store, "last month", brief.SentimentPositive, 0.99)

	t.Run("all confidences", func(t *testing.T) {
		summary, err := store.Aggregate(ctx, brief.NewQuery(baseTime, 0))
		require.NoError(t, err)
		assert.Equal(t, brief.Counts{Positive: 1, Negative: 1, Neutral: 1}, summary.Daily)
		assert.Equal(t, brief.Counts{Positive: 1, Negative: 2, Neutral: 1}, summary.Monthly)
	})

	t.Run("high confidence", func(t *testing.T) {
		summary, err := store.Aggregate(ctx, brief.NewQuery(baseTime, 0.85))
		require.NoError(t, err)
		assert.Equal(t, brief.Counts{Positive: 1, Negative: 0, Neutral: 1}, summary.Daily)
		assert.Equal(t, brief.Counts{Positive: 1, Negative: 1, Neutral: 1}, summary.Monthly)
	})

	t.Run("empty day", func(t *testing.T) {
		summary, err := store.Aggregate(ctx, brief.NewQuery(baseTime.AddDate(0, 0, 5), 0))
		require.NoError(t, err)
		assert.Zero(t, summary.Daily.Total())
		assert.Equal(t, int64(4), summary.Monthly.Total())
	})
}

func TestValidateSchema(t *testing.T) {
	db := testdb.New(t)
	assert.NoError(t, persistence.ValidateSchema(context.Background(), db))
}
