package brief

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	h := Hash("Apple reported record revenue")

	assert.Len(t, h, 64)
	assert.Equal(t, h, Hash("Apple reported record revenue"))
	assert.NotEqual(t, h, Hash("Apple reported record revenue."))
	// SHA-256 of the empty string.
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
}

func TestParseSentiment(t *testing.T) {
	tests := []struct {
		label string
		want  Sentiment
	}{
		{"positive", SentimentPositive},
		{"NEGATIVE", SentimentNegative},
		{" Neutral ", SentimentNeutral},
	}
	for _, tt := range tests {
		got, err := ParseSentiment(tt.label)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSentiment("LABEL_2")
	assert.ErrorIs(t, err, ErrUnknownSentiment)
}

func TestNewBrief(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, loc)

	b := NewBrief("Some content", at)

	assert.Equal(t, Hash("Some content"), b.ContentHash())
	assert.Equal(t, "Some content", b.Content())
	assert.Equal(t, time.UTC, b.ScrapedAt().Location())
	assert.True(t, b.ScrapedAt().Equal(at))
	assert.False(t, b.Annotated())
	_, ok := b.Confidence()
	assert.False(t, ok)
}

func TestReconstructBrief(t *testing.T) {
	conf := 0.91
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	processed := at.Add(time.Minute)

	b := ReconstructBrief(7, "hash", "content", at, "Acme", SentimentPositive, &conf, processed)

	assert.Equal(t, int64(7), b.ID())
	assert.Equal(t, "Acme", b.Company())
	assert.Equal(t, SentimentPositive, b.Sentiment())
	assert.True(t, b.Annotated())
	got, ok := b.Confidence()
	assert.True(t, ok)
	assert.Equal(t, 0.91, got)
	assert.Equal(t, processed, b.ProcessedAt())
}

func TestJoinEntities(t *testing.T) {
	assert.Equal(t, "", JoinEntities(nil))
	assert.Equal(t, "", JoinEntities([]string{" ", ""}))
	assert.Equal(t, "Acme", JoinEntities([]string{"Acme"}))
	assert.Equal(t, "Acme, Globex", JoinEntities([]string{"Acme", " Globex ", "Acme"}))
}

func TestNewAnnotation(t *testing.T) {
	at := time.Date(2025, 1, 15, 10, 0, 0, 0, time.FixedZone("X", 7200))
	a := NewAnnotation([]string{"Acme", "Acme"}, SentimentNegative, 0.7, at)

	assert.Equal(t, "Acme", a.Company())
	assert.Equal(t, SentimentNegative, a.Sentiment())
	assert.Equal(t, 0.7, a.Confidence())
	assert.Equal(t, time.UTC, a.ProcessedAt().Location())
}
