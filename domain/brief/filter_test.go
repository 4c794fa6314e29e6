package brief

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFilter_MinLengthIsStrict(t *testing.T) {
	f := NewFilter()

	for n := 170; n <= 190; n++ {
		c := Candidate{Content: strings.Repeat("a", n), PublishedAt: fixedNow}
		assert.Equal(t, n > 180, f.Keep(c, fixedNow), "length %d", n)
	}
}

func TestFilter_CountsRunes(t *testing.T) {
	f := NewFilter(WithMinLength(3))

	// Four runes, twelve bytes.
	assert.True(t, f.Keep(Candidate{Content: "日本語だ"}, fixedNow))
	assert.False(t, f.Keep(Candidate{Content: "日本語"}, fixedNow))
}

func TestFilter_MaxLength(t *testing.T) {
	f := NewFilter(WithMinLength(2), WithMaxLength(5))

	assert.True(t, f.Keep(Candidate{Content: "abcde"}, fixedNow))
	assert.False(t, f.Keep(Candidate{Content: "abcdef"}, fixedNow))
}

func TestFilter_MaxAge(t *testing.T) {
	f := NewFilter(WithMinLength(0), WithMaxAge(24*time.Hour))

	fresh := Candidate{Content: "x", PublishedAt: fixedNow.Add(-23 * time.Hour)}
	edge := Candidate{Content: "x", PublishedAt: fixedNow.Add(-24 * time.Hour)}
	stale := Candidate{Content: "x", PublishedAt: fixedNow.Add(-48 * time.Hour)}

	assert.True(t, f.Keep(fresh, fixedNow))
	assert.True(t, f.Keep(edge, fixedNow))
	assert.False(t, f.Keep(stale, fixedNow))
}

func TestFilter_Apply(t *testing.T) {
	f := NewFilter(WithMinLength(3))
	in := []Candidate{{Content: "long one"}, {Content: "no"}, {Content: "another"}}

	out := f.Apply(in, fixedNow)

	assert.Equal(t, []Candidate{{Content: "long one"}, {Content: "another"}}, out)
	assert.Empty(t, f.Apply(nil, fixedNow))
}

func TestNewCandidate(t *testing.T) {
	c := NewCandidate("AAPLApple rallies 1h ago", fixedNow)

	assert.Equal(t, "Apple rallies", c.Content)
	assert.Equal(t, fixedNow.Add(-time.Hour), c.PublishedAt)
}

func TestQuery_Ranges(t *testing.T) {
	q := NewQuery(time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC), 0.85)

	start, end := q.DayRange()
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), end)

	mStart, mEnd := q.MonthRange()
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), mStart)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), mEnd)
	assert.Equal(t, 0.85, q.MinConfidence())
}

func TestCounts_Add(t *testing.T) {
	var c Counts
	c.Add(SentimentPositive, 2)
	c.Add(SentimentNeutral, 1)
	c.Add(Sentiment("OTHER"), 5)

	assert.Equal(t, Counts{Positive: 2, Neutral: 1}, c)
	assert.Equal(t, int64(3), c.Total())
}
