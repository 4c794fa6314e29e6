// Package brief provides the domain model for scraped financial news briefs.
package brief

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownSentiment indicates a classifier label outside the sentiment enum.
var ErrUnknownSentiment = errors.New("unknown sentiment label")

// Sentiment is the annotated tone of a brief.
type Sentiment string

// Sentiment values.
const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// Sentiments lists every sentiment in display order.
func Sentiments() []Sentiment {
	return []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}
}

// ParseSentiment uppercases a classifier label and maps it to a Sentiment.
func ParseSentiment(label string) (Sentiment, error) {
	s := Sentiment(strings.ToUpper(strings.TrimSpace(label)))
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSentiment, label)
	}
}

// Hash returns the deduplication key of normalized content: hex SHA-256.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Brief is a stored news brief, optionally annotated.
type Brief struct {
	id            int64
	contentHash   string
	content       string
	scrapedAt     time.Time
	company       string
	sentiment     Sentiment
	confidence    float64
	hasConfidence bool
	processedAt   time.Time
}

// NewBrief creates an unannotated brief from normalized content.
func NewBrief(content string, scrapedAt time.Time) Brief {
	return Brief{
		contentHash: Hash(content),
		content:     content,
		scrapedAt:   scrapedAt.UTC(),
	}
}

// ReconstructBrief recreates a brief from persistence.
// A nil confidence or zero processedAt means the value is absent.
func ReconstructBrief(
	id int64,
	contentHash string,
	content string,
	scrapedAt time.Time,
	company string,
	sentiment Sentiment,
	confidence *float64,
	processedAt time.Time,
) Brief {
	b := Brief{
		id:          id,
		contentHash: contentHash,
		content:     content,
		scrapedAt:   scrapedAt.UTC(),
		company:     company,
		sentiment:   sentiment,
		processedAt: processedAt,
	}
	if confidence != nil {
		b.confidence = *confidence
		b.hasConfidence = true
	}
	return b
}

// ID returns the database identifier.
func (b Brief) ID() int64 { return b.id }

// ContentHash returns the deduplication key.
func (b Brief) ContentHash() string { return b.contentHash }

// Content returns the normalized text.
func (b Brief) Content() string { return b.content }

// ScrapedAt returns the inferred publish time in UTC.
func (b Brief) ScrapedAt() time.Time { return b.scrapedAt }

// Company returns the joined entity names, empty when none were found.
func (b Brief) Company() string { return b.company }

// Sentiment returns the annotated sentiment, empty when unannotated.
func (b Brief) Sentiment() Sentiment { return b.sentiment }

// Confidence returns the classifier score and whether one is recorded.
func (b Brief) Confidence() (float64, bool) { return b.confidence, b.hasConfidence }

// ProcessedAt returns when the brief was annotated.
func (b Brief) ProcessedAt() time.Time { return b.processedAt }

// Annotated reports whether a sentiment has been recorded.
func (b Brief) Annotated() bool { return b.sentiment != "" }

// Annotation is the result of running the NLP models over a brief.
type Annotation struct {
	company     string
	sentiment   Sentiment
	confidence  float64
	processedAt time.Time
}

// NewAnnotation builds an annotation. Entity names are trimmed, deduplicated
// in first-seen order and joined with ", ".
func NewAnnotation(entities []string, sentiment Sentiment, confidence float64, processedAt time.Time) Annotation {
	return Annotation{
		company:     JoinEntities(entities),
		sentiment:   sentiment,
		confidence:  confidence,
		processedAt: processedAt.UTC(),
	}
}

// Company returns the joined entity names, empty when none.
func (a Annotation) Company() string { return a.company }

// Sentiment returns the sentiment label.
func (a Annotation) Sentiment() Sentiment { return a.sentiment }

// Confidence returns the classifier score of the top label.
func (a Annotation) Confidence() float64 { return a.confidence }

// ProcessedAt returns the annotation time.
func (a Annotation) ProcessedAt() time.Time { return a.processedAt }

// JoinEntities joins distinct, non-empty entity names with ", ".
func JoinEntities(entities []string) string {
	seen := make(map[string]struct{}, len(entities))
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		name := strings.TrimSpace(e)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
