// Package dto defines the JSON shapes served by the API.
package dto

import (
	"time"

	"github.com/helixml/newsbrief/domain/brief"
)

// TimeLayout formats brief times in responses.
const TimeLayout = "2006-01-02 15:04 UTC"

// NoTime is shown when a brief has no timestamp.
const NoTime = "N/A"

// ArticleResponse is one annotated brief.
type ArticleResponse struct {
	Content    string   `json:"content"`
	Company    *string  `json:"company"`
	Sentiment  string   `json:"sentiment"`
	Confidence *float64 `json:"confidence"`
	Time       string   `json:"time"`
}

// NewArticleResponse converts a domain brief.
func NewArticleResponse(b brief.Brief) ArticleResponse {
	resp := ArticleResponse{
		Content:   b.Content(),
		Sentiment: string(b.Sentiment()),
		Time:      FormatTime(b.ScrapedAt()),
	}
	if company := b.Company(); company != "" {
		resp.Company = &company
	}
	if c, ok := b.Confidence(); ok {
		resp.Confidence = &c
	}
	return resp
}

// NewArticlesResponse converts briefs, never returning nil.
func NewArticlesResponse(briefs []brief.Brief) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(briefs))
	for _, b := range briefs {
		out = append(out, NewArticleResponse(b))
	}
	return out
}

// FormatTime renders t as "YYYY-MM-DD HH:MM UTC", or N/A when zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return NoTime
	}
	return t.UTC().Format(TimeLayout)
}

// CountsResponse holds per-sentiment counts.
type CountsResponse struct {
	Positive int64 `json:"positive"`
	Negative int64 `json:"negative"`
	Neutral  int64 `json:"neutral"`
}

// SummaryResponse holds the day and month sentiment counts.
type SummaryResponse struct {
	Date          string         `json:"date"`
	Month         string         `json:"month"`
	MinConfidence float64        `json:"min_confidence"`
	Daily         CountsResponse `json:"daily"`
	Monthly       CountsResponse `json:"monthly"`
}

// NewSummaryResponse converts a domain summary.
func NewSummaryResponse(s brief.Summary) SummaryResponse {
	return SummaryResponse{
		Date:          s.Query.Date().Format("2006-01-02"),
		Month:         s.Query.Date().Format("2006-01"),
		MinConfidence: s.Query.MinConfidence(),
		Daily:         newCounts(s.Daily),
		Monthly:       newCounts(s.Monthly),
	}
}

func newCounts(c brief.Counts) CountsResponse {
	return CountsResponse{Positive: c.Positive, Negative: c.Negative, Neutral: c.Neutral}
}
