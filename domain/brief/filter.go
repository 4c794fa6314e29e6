package brief

import (
	"time"
	"unicode/utf8"
)

// RawItem is one anchor text collected by the fetcher.
type RawItem struct {
	Section string
	Text    string
}

// Candidate is a normalized brief that has not been stored yet.
type Candidate struct {
	Content     string
	PublishedAt time.Time
}

// NewCandidate normalizes raw text into a Candidate.
func NewCandidate(raw string, now time.Time) Candidate {
	content, published := Normalize(raw, now)
	return Candidate{Content: content, PublishedAt: published}
}

// Filter decides which candidates are real briefs.
// Length is measured in runes.
type Filter struct {
	minLength int
	maxLength int
	maxAge    time.Duration
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// WithMinLength sets the exclusive lower bound on content length.
func WithMinLength(n int) FilterOption {
	return func(f *Filter) { f.minLength = n }
}

// WithMaxLength sets the inclusive upper bound on content length. Zero disables it.
func WithMaxLength(n int) FilterOption {
	return func(f *Filter) { f.maxLength = n }
}

// WithMaxAge drops candidates published longer ago than d. Zero disables it.
func WithMaxAge(d time.Duration) FilterOption {
	return func(f *Filter) { f.maxAge = d }
}

// DefaultMinLength separates briefs from headlines and press-release titles.
const DefaultMinLength = 180

// NewFilter creates a Filter. Without options only the minimum length applies.
func NewFilter(opts ...FilterOption) Filter {
	f := Filter{minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// MinLength returns the exclusive lower bound on length.
func (f Filter) MinLength() int { return f.minLength }

// MaxLength returns the inclusive upper bound on length (0 = unbounded).
func (f Filter) MaxLength() int { return f.maxLength }

// MaxAge returns the maximum age (0 = unbounded).
func (f Filter) MaxAge() time.Duration { return f.maxAge }

// Keep reports whether c passes every configured bound.
func (f Filter) Keep(c Candidate, now time.Time) bool {
	n := utf8.RuneCountInString(c.Content)
	if n <= f.minLength {
		return false
	}
	if f.maxLength > 0 && n > f.maxLength {
		return false
	}
	if f.maxAge > 0 && now.Sub(c.PublishedAt) > f.maxAge {
		return false
	}
	return true
}

// Apply returns the candidates that pass, preserving order.
func (f Filter) Apply(candidates []Candidate, now time.Time) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if f.Keep(c, now) {
			kept = append(kept, c)
		}
	}
	return kept
}
