// Package service defines the capabilities the annotator depends on.
package service

import "context"

// Entity is a named entity found in text.
type Entity struct {
	text  string
	label string
	score float64
}

// NewEntity creates a new Entity.
func NewEntity(text, label string, score float64) Entity {
	return Entity{text: text, label: label, score: score}
}

// Text returns the surface form, e.g. "Apple".
func (e Entity) Text() string { return e.text }

// Label returns the entity type, e.g. "ORG".
func (e Entity) Label() string { return e.label }

// Score returns the model confidence.
func (e Entity) Score() float64 { return e.score }

// Classification is the top label assigned to a text.
type Classification struct {
	label string
	score float64
}

// NewClassification creates a new Classification.
func NewClassification(label string, score float64) Classification {
	return Classification{label: label, score: score}
}

// Label returns the raw classifier label.
func (c Classification) Label() string { return c.label }

// Score returns the probability of the label.
func (c Classification) Score() float64 { return c.score }

// EntityExtractor finds named entities in text.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]Entity, error)
}

// SentimentClassifier assigns a sentiment label to text.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) (Classification, error)
}

// Analyzer provides both capabilities, as a single model runtime usually does.
type Analyzer interface {
	EntityExtractor
	SentimentClassifier
}

// EntityTexts returns the surface forms of entities.
func EntityTexts(entities []Entity) []string {
	texts := make([]string, len(entities))
	for i, e := range entities {
		texts[i] = e.Text()
	}
	return texts
}
