package persistence

import (
	"time"

	"github.com/helixml/newsbrief/domain/brief"
)

// BriefMapper maps between domain Brief and persistence BriefModel.
type BriefMapper struct{}

// ToDomain converts a BriefModel to a domain Brief.
func (m BriefMapper) ToDomain(e BriefModel) brief.Brief {
	var company string
	if e.SubjectCompany != nil {
		company = *e.SubjectCompany
	}

	var sentiment brief.Sentiment
	if e.Sentiment != nil {
		sentiment = brief.Sentiment(*e.Sentiment)
	}

	var processedAt time.Time
	if e.ProcessedAt != nil {
		processedAt = e.ProcessedAt.UTC()
	}

	return brief.ReconstructBrief(
		e.ID,
		e.ContentHash,
		e.Content,
		e.ScrapedAt,
		company,
		sentiment,
		e.Confidence,
		processedAt,
	)
}

// ToModel converts a domain Brief to a BriefModel.
func (m BriefMapper) ToModel(b brief.Brief) BriefModel {
	model := BriefModel{
		ID:             b.ID(),
		ContentHash:    b.ContentHash(),
		Content:        b.Content(),
		ScrapedAt:      b.ScrapedAt().UTC(),
		SubjectCompany: optionalString(b.Company()),
		Sentiment:      optionalString(string(b.Sentiment())),
	}
	if c, ok := b.Confidence(); ok {
		model.Confidence = &c
	}
	if !b.ProcessedAt().IsZero() {
		t := b.ProcessedAt().UTC()
		model.ProcessedAt = &t
	}
	return model
}

// annotationColumns returns the column updates recording a.
func annotationColumns(a brief.Annotation) map[string]any {
	return map[string]any{
		"subject_company": optionalString(a.Company()),
		"sentiment":       string(a.Sentiment()),
		"confidence":      a.Confidence(),
		"processed_at":    a.ProcessedAt().UTC(),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
