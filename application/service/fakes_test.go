package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/helixml/newsbrief/domain/brief"
	domainservice "github.com/helixml/newsbrief/domain/service"
	"github.com/helixml/newsbrief/infrastructure/persistence"
	"github.com/helixml/newsbrief/internal/log"
	"github.com/helixml/newsbrief/internal/testdb"
)

var errBoom = errors.New("boom")

func newTestStore(t *testing.T) persistence.BriefStore {
	t.Helper()
	return persistence.NewBriefStore(testdb.New(t), 300, log.Discard())
}

// fakeAnalyzer returns canned results keyed by text.
type fakeAnalyzer struct {
	mu        sync.Mutex
	entities  map[string][]string
	labels    map[string]string
	score     float64
	failOn    map[string]bool
	callCount int
}

func newFakeAnalyzer() *fakeAnalyzer {
	return &fakeAnalyzer{
		entities: map[string][]string{},
		labels:   map[string]string{},
		score:    0.9,
		failOn:   map[string]bool{},
	}
}

func (f *fakeAnalyzer) ExtractEntities(_ context.Context, text string) ([]domainservice.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callCount++
	if f.failOn[text] {
		return nil, errBoom
	}
	var out []domainservice.Entity
	for _, e := range f.entities[text] {
		out = append(out, domainservice.NewEntity(e, "ORG", 0.99))
	}
	return out, nil
}

func (f *fakeAnalyzer) ClassifySentiment(_ context.Context, text string) (domainservice.Classification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	label, ok := f.labels[text]
	if !ok {
		label = "neutral"
	}
	return domainservice.NewClassification(label, f.score), nil
}

func (f *fakeAnalyzer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// fakeFetcher returns fixed items or an error.
type fakeFetcher struct {
	items []brief.RawItem
	err   error
}

func (f fakeFetcher) Fetch(context.Context) ([]brief.RawItem, error) {
	return f.items, f.err
}

// recordingPublisher keeps every published hash.
type recordingPublisher struct {
	mu     sync.Mutex
	hashes []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, hash string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.hashes = append(p.hashes, hash)
	return nil
}

// failingStore fails every call, to exercise error paths.
type failingStore struct {
	queried bool
}

func (s *failingStore) Save(context.Context, []brief.Candidate) (brief.SaveResult, error) {
	return brief.SaveResult{}, errBoom
}

func (s *failingStore) FindUnprocessed(context.Context, int) ([]brief.Brief, error) {
	return nil, errBoom
}

func (s *failingStore) FindByHash(context.Context, string) (brief.Brief, error) {
	return brief.Brief{}, errBoom
}

func (s *failingStore) Annotate(context.Context, string, brief.Annotation) (bool, error) {
	return false, errBoom
}

func (s *failingStore) FindForQuery(context.Context, brief.Query) ([]brief.Brief, error) {
	s.queried = true
	return nil, errBoom
}

func (s *failingStore) Latest(context.Context, int) ([]brief.Brief, error) {
	s.queried = true
	return nil, errBoom
}

func (s *failingStore) Aggregate(context.Context, brief.Query) (brief.Summary, error) {
	s.queried = true
	return brief.Summary{}, errBoom
}

func (s *failingStore) Count(context.Context) (int64, error) {
	return 0, errBoom
}

var _ brief.Store = (*failingStore)(nil)
