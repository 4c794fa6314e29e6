package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/internal/config"
	"github.com/helixml/newsbrief/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	gotoErr     error
	waitErrs    map[string]error
	texts       map[string][]string
	visited     []string
	waited      []string
	screenshots []string
}

func (p *fakePage) Goto(url string, _ time.Duration) error {
	p.visited = append(p.visited, url)
	return p.gotoErr
}

func (p *fakePage) WaitFor(selector string, _ time.Duration) error {
	p.waited = append(p.waited, selector)
	return p.waitErrs[selector]
}

func (p *fakePage) TextContents(selector string) ([]string, error) {
	return p.texts[selector], nil
}

func (p *fakePage) Screenshot(path string) error {
	p.screenshots = append(p.screenshots, path)
	return nil
}

type fakeSession struct {
	page   *fakePage
	closed bool
}

func (s *fakeSession) Page() Page   { return s.page }
func (s *fakeSession) Close() error { s.closed = true; return nil }

type fakeOpener struct {
	session *fakeSession
	err     error
}

func (o *fakeOpener) Open(context.Context) (Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.session, nil
}

func newTestFetcher(page *fakePage) (*Fetcher, *fakeSession) {
	session := &fakeSession{page: page}
	cfg := config.NewScraperConfigWithOptions(
		config.WithScraperURL("https://example.test"),
		config.WithScraperScreenshotPath("timeout.png"),
	)
	return NewFetcher(&fakeOpener{session: session}, cfg, log.Discard()), session
}

func TestSelectors(t *testing.T) {
	assert.Equal(t, `div:has-text("Briefs")`, HeadingSelector("Briefs"))
	assert.Equal(t, `div:has-text("Press Releases") + div a`, ItemSelector("Press Releases"))
}

func TestFetcher_CollectsSectionsAndSkipsEmpty(t *testing.T) {
	page := &fakePage{
		texts: map[string][]string{
			ItemSelector("Briefs"):         {"AAPLApple rises 5m ago", "   "},
			ItemSelector("Press Releases"): {"Acme announces results"},
		},
	}
	fetcher, session := newTestFetcher(page)

	items, err := fetcher.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []brief.RawItem{
		{Section: "Briefs", Text: "AAPLApple rises 5m ago"},
		{Section: "Press Releases", Text: "Acme announces results"},
	}, items)
	assert.Equal(t, []string{"https://example.test"}, page.visited)
	assert.Equal(t, []string{HeadingSelector("Briefs"), ItemSelector("Briefs")}, page.waited)
	assert.Empty(t, page.screenshots)
	assert.True(t, session.closed)
}

func TestFetcher_TimeoutSavesScreenshot(t *testing.T) {
	page := &fakePage{
		waitErrs: map[string]error{
			ItemSelector("Briefs"): ErrTimeout,
		},
	}
	fetcher, session := newTestFetcher(page)

	items, err := fetcher.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, items)
	assert.Equal(t, []string{"timeout.png"}, page.screenshots)
	assert.True(t, session.closed)
}

func TestFetcher_NavigationFailureNoScreenshot(t *testing.T) {
	page := &fakePage{gotoErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	fetcher, _ := newTestFetcher(page)

	_, err := fetcher.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Empty(t, page.screenshots)
}

func TestFetcher_OpenFailure(t *testing.T) {
	fetcher := NewFetcher(&fakeOpener{err: errors.New("no browser")}, config.NewScraperConfig(), log.Discard())

	_, err := fetcher.Fetch(context.Background())
	assert.ErrorContains(t, err, "open browser")
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	other := errors.New("boom")
	assert.Equal(t, other, classify(other))
	assert.NotErrorIs(t, classify(other), ErrTimeout)
}
