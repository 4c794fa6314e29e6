// Package scraper fetches raw brief texts from the news site with a headless browser.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/helixml/newsbrief/domain/brief"
	"github.com/helixml/newsbrief/internal/config"
)

// ErrTimeout indicates navigation or a selector wait did not finish in time.
var ErrTimeout = errors.New("scrape timed out")

// anchorSection is the section whose heading and first link mark the page as loaded.
const anchorSection = "Briefs"

// Page is the subset of browser page behaviour the fetcher needs.
type Page interface {
	Goto(url string, timeout time.Duration) error
	WaitFor(selector string, timeout time.Duration) error
	TextContents(selector string) ([]string, error)
	Screenshot(path string) error
}

// Session is an open browser page plus whatever must be released with it.
type Session interface {
	Page() Page
	Close() error
}

// Opener starts a browser session.
type Opener interface {
	Open(ctx context.Context) (Session, error)
}

// Fetcher collects link texts under the configured sections of the page.
type Fetcher struct {
	opener Opener
	cfg    config.ScraperConfig
	logger *slog.Logger
}

// NewFetcher creates a Fetcher that opens pages with opener.
func NewFetcher(opener Opener, cfg config.ScraperConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		opener: opener,
		cfg:    cfg,
		logger: logger,
	}
}

// NewPlaywrightFetcher creates a Fetcher driving headless Chromium.
func NewPlaywrightFetcher(cfg config.ScraperConfig, logger *slog.Logger) *Fetcher {
	return NewFetcher(NewPlaywright(cfg), cfg, logger)
}

// HeadingSelector matches the block whose text contains section.
func HeadingSelector(section string) string {
	return fmt.Sprintf("div:has-text(%q)", section)
}

// ItemSelector matches the links in the block following the section heading.
func ItemSelector(section string) string {
	return HeadingSelector(section) + " + div a"
}

// Fetch loads the page and returns the non-empty link texts of every section.
// On a timeout it saves a screenshot and returns no items with an error
// wrapping ErrTimeout.
func (f *Fetcher) Fetch(ctx context.Context) ([]brief.RawItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := f.opener.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			f.logger.WarnContext(ctx, "failed to close browser", slog.String("error", closeErr.Error()))
		}
	}()

	page := session.Page()
	items, err := f.collect(ctx, page)
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			f.logger.WarnContext(ctx, "scrape timed out", slog.String("error", err.Error()))
			f.screenshot(ctx, page)
		}
		return nil, err
	}
	return items, nil
}

func (f *Fetcher) collect(ctx context.Context, page Page) ([]brief.RawItem, error) {
	f.logger.DebugContext(ctx, "navigating", slog.String("url", f.cfg.URL()))
	if err := page.Goto(f.cfg.URL(), f.cfg.NavigateTimeout()); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", f.cfg.URL(), err)
	}

	for _, selector := range []string{HeadingSelector(anchorSection), ItemSelector(anchorSection)} {
		if err := page.WaitFor(selector, f.cfg.WaitTimeout()); err != nil {
			return nil, fmt.Errorf("wait for %s: %w", selector, err)
		}
	}

	var items []brief.RawItem
	for _, section := range f.cfg.Sections() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		texts, err := page.TextContents(ItemSelector(section))
		if err != nil {
			return nil, fmt.Errorf("read section %s: %w", section, err)
		}
		for _, text := range texts {
			if strings.TrimSpace(text) == "" {
				continue
			}
			items = append(items, brief.RawItem{Section: section, Text: text})
		}
	}

	f.logger.InfoContext(ctx, "fetched briefs page", slog.Int("items", len(items)))
	return items, nil
}

func (f *Fetcher) screenshot(ctx context.Context, page Page) {
	path := f.cfg.ScreenshotPath()
	if path == "" {
		return
	}
	if err := page.Screenshot(path); err != nil {
		f.logger.WarnContext(ctx, "failed to save screenshot", slog.String("error", err.Error()))
		return
	}
	f.logger.InfoContext(ctx, "saved timeout screenshot", slog.String("path", path))
}
