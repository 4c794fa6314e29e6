package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/newsbrief/internal/config"
	"github.com/playwright-community/playwright-go"
)

// stealthScript hides the usual headless-automation fingerprints.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = { runtime: {} };
`

// Playwright opens headless Chromium pages.
type Playwright struct {
	cfg config.ScraperConfig
}

// NewPlaywright creates a Playwright opener.
func NewPlaywright(cfg config.ScraperConfig) *Playwright {
	return &Playwright{cfg: cfg}
}

// Open starts the driver, launches Chromium and opens one page in a fresh
// context with the configured user agent and the stealth init script.
func (p *Playwright) Open(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	s := &playwrightSession{pw: pw}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	}
	if path := p.cfg.ExecutablePath(); path != "" {
		launch.ExecutablePath = playwright.String(path)
	}
	s.browser, err = pw.Chromium.Launch(launch)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	bctx, err := s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(p.cfg.UserAgent()),
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("new browser context: %w", err)
	}
	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("add init script: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	s.page = playwrightPage{page: page}
	return s, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwrightPage
}

func (s *playwrightSession) Page() Page { return s.page }

func (s *playwrightSession) Close() error {
	var errs []error
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	return errors.Join(errs...)
}

// playwrightPage adapts playwright.Page to Page.
type playwrightPage struct {
	page playwright.Page
}

func (p playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   milliseconds(timeout),
	})
	return classify(err)
}

func (p playwrightPage) WaitFor(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: milliseconds(timeout),
	})
	return classify(err)
}

func (p playwrightPage) TextContents(selector string) ([]string, error) {
	texts, err := p.page.Locator(selector).AllTextContents()
	return texts, classify(err)
}

func (p playwrightPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// classify marks playwright timeouts with ErrTimeout.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

func milliseconds(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}
