// Package browser fetches Facebook pages through a headless browser driven by
// Playwright, so that client-side rendering and lazy loading take place
// before the page text is captured.
package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/pfrederiksen/fb-events/internal/config"
	"github.com/pfrederiksen/fb-events/internal/extract"
	"github.com/pfrederiksen/fb-events/internal/logger"
	"github.com/pfrederiksen/fb-events/internal/scraper"
)

// Driver is a scraper.Fetcher backed by a single browser page. The browser is
// started on first use, and pages are visited one at a time.
type Driver struct {
	cfg     config.BrowserConfig
	baseURL string
	timeout time.Duration
	log     *logger.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

var _ scraper.Fetcher = (*Driver)(nil)

// New creates a Driver. Nothing is launched until the first fetch.
func New(cfg config.BrowserConfig, fetch config.FetchConfig, log *logger.Logger) *Driver {
	return &Driver{
		cfg:     cfg,
		baseURL: strings.TrimRight(fetch.BaseURL, "/"),
		timeout: fetch.Timeout,
		log:     log,
	}
}

// start launches the browser if it is not running. Callers hold d.mu.
func (d *Driver) start() error {
	if d.page != nil {
		return nil
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("starting playwright: %w", err)
	}

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.cfg.Headless),
	}
	if d.cfg.ExecutablePath != "" {
		opts.ExecutablePath = playwright.String(d.cfg.ExecutablePath)
	}

	engine := pw.Chromium
	if d.cfg.Engine == config.EngineFirefox {
		engine = pw.Firefox
	}

	browser, err := engine.Launch(opts)
	if err != nil {
		pw.Stop() // nolint:errcheck
		return fmt.Errorf("launching %s: %w", d.cfg.Engine, err)
	}

	page, err := browser.NewPage()
	if err != nil {
		browser.Close() // nolint:errcheck
		pw.Stop()       // nolint:errcheck
		return fmt.Errorf("opening page: %w", err)
	}
	if d.timeout > 0 {
		page.SetDefaultTimeout(ms(d.timeout))
	}

	d.pw, d.browser, d.page = pw, browser, page
	d.log.Info("Browser started", logger.Fields{"engine": d.cfg.Engine, "headless": d.cfg.Headless})

	return nil
}

// Close shuts the browser down. It does nothing if the browser never started.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pw == nil {
		return nil
	}

	var errs []error
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
	}
	d.pw, d.browser, d.page = nil, nil, nil

	return errors.Join(errs...)
}

// FetchProfile loads the events tab of a profile, dismisses the cookie dialog
// and scrolls to the bottom so the whole list renders.
func (d *Driver) FetchProfile(ctx context.Context, profile string) (*extract.ProfilePage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.navigate(ctx, scraper.ProfileEventsURL(d.baseURL, url.PathEscape(profile))); err != nil {
		return nil, err
	}

	prerender, err := d.page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page source: %w", err)
	}

	d.dismissCookies()

	if _, err := d.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return nil, fmt.Errorf("scrolling page: %w", err)
	}
	if err := sleep(ctx, d.cfg.ScrollWait); err != nil {
		return nil, err
	}

	postrender, err := d.page.Evaluate("document.body.innerHTML")
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}
	body, err := evaluatedString(postrender)
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}

	return &extract.ProfilePage{
		Profile:    profile,
		Prerender:  prerender,
		Postrender: body,
	}, nil
}

// FetchEvent loads an event page and reads its title and cover image.
func (d *Driver) FetchEvent(ctx context.Context, id string) (*extract.EventPage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.navigate(ctx, scraper.EventURL(d.baseURL, id)); err != nil {
		return nil, err
	}

	source, err := d.page.Content()
	if err != nil {
		return nil, fmt.Errorf("reading page source: %w", err)
	}

	title, err := d.page.Title()
	if err != nil {
		return nil, fmt.Errorf("reading page title: %w", err)
	}

	page := &extract.EventPage{
		ID:     id,
		Title:  title,
		Source: source,
	}

	cover := d.page.Locator(scraper.CoverImageSelector).First()
	src, err := cover.GetAttribute("src", playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(ms(d.cfg.CookieTimeout)),
	})
	if err == nil && src != "" {
		page.CoverImageURL = &src
	} else {
		d.log.Debug("No cover image", logger.Fields{"event_id": id})
	}

	return page, nil
}

func (d *Driver) navigate(ctx context.Context, pageURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.start(); err != nil {
		return err
	}

	d.log.Debug("Navigating", logger.Fields{"url": pageURL})
	if _, err := d.page.Goto(pageURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("navigating to %s: %w", pageURL, err)
	}

	return nil
}

// dismissCookies clicks the "only essential cookies" button if it shows up.
func (d *Driver) dismissCookies() {
	button := d.page.Locator(scraper.CookieButtonSelector).First()
	err := button.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(d.cfg.CookieTimeout)),
	})
	if err != nil {
		d.log.Debug("No cookie dialog", logger.Fields{"error": err.Error()})
	}
}

// evaluatedString checks that a page evaluation produced a string.
func evaluatedString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: evaluated to %T, want string", extract.ErrStructure, v)
	}
	return s, nil
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
