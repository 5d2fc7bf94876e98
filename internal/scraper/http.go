package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/fb-events/internal/extract"
)

// HTTPFetcher fetches pages with plain HTTP requests. No scripts run, so the
// profile page is returned as served for both renders.
type HTTPFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher for pages under baseURL
func NewHTTPFetcher(baseURL, userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// FetchProfile fetches the events tab of a profile.
func (f *HTTPFetcher) FetchProfile(ctx context.Context, profile string) (*extract.ProfilePage, error) {
	body, err := f.get(ctx, ProfileEventsURL(f.baseURL, url.PathEscape(profile)))
	if err != nil {
		return nil, err
	}

	return &extract.ProfilePage{
		Profile:    profile,
		Prerender:  body,
		Postrender: body,
	}, nil
}

// FetchEvent fetches an event page and reads its title and cover image.
func (f *HTTPFetcher) FetchEvent(ctx context.Context, id string) (*extract.EventPage, error) {
	body, err := f.get(ctx, EventURL(f.baseURL, id))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &extract.EventPage{
		ID:     id,
		Title:  strings.TrimSpace(doc.Find("title").First().Text()),
		Source: body,
	}
	if src, ok := doc.Find(CoverImageSelector).First().Attr("src"); ok {
		page.CoverImageURL = &src
	}

	return page, nil
}

func (f *HTTPFetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading page: %w", err)
	}

	return string(b), nil
}
