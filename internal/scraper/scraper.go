package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pfrederiksen/fb-events/internal/event"
	"github.com/pfrederiksen/fb-events/internal/extract"
	"github.com/pfrederiksen/fb-events/internal/logger"
	"github.com/pfrederiksen/fb-events/internal/metrics"
	"github.com/pfrederiksen/fb-events/internal/storage"
)

const (
	// CoverImageSelector matches the cover photo on an event page.
	CoverImageSelector = `[data-imgperflogname="profileCoverPhoto"]`
	// CookieButtonSelector matches the cookie consent button.
	CookieButtonSelector = `[aria-label="Only allow essential cookies"]`

	eventPageCacheName   = "fb_page_event"
	profilePageCacheName = "fb_page_events_for_profile"

	kindEvent   = "event"
	kindProfile = "profile"
)

var eventIDPattern = regexp.MustCompile(`^\d+$`)

// Fetcher retrieves raw pages.
type Fetcher interface {
	FetchProfile(ctx context.Context, profile string) (*extract.ProfilePage, error)
	FetchEvent(ctx context.Context, id string) (*extract.EventPage, error)
}

// ProfileEventsURL returns the page listing the upcoming events a profile hosts.
func ProfileEventsURL(baseURL, profile string) string {
	return fmt.Sprintf("%s/%s/upcoming_hosted_events", baseURL, profile)
}

// EventURL returns the page of a single event.
func EventURL(baseURL, id string) string {
	return fmt.Sprintf("%s/events/%s/", baseURL, id)
}

// ValidateEventID checks that id is a numeric event ID.
func ValidateEventID(id string) error {
	if !eventIDPattern.MatchString(id) {
		return fmt.Errorf("invalid event id %q: must be numeric", id)
	}
	return nil
}

// ProfileIDs is what the events tab of a profile yields before any event page
// is fetched.
type ProfileIDs struct {
	Profile       string           `json:"profile"`
	PrerenderData []extract.Object `json:"prerender_data"`
	IDs           []string         `json:"ids"`
}

// ProfileResult is a fully scraped profile.
type ProfileResult struct {
	ProfileIDs
	Events []*event.GenericEvent `json:"events"`
}

// Scraper fetches pages through a Fetcher and extracts events from them
type Scraper struct {
	fetcher Fetcher
	cache   storage.Cache
	metrics *metrics.Metrics
	log     *logger.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithCache memoizes fetched pages in c.
func WithCache(c storage.Cache) Option {
	return func(s *Scraper) {
		s.cache = c
	}
}

// WithMetrics records scrape metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// WithLogger logs through l instead of the default logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Scraper) {
		s.log = l
	}
}

// New creates a new Scraper instance
func New(f Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher: f,
		cache:   storage.NopCache{},
		metrics: metrics.New(),
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Event scrapes a single event.
func (s *Scraper) Event(ctx context.Context, id string) (*event.GenericEvent, error) {
	if err := ValidateEventID(id); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveScrape(kindEvent, time.Since(start))
	}()

	page, err := memoize(ctx, s, storage.Key(eventPageCacheName, id), kindEvent, func() (*extract.EventPage, error) {
		return s.fetcher.FetchEvent(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching event %s: %w", id, err)
	}

	evt, err := event.Parse(page)
	if err != nil {
		kind := metrics.FailureOther
		if errors.Is(err, extract.ErrStructure) {
			kind = metrics.FailureStructure
		}
		s.metrics.ExtractionFailed(kind)
		s.log.Error("Event extraction failed", logger.Fields{"event_id": id, "kind": kind}, err)
		return nil, err
	}

	s.metrics.EventAssembled()
	s.log.Debug("Assembled event", logger.Fields{
		"event_id":     id,
		"title":        evt.Title,
		"is_repeating": evt.IsRepeatingEvent,
	})

	return evt, nil
}

// ProfileEventIDs scrapes the events tab of a profile and returns the IDs of
// the listed events in page order, along with the partial event data embedded
// in the first render.
func (s *Scraper) ProfileEventIDs(ctx context.Context, profile string) (*ProfileIDs, error) {
	if profile == "" {
		return nil, errors.New("profile is required")
	}

	start := time.Now()
	defer func() {
		s.metrics.ObserveScrape(kindProfile, time.Since(start))
	}()

	page, err := memoize(ctx, s, storage.Key(profilePageCacheName, profile), kindProfile, func() (*extract.ProfilePage, error) {
		return s.fetcher.FetchProfile(ctx, profile)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching profile %s: %w", profile, err)
	}

	partial, err := extract.PartialEvents(page.Prerender)
	if err != nil {
		s.metrics.ExtractionFailed(metrics.FailureStructure)
		return nil, fmt.Errorf("profile %s: %w", profile, err)
	}

	ids := extract.EventIDs(page.Postrender)
	s.log.Info("Found profile events", logger.Fields{
		"profile":        profile,
		"event_count":    len(ids),
		"prerender_data": len(partial),
	})

	return &ProfileIDs{
		Profile:       profile,
		PrerenderData: partial,
		IDs:           ids,
	}, nil
}

// EventsForProfile scrapes a profile and every event it lists, in order. If
// any event fails the whole call fails.
func (s *Scraper) EventsForProfile(ctx context.Context, profile string) (*ProfileResult, error) {
	ids, err := s.ProfileEventIDs(ctx, profile)
	if err != nil {
		return nil, err
	}

	events := make([]*event.GenericEvent, 0, len(ids.IDs))
	for _, id := range ids.IDs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		evt, err := s.Event(ctx, id)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return &ProfileResult{
		ProfileIDs: *ids,
		Events:     events,
	}, nil
}

// memoize returns the cached value under key, or calls fetch and caches the
// result. Cache failures are logged and otherwise ignored.
func memoize[T any](ctx context.Context, s *Scraper, key, kind string, fetch func() (*T, error)) (*T, error) {
	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.metrics.CacheLookup(metrics.CacheError)
		s.log.Warn("Cache lookup failed", logger.Fields{"key": key, "error": err.Error()})
	case ok:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			s.metrics.CacheLookup(metrics.CacheHit)
			s.log.Debug("Cache hit", logger.Fields{"key": key})
			return &v, nil
		}
		s.metrics.CacheLookup(metrics.CacheError)
		s.log.Warn("Discarding unreadable cache entry", logger.Fields{"key": key})
	default:
		s.metrics.CacheLookup(metrics.CacheMiss)
	}

	v, err := fetch()
	if err != nil {
		return nil, err
	}
	s.metrics.PageFetched(kind)

	data, err = json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s page: %w", kind, err)
	}
	if err := s.cache.Put(ctx, key, data); err != nil {
		s.log.Warn("Cache store failed", logger.Fields{"key": key, "error": err.Error()})
	}

	return v, nil
}
