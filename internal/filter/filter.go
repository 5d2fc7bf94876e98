// Package filter narrows a list of scraped events down by date, text,
// place and kind.
//
// Example usage:
//
//	// Weekend jazz events in March
//	f := filter.New()
//	f.DateFrom, f.DateTo, _ = filter.ParseDateRange("March", time.Now())
//	f.Keywords = []string{"jazz"}
//	f.WeekendsOnly = true
//
//	filtered := f.Apply(events)
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/fb-events/internal/event"
)

// Filter represents event filtering criteria. Every criterion that is set
// must match.
type Filter struct {
	// Date range on the event start, inclusive
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`

	// Case-insensitive substrings of the title or description, any of which may match
	Keywords []string `json:"keywords,omitempty"`

	// Case-insensitive substrings of the city, address or place name, any of which may match
	Cities []string `json:"cities,omitempty"`

	// Saturday or Sunday starts, in Location
	WeekendsOnly bool `json:"weekends_only,omitempty"`

	// nil matches both, true only online events, false only physical ones
	Online *bool `json:"online,omitempty"`

	SkipRepeating bool `json:"skip_repeating,omitempty"`

	// Location used for weekday checks; UTC when nil
	Location *time.Location `json:"-"`
}

// New creates a new empty filter with no active criteria.
func New() *Filter {
	return &Filter{}
}

// IsEmpty reports whether the filter would match all events.
func (f *Filter) IsEmpty() bool {
	return f.DateFrom == nil &&
		f.DateTo == nil &&
		len(f.Keywords) == 0 &&
		len(f.Cities) == 0 &&
		!f.WeekendsOnly &&
		f.Online == nil &&
		!f.SkipRepeating
}

// Matches checks if an event matches all active filter criteria.
func (f *Filter) Matches(evt *event.GenericEvent) bool {
	start := evt.StartTime()

	if f.DateFrom != nil && start.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && start.After(*f.DateTo) {
		return false
	}

	if f.WeekendsOnly {
		loc := f.Location
		if loc == nil {
			loc = time.UTC
		}
		switch start.In(loc).Weekday() {
		case time.Saturday, time.Sunday:
		default:
			return false
		}
	}

	if f.SkipRepeating && evt.IsRepeatingEvent {
		return false
	}

	if f.Online != nil {
		online := evt.Location != nil && evt.Location.Online
		if online != *f.Online {
			return false
		}
	}

	if len(f.Keywords) > 0 {
		text := evt.Title
		if evt.Description != nil {
			text += "\n" + *evt.Description
		}
		if !containsAny(text, f.Keywords) {
			return false
		}
	}

	if len(f.Cities) > 0 && !containsAny(placeText(evt.Location), f.Cities) {
		return false
	}

	return true
}

// Apply returns the events matching the filter. If the filter is empty the
// original list is returned unchanged.
func (f *Filter) Apply(events []*event.GenericEvent) []*event.GenericEvent {
	if f.IsEmpty() {
		return events
	}

	filtered := make([]*event.GenericEvent, 0, len(events))
	for _, evt := range events {
		if f.Matches(evt) {
			filtered = append(filtered, evt)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "From: Jan 2, 2026 | To: Jan 15, 2026 | Keywords: jazz | Weekends only"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if f.DateFrom != nil {
		parts = append(parts, fmt.Sprintf("From: %s", f.DateFrom.Format("Jan 2, 2006")))
	}
	if f.DateTo != nil {
		parts = append(parts, fmt.Sprintf("To: %s", f.DateTo.Format("Jan 2, 2006")))
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, fmt.Sprintf("Keywords: %s", strings.Join(f.Keywords, ", ")))
	}
	if len(f.Cities) > 0 {
		parts = append(parts, fmt.Sprintf("Cities: %s", strings.Join(f.Cities, ", ")))
	}
	if f.WeekendsOnly {
		parts = append(parts, "Weekends only")
	}
	if f.Online != nil {
		if *f.Online {
			parts = append(parts, "Online only")
		} else {
			parts = append(parts, "In person only")
		}
	}
	if f.SkipRepeating {
		parts = append(parts, "No repeating events")
	}

	return strings.Join(parts, " | ")
}

func containsAny(text string, needles []string) bool {
	text = strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(text, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// placeText joins the searchable parts of a physical location.
func placeText(loc *event.Location) string {
	if loc == nil || loc.Place == nil {
		return ""
	}

	p := loc.Place
	var parts []string
	for _, s := range []*string{p.City, p.ContextualName, p.Address, p.PlaceName, p.CityCountry} {
		if s != nil {
			parts = append(parts, *s)
		}
	}
	return strings.Join(parts, "\n")
}
