package event

import (
	"fmt"
	"time"

	"github.com/pfrederiksen/fb-events/internal/extract"
)

// SourceURLFormat is the public permalink of an event, keyed by its ID.
const SourceURLFormat = "https://www.facebook.com/events/%s/"

// GenericEvent is a scraped event in a source-independent shape.
type GenericEvent struct {
	ID               string    `json:"id"`
	SourceURL        string    `json:"source_url"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	StartTimestamp   int64     `json:"start_timestamp"`
	EndTimestamp     *int64    `json:"end_timestamp"`
	Location         *Location `json:"location"`
	CoverImageURL    *string   `json:"cover_image_url"`
	IsRepeatingEvent bool      `json:"is_repeating_event"`
}

// SourceURL returns the permalink for the event with the given ID.
func SourceURL(id string) string {
	return fmt.Sprintf(SourceURLFormat, id)
}

// Parse extracts a GenericEvent from a fetched event page. Either the whole
// record is built or an error is returned; errors caused by the page shape
// wrap extract.ErrStructure.
func Parse(page *extract.EventPage) (*GenericEvent, error) {
	ts, err := extract.ReconcileTimestamps(page.Source)
	if err != nil {
		return nil, fmt.Errorf("event %s: timestamps: %w", page.ID, err)
	}

	obj, err := extract.EventObject(page.Source)
	if err != nil {
		return nil, fmt.Errorf("event %s: event object: %w", page.ID, err)
	}

	evt, err := Assemble(page, obj, ts)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", page.ID, err)
	}

	return evt, nil
}

// Assemble combines the parts extracted from an event page into a GenericEvent.
func Assemble(page *extract.EventPage, obj extract.Object, ts extract.Timestamps) (*GenericEvent, error) {
	repeating, err := IsRepeating(obj, page.ID)
	if err != nil {
		return nil, err
	}

	return &GenericEvent{
		ID:               page.ID,
		SourceURL:        SourceURL(page.ID),
		Title:            page.Title,
		Description:      extract.LookupString(obj, "event_description", "text"),
		StartTimestamp:   ts.Start,
		EndTimestamp:     ts.End,
		Location:         NormalizeLocation(obj),
		CoverImageURL:    page.CoverImageURL,
		IsRepeatingEvent: repeating,
	}, nil
}

// IsRepeating reports whether the requested ID belongs to a recurring event
// set. Facebook serves a set's page with the object of another occurrence, so
// an object ID different from the requested one marks a set.
func IsRepeating(obj extract.Object, requestedID string) (bool, error) {
	id, ok := objectID(obj)
	if !ok {
		return false, fmt.Errorf("%w: event object has no string id", extract.ErrStructure)
	}
	return id != requestedID, nil
}

// objectID returns the object's id. Only string ids count: numeric ones are
// too long to survive float64.
func objectID(obj extract.Object) (string, bool) {
	id, ok := obj["id"].(string)
	return id, ok
}

// StartTime returns the start of the event in UTC.
func (e *GenericEvent) StartTime() time.Time {
	return time.Unix(e.StartTimestamp, 0).UTC()
}

// EndTime returns the end of the event in UTC, if known.
func (e *GenericEvent) EndTime() (time.Time, bool) {
	if e.EndTimestamp == nil {
		return time.Time{}, false
	}
	return time.Unix(*e.EndTimestamp, 0).UTC(), true
}
