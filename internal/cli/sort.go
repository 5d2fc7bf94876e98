package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pfrederiksen/fb-events/internal/event"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortNone    SortOrder = ""
	SortByDate  SortOrder = "date"
	SortByTitle SortOrder = "title"
)

// ParseSortOrder validates a --sort value. Empty keeps page order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortNone, SortByDate, SortByTitle:
		return o, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'date' or 'title')", s)
	}
}

// sortEvents sorts a slice of events based on the specified sort order
func sortEvents(events []*event.GenericEvent, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(events, func(i, j int) bool {
			return compareByDate(events[i], events[j])
		})
	case SortByTitle:
		sort.SliceStable(events, func(i, j int) bool {
			ti, tj := strings.ToLower(events[i].Title), strings.ToLower(events[j].Title)
			if ti != tj {
				return ti < tj
			}
			return compareByDate(events[i], events[j])
		})
	}
}

// compareByDate orders by start, then by end with open-ended events last,
// then by title.
func compareByDate(i, j *event.GenericEvent) bool {
	if i.StartTimestamp != j.StartTimestamp {
		return i.StartTimestamp < j.StartTimestamp
	}

	endI, okI := i.EndTime()
	endJ, okJ := j.EndTime()
	switch {
	case okI && okJ && !endI.Equal(endJ):
		return endI.Before(endJ)
	case okI != okJ:
		return okI
	}

	return strings.ToLower(i.Title) < strings.ToLower(j.Title)
}
