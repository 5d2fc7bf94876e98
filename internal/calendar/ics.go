// Package calendar renders scraped events as an iCalendar file.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/fb-events/internal/event"
)

// GenerateICS generates an iCalendar (.ics) file holding one VEVENT per event
func GenerateICS(events ...*event.GenericEvent) string {
	var ics strings.Builder

	ics.WriteString("BEGIN:VCALENDAR\r\n")
	ics.WriteString("VERSION:2.0\r\n")
	ics.WriteString("PRODID:-//fb-events//fb-events//EN\r\n")
	ics.WriteString("CALSCALE:GREGORIAN\r\n")
	ics.WriteString("METHOD:PUBLISH\r\n")

	now := time.Now().UTC()
	for _, evt := range events {
		writeEvent(&ics, evt, now)
	}

	ics.WriteString("END:VCALENDAR\r\n")

	return ics.String()
}

func writeEvent(ics *strings.Builder, evt *event.GenericEvent, now time.Time) {
	ics.WriteString("BEGIN:VEVENT\r\n")

	// UID - unique identifier for the event
	ics.WriteString(fmt.Sprintf("UID:%s@facebook.com\r\n", evt.ID))

	// DTSTAMP - timestamp when this calendar entry was created
	ics.WriteString(fmt.Sprintf("DTSTAMP:%s\r\n", formatICSTime(now)))

	ics.WriteString(fmt.Sprintf("DTSTART:%s\r\n", formatICSTime(evt.StartTime())))
	if end, ok := evt.EndTime(); ok {
		ics.WriteString(fmt.Sprintf("DTEND:%s\r\n", formatICSTime(end)))
	}

	ics.WriteString(fmt.Sprintf("SUMMARY:%s\r\n", escapeICS(evt.Title)))

	if evt.Description != nil && *evt.Description != "" {
		ics.WriteString(fmt.Sprintf("DESCRIPTION:%s\r\n", escapeICS(*evt.Description)))
	}

	if location := locationText(evt.Location); location != "" {
		ics.WriteString(fmt.Sprintf("LOCATION:%s\r\n", escapeICS(location)))
	}
	if evt.Location != nil && evt.Location.Place != nil {
		p := evt.Location.Place
		if p.Latitude != nil && p.Longitude != nil {
			ics.WriteString(fmt.Sprintf("GEO:%f;%f\r\n", *p.Latitude, *p.Longitude))
		}
	}

	ics.WriteString(fmt.Sprintf("URL:%s\r\n", evt.SourceURL))

	if evt.IsRepeatingEvent {
		ics.WriteString("CATEGORIES:RECURRING\r\n")
	}

	ics.WriteString("STATUS:CONFIRMED\r\n")
	ics.WriteString("SEQUENCE:0\r\n")
	ics.WriteString("TRANSP:OPAQUE\r\n")

	ics.WriteString("END:VEVENT\r\n")
}

// locationText joins the distinct non-empty parts of a place, most specific first.
func locationText(loc *event.Location) string {
	if loc == nil {
		return ""
	}
	if loc.Online || loc.Place == nil {
		return loc.Name()
	}

	p := loc.Place
	parts := make([]string, 0, 3)
	for _, s := range []*string{p.PlaceName, p.Address, p.City} {
		if s == nil || *s == "" {
			continue
		}
		dup := false
		for _, have := range parts {
			if have == *s {
				dup = true
				break
			}
		}
		if !dup {
			parts = append(parts, *s)
		}
	}

	return strings.Join(parts, ", ")
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
