package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"

	"github.com/pfrederiksen/fb-events/internal/calendar"
	"github.com/pfrederiksen/fb-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatICS  OutputFormat = "ics"
)

// Column widths of the text table, in terminal cells.
const (
	idWidth       = 18
	startWidth    = 16
	titleWidth    = 40
	locationWidth = 30
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatICS:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'ics')", s)
	}
}

// OutputResult contains data to be output
type OutputResult struct {
	ScrapedAt  time.Time             `json:"scraped_at"`
	Profile    string                `json:"profile,omitempty"`
	EventCount int                   `json:"event_count"`
	Events     []*event.GenericEvent `json:"events"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	case FormatICS:
		_, err := io.WriteString(w, calendar.GenerateICS(result.Events...))
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText prints one row per event. Titles and locations are cut to fit
// their column, counting wide characters as two cells.
func writeText(w io.Writer, result *OutputResult) error {
	if result.EventCount == 0 {
		fmt.Fprintln(w, "No events found.")
		return nil
	}

	if result.Profile != "" {
		fmt.Fprintf(w, "%s\n\n", result.Profile)
	}

	fmt.Fprintln(w, row("ID", "START (UTC)", "TITLE", "LOCATION"))
	for _, evt := range result.Events {
		start := evt.StartTime().Format("2006-01-02 15:04")
		if evt.IsRepeatingEvent {
			start += "*"
		}
		fmt.Fprintln(w, row(evt.ID, start, evt.Title, evt.Location.Name()))
	}

	fmt.Fprintf(w, "\nTotal: %d events\n", result.EventCount)
	if hasRepeating(result.Events) {
		fmt.Fprintln(w, "* repeating event, first occurrence shown")
	}

	return nil
}

func row(id, start, title, location string) string {
	cells := []string{
		cell(id, idWidth),
		cell(start, startWidth+1),
		cell(title, titleWidth),
		runewidth.Truncate(location, locationWidth, "…"),
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

func cell(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func hasRepeating(events []*event.GenericEvent) bool {
	for _, evt := range events {
		if evt.IsRepeatingEvent {
			return true
		}
	}
	return false
}
