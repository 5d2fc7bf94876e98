package filter

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/fb-events/internal/event"
)

func str(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func date(y int, m time.Month, d, h int) *time.Time {
	t := time.Date(y, m, d, h, 0, 0, 0, time.UTC)
	return &t
}

func testEvents() []*event.GenericEvent {
	return []*event.GenericEvent{
		{
			ID:             "1",
			Title:          "Jazz Night",
			StartTimestamp: date(2026, time.March, 7, 20).Unix(), // Saturday
			Location: &event.Location{Place: &event.EventLocation{
				City:      str("Copenhagen"),
				PlaceName: str("Kulturhuset"),
			}},
		},
		{
			ID:             "2",
			Title:          "Board games",
			Description:    str("Bring your own jazz records"),
			StartTimestamp: date(2026, time.March, 10, 18).Unix(), // Tuesday
			Location:       &event.Location{Online: true},
		},
		{
			ID:               "3",
			Title:            "Weekly run",
			StartTimestamp:   date(2026, time.April, 5, 9).Unix(), // Sunday
			IsRepeatingEvent: true,
			Location: &event.Location{Place: &event.EventLocation{
				Address: str("Strandvejen 1, Aarhus"),
			}},
		},
	}
}

func ids(events []*event.GenericEvent) string {
	out := make([]string, len(events))
	for i, evt := range events {
		out[i] = evt.ID
	}
	return strings.Join(out, ",")
}

func TestFilter_Apply(t *testing.T) {
	tests := []struct {
		name   string
		filter *Filter
		want   string
	}{
		{name: "empty", filter: New(), want: "1,2,3"},
		{name: "date from", filter: &Filter{DateFrom: date(2026, time.March, 8, 0)}, want: "2,3"},
		{name: "date to", filter: &Filter{DateTo: date(2026, time.March, 31, 0)}, want: "1,2"},
		{name: "keyword in title or description", filter: &Filter{Keywords: []string{"JAZZ"}}, want: "1,2"},
		{name: "any keyword", filter: &Filter{Keywords: []string{"run", "board"}}, want: "2,3"},
		{name: "city", filter: &Filter{Cities: []string{"copenhagen"}}, want: "1"},
		{name: "city in address", filter: &Filter{Cities: []string{"aarhus"}}, want: "3"},
		{name: "weekends", filter: &Filter{WeekendsOnly: true}, want: "1,3"},
		{name: "online only", filter: &Filter{Online: boolPtr(true)}, want: "2"},
		{name: "in person only", filter: &Filter{Online: boolPtr(false)}, want: "1,3"},
		{name: "skip repeating", filter: &Filter{SkipRepeating: true}, want: "1,2"},
		{
			name:   "combined",
			filter: &Filter{WeekendsOnly: true, Online: boolPtr(false), SkipRepeating: true},
			want:   "1",
		},
		{name: "nothing matches", filter: &Filter{Keywords: []string{"opera"}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tt.filter.Apply(testEvents())); got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilter_WeekendsInLocation(t *testing.T) {
	// Friday 23:30 UTC is Saturday in Copenhagen.
	evt := &event.GenericEvent{StartTimestamp: date(2026, time.March, 6, 23).Unix() + 1800}

	f := &Filter{WeekendsOnly: true}
	if f.Matches(evt) {
		t.Error("Matches() = true in UTC")
	}

	loc, err := time.LoadLocation("Europe/Copenhagen")
	if err != nil {
		t.Skipf("no tzdata: %v", err)
	}
	f.Location = loc
	if !f.Matches(evt) {
		t.Error("Matches() = false in Europe/Copenhagen")
	}
}

func TestFilter_String(t *testing.T) {
	if got := New().String(); got != "No active filters" {
		t.Errorf("String() = %q", got)
	}

	f := &Filter{
		DateFrom:     date(2026, time.March, 1, 0),
		Keywords:     []string{"jazz", "blues"},
		WeekendsOnly: true,
		Online:       boolPtr(false),
	}
	want := "From: Mar 1, 2026 | Keywords: jazz, blues | Weekends only | In person only"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
