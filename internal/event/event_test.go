package event

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/pfrederiksen/fb-events/internal/extract"
)

const eventSource = `<html><head><title>Summer Party</title></head><body><script>
{"require":[["RelayPrefetchedStreamCache",{"event":{"id":"555","name":"Other"}},
{"current_start_timestamp":1700000000,"end_timestamp":1600000000},
{"event":{"id":"123","location":{"reverse_geocode":{"city_page":{"name":"Copenhagen, Denmark"}}},
"event_description":{"text":"Bring snacks"},
"event_place":{"name":"Town Hall","url":"https://www.facebook.com/townhall",
"address":{"street":"Main St 1"},"city":{"contextual_name":"Copenhagen"},
"location":{"latitude":55.67,"longitude":12.56,"reverse_geocode":{"country_alpha_two":"DK"}}}}},
{"end_timestamp":1700007200},{"end_timestamp":1700086400}]]}
</script></body></html>`

func TestParse(t *testing.T) {
	cover := "https://scontent.example/cover.jpg"
	page := &extract.EventPage{
		ID:            "123",
		Title:         "Summer Party",
		Source:        eventSource,
		CoverImageURL: &cover,
	}

	evt, err := Parse(page)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if evt.ID != "123" {
		t.Errorf("ID = %q, want 123", evt.ID)
	}
	if evt.SourceURL != "https://www.facebook.com/events/123/" {
		t.Errorf("SourceURL = %q", evt.SourceURL)
	}
	if evt.Title != "Summer Party" {
		t.Errorf("Title = %q, want Summer Party", evt.Title)
	}
	if evt.Description == nil || *evt.Description != "Bring snacks" {
		t.Errorf("Description = %v, want Bring snacks", evt.Description)
	}
	if evt.StartTimestamp != 1700000000 {
		t.Errorf("StartTimestamp = %d, want 1700000000", evt.StartTimestamp)
	}
	if evt.EndTimestamp == nil || *evt.EndTimestamp != 1700007200 {
		t.Errorf("EndTimestamp = %v, want 1700007200", evt.EndTimestamp)
	}
	if evt.IsRepeatingEvent {
		t.Error("IsRepeatingEvent = true, want false")
	}
	if evt.CoverImageURL == nil || *evt.CoverImageURL != cover {
		t.Errorf("CoverImageURL = %v, want %s", evt.CoverImageURL, cover)
	}
	if evt.Location == nil || evt.Location.Place == nil {
		t.Fatalf("Location = %+v, want a place", evt.Location)
	}
	if p := evt.Location.Place.PlaceName; p == nil || *p != "Town Hall" {
		t.Errorf("PlaceName = %v, want Town Hall", p)
	}
}

func TestParse_StructureErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "no start timestamp",
			source: strings.Replace(eventSource, "current_start_timestamp", "other_timestamp", 1),
		},
		{
			name:   "no event object",
			source: `{"current_start_timestamp":1700000000}`,
		},
		{
			name:   "event object without id",
			source: `{"current_start_timestamp":1,"event":{"location":null,"event_description":null}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Parse(&extract.EventPage{ID: "123", Source: tt.source})
			if evt != nil {
				t.Errorf("Parse() returned partial event %+v", evt)
			}
			if !errors.Is(err, extract.ErrStructure) {
				t.Errorf("Parse() error = %v, want ErrStructure", err)
			}
		})
	}
}

func TestIsRepeating(t *testing.T) {
	tests := []struct {
		name      string
		objectID  any
		requested string
		want      bool
	}{
		{name: "same id", objectID: "123", requested: "123", want: false},
		{name: "different id means event set", objectID: "456", requested: "123", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsRepeating(extract.Object{"id": tt.objectID}, tt.requested)
			if err != nil {
				t.Fatalf("IsRepeating() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsRepeating() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRepeating_NonStringID(t *testing.T) {
	// Numeric IDs past 2^53 lose digits as float64, so only string IDs are compared.
	for _, id := range []any{float64(1234567890123456), nil, map[string]any{}} {
		_, err := IsRepeating(extract.Object{"id": id}, "1234567890123456")
		if !errors.Is(err, extract.ErrStructure) {
			t.Errorf("IsRepeating(id=%v) error = %v, want ErrStructure", id, err)
		}
	}
}

func TestAssemble_MissingOptionalFields(t *testing.T) {
	obj := extract.Object{"id": "9", "location": nil, "event_description": nil, "event_place": nil}

	evt, err := Assemble(&extract.EventPage{ID: "9", Title: "T"}, obj, extract.Timestamps{Start: 10})
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}
	if evt.Description != nil {
		t.Errorf("Description = %q, want nil", *evt.Description)
	}
	if evt.CoverImageURL != nil {
		t.Errorf("CoverImageURL = %q, want nil", *evt.CoverImageURL)
	}
	if evt.EndTimestamp != nil {
		t.Errorf("EndTimestamp = %d, want nil", *evt.EndTimestamp)
	}
}

func TestGenericEvent_JSONRoundTrip(t *testing.T) {
	desc := "desc"
	end := int64(1700003600)
	street := "Main St 1"
	lat := 55.67

	events := []*GenericEvent{
		{
			ID:             "1",
			SourceURL:      SourceURL("1"),
			Title:          "Physical",
			Description:    &desc,
			StartTimestamp: 1700000000,
			EndTimestamp:   &end,
			Location:       &Location{Place: &EventLocation{Address: &street, Latitude: &lat}},
		},
		{
			ID:               "2",
			SourceURL:        SourceURL("2"),
			Title:            "Online",
			StartTimestamp:   1700000000,
			Location:         &Location{Online: true},
			IsRepeatingEvent: true,
		},
		{
			ID:             "3",
			SourceURL:      SourceURL("3"),
			Title:          "Nowhere",
			StartTimestamp: 1,
		},
	}

	for _, want := range events {
		t.Run(want.Title, func(t *testing.T) {
			data, err := json.Marshal(want)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}

			var got GenericEvent
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}

			if !reflect.DeepEqual(&got, want) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, *want)
			}
		})
	}
}

func TestGenericEvent_FlatFields(t *testing.T) {
	evt := &GenericEvent{ID: "2", SourceURL: SourceURL("2"), Location: &Location{Online: true}}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	for _, key := range []string{"id", "source_url", "title", "description", "start_timestamp",
		"end_timestamp", "location", "cover_image_url", "is_repeating_event"} {
		if _, ok := flat[key]; !ok {
			t.Errorf("encoded event missing %q", key)
		}
	}
	if flat["location"] != "online" {
		t.Errorf("location = %v, want online", flat["location"])
	}
}

func TestEventTimes(t *testing.T) {
	end := int64(1700003600)
	evt := &GenericEvent{StartTimestamp: 1700000000, EndTimestamp: &end}

	if got := evt.StartTime(); got.Unix() != 1700000000 || got.Location().String() != "UTC" {
		t.Errorf("StartTime() = %v", got)
	}
	if got, ok := evt.EndTime(); !ok || got.Unix() != end {
		t.Errorf("EndTime() = %v, %v", got, ok)
	}

	evt.EndTimestamp = nil
	if _, ok := evt.EndTime(); ok {
		t.Error("EndTime() ok = true for missing end")
	}
}
