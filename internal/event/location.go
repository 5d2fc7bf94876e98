package event

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/pfrederiksen/fb-events/internal/extract"
)

const (
	// OnlinePlaceName is the place name Facebook gives virtual events.
	OnlinePlaceName = "Online event"

	onlineSentinel = "online"
)

// EventLocation is a normalized physical location. Every field is optional.
type EventLocation struct {
	Address        *string  `json:"address"`
	City           *string  `json:"city"`
	ContextualName *string  `json:"contextual_name"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	PlaceName      *string  `json:"place_name"`
	CityCountry    *string  `json:"city_country"`
	CountryAlpha2  *string  `json:"country_alpha2"`
	PlaceURL       *string  `json:"place_url"`
}

// Location is either a physical place or the online sentinel. It encodes to
// JSON as the EventLocation object or as the string "online".
type Location struct {
	Online bool
	Place  *EventLocation
}

// NormalizeLocation maps the "event_place" and "location" fields of an event
// object to a Location. Each field is looked up on its own path, so any part of
// either object may be missing. A place named "Online event" yields the online
// sentinel whatever else is set.
func NormalizeLocation(obj extract.Object) *Location {
	place := extract.Lookup(obj, "event_place")
	location := extract.Lookup(obj, "location")

	loc := &EventLocation{
		Address:        extract.LookupString(place, "address", "street"),
		City:           extract.LookupString(place, "city", "contextual_name"),
		ContextualName: extract.LookupString(place, "city", "contextual_name"),
		Latitude:       extract.LookupFloat(place, "location", "latitude"),
		Longitude:      extract.LookupFloat(place, "location", "longitude"),
		PlaceName:      extract.LookupString(place, "name"),
		CityCountry:    extract.LookupString(location, "reverse_geocode", "city_page", "name"),
		CountryAlpha2:  extract.LookupString(place, "location", "reverse_geocode", "country_alpha_two"),
		PlaceURL:       extract.LookupString(place, "url"),
	}

	if loc.PlaceName != nil && *loc.PlaceName == OnlinePlaceName {
		return &Location{Online: true}
	}

	return &Location{Place: loc}
}

// MarshalJSON implements json.Marshaler.
func (l Location) MarshalJSON() ([]byte, error) {
	if l.Online {
		return json.Marshal(onlineSentinel)
	}
	if l.Place == nil {
		return []byte("null"), nil
	}
	return json.Marshal(l.Place)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Location) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*l = Location{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != onlineSentinel {
			return fmt.Errorf("unknown location %q", s)
		}
		*l = Location{Online: true}
		return nil
	}

	var place EventLocation
	if err := json.Unmarshal(data, &place); err != nil {
		return fmt.Errorf("decoding location: %w", err)
	}
	*l = Location{Place: &place}
	return nil
}

// Name returns a short human-readable description of the location.
func (l *Location) Name() string {
	switch {
	case l == nil:
		return ""
	case l.Online:
		return "Online"
	case l.Place == nil:
		return ""
	}

	p := l.Place
	for _, s := range []*string{p.PlaceName, p.Address, p.ContextualName, p.CityCountry} {
		if s != nil && *s != "" {
			return *s
		}
	}
	return ""
}
