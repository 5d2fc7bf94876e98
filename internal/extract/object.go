package extract

import "fmt"

// PartialEvents decodes the event nodes embedded in a profile's events feed,
// in page order. These carry less detail than a full event page.
func PartialEvents(prerender string) ([]Object, error) {
	values, err := DecodeAll(prerender, PartialEventMarker)
	if err != nil {
		return nil, err
	}

	events := make([]Object, 0, len(values))
	for _, v := range values {
		if obj, ok := v.(map[string]any); ok {
			events = append(events, obj)
		}
	}

	return events, nil
}

// EventObject finds the one object on an event page describing the event
// itself. Many "event" objects are embedded; the right one is the only one
// carrying both a location and an event description.
func EventObject(source string) (Object, error) {
	values, err := DecodeAll(source, EventObjectMarker)
	if err != nil {
		return nil, err
	}

	var found []Object
	for _, v := range values {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		_, hasLocation := obj["location"]
		_, hasDescription := obj["event_description"]
		if hasLocation && hasDescription {
			found = append(found, obj)
		}
	}

	if len(found) != 1 {
		return nil, fmt.Errorf("%w: found %d event objects with location and description, want 1", ErrStructure, len(found))
	}

	return found[0], nil
}
