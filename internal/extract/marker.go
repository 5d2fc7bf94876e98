package extract

import "strings"

// Marker identifies an embedded JSON object in page text. A match is Prefix
// immediately followed by Follow; the object starts right after Prefix, so
// Follow is the beginning of the value itself.
type Marker struct {
	Prefix string
	Follow string
}

var (
	// PartialEventMarker matches event nodes in a profile's events feed.
	PartialEventMarker = Marker{Prefix: `"node":`, Follow: `{"__typename":"Event"`}

	// EventObjectMarker matches every "event" object on a single event page.
	EventObjectMarker = Marker{Prefix: `"event":`, Follow: `{`}
)

// String returns the full literal the marker matches.
func (m Marker) String() string {
	return m.Prefix + m.Follow
}

// Scan returns the byte offsets in text where a value introduced by m begins,
// in ascending order. Matches may overlap. No match gives an empty slice.
func Scan(text string, m Marker) []int {
	pattern := m.String()
	offsets := make([]int, 0)
	if pattern == "" {
		return offsets
	}

	for from := 0; from <= len(text)-len(pattern); {
		i := strings.Index(text[from:], pattern)
		if i < 0 {
			break
		}
		at := from + i
		offsets = append(offsets, at+len(m.Prefix))
		from = at + 1
	}

	return offsets
}
