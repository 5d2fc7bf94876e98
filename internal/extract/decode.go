package extract

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Decode parses exactly one JSON value starting at offset in text and ignores
// everything after it. The page around an embedded object always continues past
// its closing brace, so a whole-string parse would fail on the trailing data;
// the streaming decoder stops as soon as the value is complete instead.
//
// It returns the value and the offset just past its last byte. A value that is
// malformed or cut short is a structural error. The value is first read raw,
// since InputOffset is only exact for raw reads when the value holds escapes.
func Decode(text string, offset int) (any, int, error) {
	if offset < 0 || offset > len(text) {
		return nil, 0, fmt.Errorf("%w: offset %d outside text of length %d", ErrStructure, offset, len(text))
	}

	dec := json.NewDecoder(strings.NewReader(text[offset:]))

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding JSON at offset %d: %v", ErrStructure, offset, err)
	}
	end := offset + int(dec.InputOffset())

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, 0, fmt.Errorf("%w: decoding JSON at offset %d: %v", ErrStructure, offset, err)
	}

	return v, end, nil
}

// DecodeAll decodes the value introduced by every match of m in text.
func DecodeAll(text string, m Marker) ([]any, error) {
	offsets := Scan(text, m)
	values := make([]any, 0, len(offsets))

	for _, offset := range offsets {
		v, _, err := Decode(text, offset)
		if err != nil {
			return nil, fmt.Errorf("marker %q: %w", m.String(), err)
		}
		values = append(values, v)
	}

	return values, nil
}
