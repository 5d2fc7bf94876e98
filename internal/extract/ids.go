package extract

import "regexp"

// eventURLPattern matches plain event permalinks. The slash-escaped copies
// inside embedded JSON belong to suggested and related events, not the listing.
var eventURLPattern = regexp.MustCompile(`https://www\.facebook\.com/events/(\d+)/`)

// EventIDs returns the IDs of all event permalinks in html, without duplicates,
// in the order each first appears. Events listed earlier on a profile are the
// ones coming up sooner, so the order is kept exactly.
func EventIDs(html string) []string {
	matches := eventURLPattern.FindAllStringSubmatch(html, -1)

	seen := make(map[string]bool)
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return ids
}
