package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	startTimestampPattern = regexp.MustCompile(`"current_start_timestamp":(\d+)`)
	endTimestampPattern   = regexp.MustCompile(`"end_timestamp":(\d+)`)
)

// Timestamps is the start and optional end of an event in epoch seconds.
type Timestamps struct {
	Start int64
	End   *int64
}

// ReconcileTimestamps picks the start and end of the event on an event page.
//
// The page must mention exactly one start timestamp. End timestamps appear for
// related events too, so the one chosen is the closest after the start. An end
// equal to the start is only used when nothing later exists. An end of 0 is
// reported as absent.
func ReconcileTimestamps(source string) (Timestamps, error) {
	starts, err := findTimestamps(source, startTimestampPattern)
	if err != nil {
		return Timestamps{}, err
	}
	if len(starts) != 1 {
		return Timestamps{}, fmt.Errorf("%w: found %d start timestamps, want 1", ErrStructure, len(starts))
	}
	start := starts[0]

	ends, err := findTimestamps(source, endTimestampPattern)
	if err != nil {
		return Timestamps{}, err
	}

	end := closestEnd(start, ends)

	// A literal zero end timestamp stands for "no end" in the page data.
	if end != nil && *end == 0 {
		end = nil
	}

	return Timestamps{Start: start, End: end}, nil
}

func closestEnd(start int64, ends []int64) *int64 {
	var later, same *int64
	for _, t := range ends {
		switch {
		case t == start:
			if same == nil {
				same = &t
			}
		case t > start:
			if later == nil || t < *later {
				later = &t
			}
		}
	}
	if later != nil {
		return later
	}
	return same
}

func findTimestamps(source string, pattern *regexp.Regexp) ([]int64, error) {
	matches := pattern.FindAllStringSubmatch(source, -1)
	values := make([]int64, 0, len(matches))

	for _, m := range matches {
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q: %v", ErrStructure, m[1], err)
		}
		values = append(values, v)
	}

	return values, nil
}
