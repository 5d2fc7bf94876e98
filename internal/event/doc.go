// Package event turns fetched Facebook event pages into generic event records.
//
// A GenericEvent is assembled from the page's title and cover image, the
// reconciled start and end timestamps, the event's description and a
// normalized location. Locations are either a physical place, the "online"
// sentinel for virtual events, or absent.
package event
