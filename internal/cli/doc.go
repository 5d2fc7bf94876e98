// Package cli implements the command-line interface for fb-events.
//
// The root command loads configuration, builds the cache, page fetcher and
// scraper, then hands them to one of the subcommands: profile lists every
// event on a page's events tab, event scrapes individual events, and serve
// exposes both over HTTP. Results are printed as a text table, JSON or an
// iCalendar feed.
package cli
