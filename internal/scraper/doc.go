// Package scraper fetches Facebook event pages and turns them into generic events.
//
// A Fetcher retrieves raw pages, either through a real browser (see package
// browser) or with plain HTTP requests. The Scraper memoizes fetched pages in a
// storage.Cache and runs them through the extraction rules in packages extract
// and event. Pages are fetched one at a time; a Fetcher drives a single session.
package scraper
