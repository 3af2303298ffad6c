// Package scraper fetches the Microsoft 365 Apps update history pages and extracts
// version-to-build records from them.
//
// Each update channel is served by a current page and an archived page. For every page
// the scraper issues one GET, scans the body for lines of the form
//
//	<p><em>Version 2308 (Build 16731.20716)</em></p>
//
// and turns each match into a build.Record with version 16.0.16731.20716. Pages that fail
// to load or return a non-200 status contribute no records; the run never aborts. Results
// from all pages are sorted by version and deduplicated.
package scraper
