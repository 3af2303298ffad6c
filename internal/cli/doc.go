// Package cli implements the command-line interface for o365-builds.
//
// The cli package provides the Cobra command tree: fetch scrapes the update history pages
// and prints the version-to-build records (text, JSON or CSV), case renders a SQL CASE
// expression and table renders a commented-out table script. case and table either scrape
// a channel themselves or read records saved by an earlier "fetch --format json".
package cli
