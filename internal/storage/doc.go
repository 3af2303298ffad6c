// Package storage reads and writes record snapshots as JSON files.
//
// A snapshot holds the records of one fetch run together with the channel and time of the
// run, so that SQL can be regenerated later without scraping the pages again.
package storage
