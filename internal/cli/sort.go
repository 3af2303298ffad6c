package cli

import (
	"sort"

	"github.com/pfrederiksen/o365-builds/internal/build"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByVersion SortOrder = "version"
	SortNewest    SortOrder = "newest"
)

// Valid reports whether o is a supported order.
func (o SortOrder) Valid() bool {
	return o == SortByVersion || o == SortNewest
}

// sortRecords returns records in the requested display order. Records from the scraper
// are already ascending by version.
func sortRecords(records []build.Record, order SortOrder) []build.Record {
	if order != SortNewest {
		return records
	}

	sorted := make([]build.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Version.Compare(sorted[j].Version) > 0
	})
	return sorted
}
