package build

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidRecord is returned by Validate for records missing a version or build.
var ErrInvalidRecord = errors.New("invalid record")

// Record maps a product version to the build label shown on the update history pages.
type Record struct {
	Version Version `json:"version_number"`
	Build   string  `json:"build_number"`
}

// NewRecord builds a Record from a version prefix such as "16.0." and the suffix
// scraped from the page ("17928.20114").
func NewRecord(prefix, suffix, buildNumber string) (Record, error) {
	v, err := ParseVersion(prefix + suffix)
	if err != nil {
		return Record{}, err
	}
	return Record{Version: v, Build: buildNumber}, nil
}

// Validate checks that both fields are set.
func (r Record) Validate() error {
	if r.Version.IsZero() {
		return fmt.Errorf("%w: missing version number (build %q)", ErrInvalidRecord, r.Build)
	}
	if strings.TrimSpace(r.Build) == "" {
		return fmt.Errorf("%w: missing build number for %s", ErrInvalidRecord, r.Version)
	}
	return nil
}

// VersionNumber returns the dotted version string.
func (r Record) VersionNumber() string {
	return r.Version.String()
}

// Normalize sorts records by version ascending and keeps the first record of each version.
// The input slice is not modified.
func Normalize(records []Record) []Record {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Version.Compare(sorted[j].Version) < 0
	})

	seen := make(map[Version]bool)
	unique := make([]Record, 0, len(sorted))
	for _, r := range sorted {
		if !seen[r.Version] {
			seen[r.Version] = true
			unique = append(unique, r)
		}
	}

	return unique
}
