package scraper

import (
	"errors"
	"fmt"
)

// Channel names an update-release track.
type Channel string

const (
	SemiAnnualEnterprise        Channel = "semi-annual-enterprise-channel"
	SemiAnnualEnterprisePreview Channel = "semi-annual-enterprise-channel-preview"
	MonthlyEnterprise           Channel = "monthly-enterprise-channel"
	All                         Channel = "All"

	DefaultChannel = SemiAnnualEnterprise

	// Legacy tracks, only reachable through All.
	currentChannel Channel = "current-channel"
	monthlyChannel Channel = "monthly-channel"
)

// BaseURL is the root of the update history pages.
const BaseURL = "https://learn.microsoft.com/en-us/officeupdates/"

// ErrUnknownChannel is returned by URLs for a channel outside the enumerated set.
var ErrUnknownChannel = errors.New("unknown channel")

// selectable lists the channels that can be requested individually, in All order.
var selectable = []Channel{
	SemiAnnualEnterprise,
	SemiAnnualEnterprisePreview,
	MonthlyEnterprise,
}

var defaultURLs = map[Channel][]string{
	SemiAnnualEnterprise: {
		BaseURL + "semi-annual-enterprise-channel",
		BaseURL + "semi-annual-enterprise-channel-archived",
	},
	SemiAnnualEnterprisePreview: {
		BaseURL + "semi-annual-enterprise-channel-preview",
		BaseURL + "semi-annual-enterprise-channel-preview-archived",
	},
	MonthlyEnterprise: {
		BaseURL + "monthly-enterprise-channel",
		BaseURL + "monthly-enterprise-channel-archived",
	},
	currentChannel: {
		BaseURL + "current-channel",
	},
	monthlyChannel: {
		BaseURL + "monthly-channel-archived",
	},
}

// legacy lists the tracks appended to All after the selectable channels.
var legacy = []Channel{currentChannel, monthlyChannel}

// Channels returns the accepted channel selectors, All last.
func Channels() []Channel {
	out := make([]Channel, 0, len(selectable)+1)
	out = append(out, selectable...)
	return append(out, All)
}

// Valid reports whether c is one of the accepted selectors.
func (c Channel) Valid() bool {
	if c == All {
		return true
	}
	for _, s := range selectable {
		if c == s {
			return true
		}
	}
	return false
}

// URLs resolves a channel against the built-in page table.
func URLs(c Channel) ([]string, error) {
	return resolveURLs(defaultURLs, c)
}

func resolveURLs(table map[Channel][]string, c Channel) ([]string, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, c)
	}

	if c != All {
		return append([]string(nil), table[c]...), nil
	}

	var urls []string
	for _, ch := range selectable {
		urls = append(urls, table[ch]...)
	}
	for _, ch := range legacy {
		urls = append(urls, table[ch]...)
	}
	return urls, nil
}

// mergeURLs copies the built-in table and applies overrides keyed by channel name.
// All is always derived from the other entries, so an "All" key has no effect.
func mergeURLs(overrides map[string][]string) map[Channel][]string {
	table := make(map[Channel][]string, len(defaultURLs)+len(overrides))
	for c, urls := range defaultURLs {
		table[c] = urls
	}
	for name, urls := range overrides {
		table[Channel(name)] = urls
	}
	return table
}
