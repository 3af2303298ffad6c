package scraper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLs(t *testing.T) {
	tests := []struct {
		channel Channel
		want    []string
	}{
		{
			SemiAnnualEnterprise,
			[]string{BaseURL + "semi-annual-enterprise-channel", BaseURL + "semi-annual-enterprise-channel-archived"},
		},
		{
			SemiAnnualEnterprisePreview,
			[]string{BaseURL + "semi-annual-enterprise-channel-preview", BaseURL + "semi-annual-enterprise-channel-preview-archived"},
		},
		{
			MonthlyEnterprise,
			[]string{BaseURL + "monthly-enterprise-channel", BaseURL + "monthly-enterprise-channel-archived"},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			got, err := URLs(tt.channel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLs_All(t *testing.T) {
	got, err := URLs(All)
	require.NoError(t, err)

	require.Len(t, got, 8)
	assert.Contains(t, got, BaseURL+"current-channel")
	assert.Equal(t, BaseURL+"monthly-channel-archived", got[len(got)-1])

	for _, c := range []Channel{SemiAnnualEnterprise, SemiAnnualEnterprisePreview, MonthlyEnterprise} {
		urls, err := URLs(c)
		require.NoError(t, err)
		for _, u := range urls {
			assert.Contains(t, got, u)
		}
	}
}

func TestURLs_Unknown(t *testing.T) {
	for _, c := range []Channel{"", "current-channel", "all", "Monthly-Enterprise-Channel"} {
		t.Run(string(c), func(t *testing.T) {
			urls, err := URLs(c)
			assert.True(t, errors.Is(err, ErrUnknownChannel))
			assert.Empty(t, urls)
		})
	}
}

func TestURLs_ReturnsCopy(t *testing.T) {
	urls, err := URLs(MonthlyEnterprise)
	require.NoError(t, err)
	urls[0] = "changed"

	again, err := URLs(MonthlyEnterprise)
	require.NoError(t, err)
	assert.Equal(t, BaseURL+"monthly-enterprise-channel", again[0])
}

func TestChannels(t *testing.T) {
	assert.Equal(t, []Channel{
		SemiAnnualEnterprise,
		SemiAnnualEnterprisePreview,
		MonthlyEnterprise,
		All,
	}, Channels())
	assert.Equal(t, SemiAnnualEnterprise, DefaultChannel)
}

func TestMergeURLs(t *testing.T) {
	table := mergeURLs(map[string][]string{
		string(MonthlyEnterprise): {"https://mirror.example.com/mec"},
	})

	got, err := resolveURLs(table, MonthlyEnterprise)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://mirror.example.com/mec"}, got)

	// Overrides flow into All.
	all, err := resolveURLs(table, All)
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Contains(t, all, "https://mirror.example.com/mec")

	// All cannot be replaced wholesale.
	table = mergeURLs(map[string][]string{string(All): {"https://mirror.example.com/all"}})
	all, err = resolveURLs(table, All)
	require.NoError(t, err)
	assert.Len(t, all, 8)
	assert.NotContains(t, all, "https://mirror.example.com/all")

	// The built-in table is untouched.
	builtin, err := URLs(MonthlyEnterprise)
	require.NoError(t, err)
	assert.Len(t, builtin, 2)
}
