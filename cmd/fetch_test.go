package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/config"
	"github.com/sells-group/attribution-cli/internal/fetcher"
)

func TestDestName(t *testing.T) {
	assert.Equal(t, "seo_keywords.csv", destName("ftp://agency.example.com/exports/seo_keywords.csv"))
	assert.Equal(t, "ppc.xlsx", destName("https://agency.example.com/drop/ppc.xlsx?token=abc"))
	assert.Equal(t, "plain.csv", destName("plain.csv"))
}

func TestResolveFetchURL_BareName(t *testing.T) {
	cfg = &config.Config{FTP: config.FTPConfig{URL: "ftp://agency.example.com/exports/"}}

	got, err := resolveFetchURL("seo_keywords.csv")
	require.NoError(t, err)
	assert.Equal(t, "ftp://agency.example.com/exports/seo_keywords.csv", got)
}

func TestResolveFetchURL_FullURLPassesThrough(t *testing.T) {
	cfg = &config.Config{}

	got, err := resolveFetchURL("https://agency.example.com/drop/ppc.zip")
	require.NoError(t, err)
	assert.Equal(t, "https://agency.example.com/drop/ppc.zip", got)
}

func TestResolveFetchURL_BareNameNeedsDrop(t *testing.T) {
	cfg = &config.Config{}

	_, err := resolveFetchURL("seo_keywords.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ftp.url")
}

func TestNewFetcher_SchemeDispatch(t *testing.T) {
	cfg = &config.Config{FTP: config.FTPConfig{TimeoutSecs: 5}}

	_, isHTTP := newFetcher("https://agency.example.com/drop/ppc.csv").(*fetcher.HTTPFetcher)
	assert.True(t, isHTTP)

	_, isFTP := newFetcher("ftp://agency.example.com/exports/seo.csv").(*fetcher.FTPFetcher)
	assert.True(t, isFTP)
}
