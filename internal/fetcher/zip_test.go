package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractZIP_MultiFile(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"seo_keywords.csv": "Keyphrase,Current Position\ncustom lanyards,3\n",
		"ppc_standard.csv": "Keyword,Clicks\ntote bags,41\n",
	})
	destDir := t.TempDir()

	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "seo_keywords.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom lanyards")
}

func TestExtractZIP_WithSubdirectory(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"may2025/seo_keywords.csv": "Keyphrase\ncorporate gifts\n",
	})
	destDir := t.TempDir()

	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	assert.Equal(t, filepath.Join(destDir, "may2025", "seo_keywords.csv"), extracted[0])
}

func TestExtractZIP_ZipSlipPrevention(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"../escape.csv": "should not land outside",
	})
	destDir := t.TempDir()

	_, err := ExtractZIP(zipPath, destDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal path")
}

func TestExtractZIP_InvalidArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not_a_zip.zip")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := ExtractZIP(path, t.TempDir())
	require.Error(t, err)
}
