package spam

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteResults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	results := []Result{
		{Email: "keep@acme.com", Classification: ClassNotSpam, Reason: "Whitelisted domain"},
		{Email: "drop@junk.com", Classification: ClassSpam, Reason: "No ticket history in period March 2025 - May 2025"},
		{Email: "buyer@corp.sg", Classification: ClassNotSpam, Reason: "Sales team interaction found in ticket 7: Found sales phrase: 'attached the quotation'", TicketCount: 3},
	}

	notSpam, spam, err := WriteResults(dir, results)
	require.NoError(t, err)
	assert.Equal(t, 2, notSpam)
	assert.Equal(t, 1, spam)

	kept, err := LoadResults(filepath.Join(dir, NotSpamFile))
	require.NoError(t, err)
	require.Len(t, kept, 2)
	assert.Equal(t, "keep@acme.com", kept[0].Email)
	assert.Equal(t, "buyer@corp.sg", kept[1].Email)
	assert.Equal(t, 3, kept[1].TicketCount)

	dropped, err := LoadResults(filepath.Join(dir, SpamFile))
	require.NoError(t, err)
	require.Len(t, dropped, 1)
	assert.Equal(t, "drop@junk.com", dropped[0].Email)
}

func TestWriteResults_EmptyClassStillWritesHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	results := []Result{
		{Email: "keep@acme.com", Classification: ClassNotSpam, Reason: "Whitelisted domain"},
	}

	notSpam, spam, err := WriteResults(dir, results)
	require.NoError(t, err)
	assert.Equal(t, 1, notSpam)
	assert.Zero(t, spam)

	data, err := os.ReadFile(filepath.Join(dir, SpamFile))
	require.NoError(t, err)
	assert.Equal(t, "email,classification,reason,ticket_count\n", string(data))

	dropped, err := LoadResults(filepath.Join(dir, SpamFile))
	require.NoError(t, err)
	assert.Empty(t, dropped)
}

func TestWriteResults_ReasonWithCommasSurvivesRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	reason := `No sales team interaction found in 2 tickets - Details: No sales interactions found in conversations; Error retrieving conversations: freshdesk: status 500, body "slow down"`
	_, _, err := WriteResults(dir, []Result{
		{Email: "a@b.com", Classification: ClassSpam, Reason: reason, TicketCount: 2},
	})
	require.NoError(t, err)

	loaded, err := LoadResults(filepath.Join(dir, SpamFile))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, reason, loaded[0].Reason)
}

func TestLoadResults_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadResults(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spam: read")
}
