package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRawLeadsCSV(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "leads.csv",
		"Name,Email Address,Phone\n"+
			"Acme,Buyer@Acme.com,123\n"+
			"Empty,,456\n"+
			"Bad,not-an-email,789\n"+
			"Dup,buyer@acme.com,123\n"+
			"Org,sales@org.net,000\n")

	leads, skipped, err := LoadRawLeads(path)
	require.NoError(t, err)

	require.Len(t, leads, 2)
	assert.Equal(t, "buyer@acme.com", leads[0].Email)
	assert.Equal(t, "sales@org.net", leads[1].Email)
	// One invalid address plus one duplicate.
	assert.Equal(t, 2, skipped)
}

func TestLoadRawLeadsHeaderlessCSV(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "leads.csv",
		"first@corp.com,Singapore\n"+
			"second@corp.sg,Singapore\n")

	leads, skipped, err := LoadRawLeads(path)
	require.NoError(t, err)

	require.Len(t, leads, 2)
	assert.Equal(t, "first@corp.com", leads[0].Email)
	assert.Equal(t, "second@corp.sg", leads[1].Email)
	assert.Zero(t, skipped)
}

func TestLoadRawLeadsPlainText(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "leads.txt",
		"one@a.com\n\nnot-an-email\ntwo@b.com\n")

	leads, skipped, err := LoadRawLeads(path)
	require.NoError(t, err)

	require.Len(t, leads, 2)
	assert.Equal(t, "one@a.com", leads[0].Email)
	assert.Equal(t, "two@b.com", leads[1].Email)
	assert.Equal(t, 1, skipped)
}

func TestLoadRawLeadsNoValidEmails(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "leads.csv", "Email\n\n")
	_, _, err := LoadRawLeads(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no valid lead emails")
}

func TestLoadWhitelist(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "domains.csv",
		"Domain\n"+
			"Acme.COM\n"+
			"sales@partner.org\n"+
			"acme.com\n"+
			"nodot\n"+
			"trusted.sg\n")

	domains, err := LoadWhitelist(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"acme.com", "partner.org", "trusted.sg"}, domains)
}

func TestLoadWhitelistFirstRowIsData(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "domains.csv", "first.com\nsecond.net\n")

	domains, err := LoadWhitelist(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"first.com", "second.net"}, domains)
}

func TestLoadWhitelistMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadWhitelist("does-not-exist.csv")
	require.Error(t, err)
}

func TestLoadCustomerEmails(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "customers.csv",
		"Customer,Email\n"+
			"Acme,KNOWN@Customer.com\n"+
			"Bad,no-at-sign\n")

	set, skipped, err := LoadCustomerEmails(path)
	require.NoError(t, err)

	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains("known@customer.com"))
	assert.Equal(t, 1, skipped)
}
