package notion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const summaryCSV = `source,lead_count,percentage,avg_confidence,min_confidence,max_confidence,high_confidence_count,high_confidence_pct,top_product
SEO,12,48.0,71.25,30.00,95.00,7,58.3,lanyards
Direct,6,24.0,95.00,95.00,95.00,6,100.0,
`

func writeSummaryCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attribution_summary.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func titleContent(p notionapi.Properties, name string) string {
	tp, ok := p[name].(notionapi.TitleProperty)
	if !ok || len(tp.Title) == 0 {
		return ""
	}
	return tp.Title[0].Text.Content
}

func richTextContent(p notionapi.Properties, name string) string {
	rt, ok := p[name].(notionapi.RichTextProperty)
	if !ok || len(rt.RichText) == 0 {
		return ""
	}
	return rt.RichText[0].Text.Content
}

func numberValue(p notionapi.Properties, name string) (float64, bool) {
	np, ok := p[name].(notionapi.NumberProperty)
	if !ok {
		return 0, false
	}
	return np.Number, true
}

func TestPublishSummaryCSV(t *testing.T) {
	path := writeSummaryCSV(t, summaryCSV)
	mc := new(MockClient)
	ctx := context.Background()

	var requests []*notionapi.PageCreateRequest
	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Run(func(args mock.Arguments) {
			requests = append(requests, args.Get(1).(*notionapi.PageCreateRequest))
		}).
		Return(&notionapi.Page{ID: "page"}, nil).
		Twice()

	created, err := PublishSummaryCSV(ctx, mc, "db-123", "March 2025 - May 2025", path)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	mc.AssertExpectations(t)

	require.Len(t, requests, 2)
	seo := requests[0].Properties
	assert.Equal(t, notionapi.DatabaseID("db-123"), requests[0].Parent.DatabaseID)
	assert.Equal(t, "SEO", titleContent(seo, "Source"))
	assert.Equal(t, "lanyards", richTextContent(seo, "Top Product"))
	assert.Equal(t, "March 2025 - May 2025", richTextContent(seo, "Analysis Period"))

	if n, ok := numberValue(seo, "Leads"); assert.True(t, ok) {
		assert.InDelta(t, 12, n, 0.001)
	}
	if n, ok := numberValue(seo, "Avg Confidence"); assert.True(t, ok) {
		assert.InDelta(t, 71.25, n, 0.001)
	}

	direct := requests[1].Properties
	assert.Equal(t, "Direct", titleContent(direct, "Source"))
	// Empty top_product is omitted rather than sent as an empty rich text.
	_, hasTop := direct["Top Product"]
	assert.False(t, hasTop)
}

func TestPublishSummaryCSV_HeaderOnly(t *testing.T) {
	path := writeSummaryCSV(t, "source,lead_count\n")
	mc := new(MockClient)

	created, err := PublishSummaryCSV(context.Background(), mc, "db-123", "", path)
	require.NoError(t, err)
	assert.Zero(t, created)
	mc.AssertNotCalled(t, "CreatePage")
}

func TestPublishSummaryCSV_MissingFile(t *testing.T) {
	mc := new(MockClient)

	_, err := PublishSummaryCSV(context.Background(), mc, "db-123", "", "nope/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open summary csv")
}

func TestPublishSummaryCSV_CreateError(t *testing.T) {
	path := writeSummaryCSV(t, summaryCSV)
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.AnythingOfType("*notionapi.PageCreateRequest")).
		Return(nil, assert.AnError).
		Once()

	created, err := PublishSummaryCSV(ctx, mc, "db-123", "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create summary page")
	assert.Zero(t, created)
	mc.AssertExpectations(t)
}

func TestPublishSummaryCSV_CancelledContext(t *testing.T) {
	path := writeSummaryCSV(t, summaryCSV)
	mc := new(MockClient)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := PublishSummaryCSV(ctx, mc, "db-123", "", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish cancelled")
	assert.Zero(t, created)
	mc.AssertNotCalled(t, "CreatePage")
}

func TestBuildSummaryProperties_UnknownColumnPassesThrough(t *testing.T) {
	t.Parallel()

	props := buildSummaryProperties(map[string]string{
		"source": "Referral",
		"notes":  "partner campaign",
	}, "")

	assert.Equal(t, "Referral", titleContent(props, "Source"))
	assert.Equal(t, "partner campaign", richTextContent(props, "notes"))
	_, hasPeriod := props["Analysis Period"]
	assert.False(t, hasPeriod)
}

func TestBuildSummaryProperties_BadNumberSkipped(t *testing.T) {
	t.Parallel()

	props := buildSummaryProperties(map[string]string{
		"source":     "PPC",
		"lead_count": "n/a",
	}, "")

	_, hasLeads := props["Leads"]
	assert.False(t, hasLeads)
}
