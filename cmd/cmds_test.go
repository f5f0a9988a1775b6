package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/config"
	"github.com/sells-group/attribution-cli/internal/model"
)

func TestSpamCmd_RunE_MissingFreshdesk(t *testing.T) {
	cfg = testConfig(t)

	spamCmd.SetContext(context.Background())
	defer spamCmd.SetContext(nil)

	err := spamCmd.RunE(spamCmd, []string{"leads_mar2025-may2025.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "freshdesk")
}

func TestRunCmd_RunE_InvalidThresholds(t *testing.T) {
	cfg = testConfig(t)
	cfg.Freshdesk = config.FreshdeskConfig{Domain: "easyprint", Key: "secret"}
	cfg.Attribution.Thresholds = model.Thresholds{High: 50, Medium: 80, Low: 20}

	runCmd.SetContext(context.Background())
	defer runCmd.SetContext(nil)

	err := runCmd.RunE(runCmd, []string{"leads_mar2025-may2025.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high >= medium >= low")
}

func TestAttributeCmd_RunE_MissingInput(t *testing.T) {
	cfg = testConfig(t)
	attributeInput = ""

	attributeCmd.SetContext(context.Background())
	defer attributeCmd.SetContext(nil)

	err := attributeCmd.RunE(attributeCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load enriched leads")
}

func TestReportCmd_RunE_MissingInput(t *testing.T) {
	cfg = testConfig(t)

	err := reportCmd.RunE(reportCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load attributed leads")
}

func TestPublishCmd_RunE_MissingNotion(t *testing.T) {
	cfg = testConfig(t)

	publishCmd.SetContext(context.Background())
	defer publishCmd.SetContext(nil)

	err := publishCmd.RunE(publishCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notion")
}
