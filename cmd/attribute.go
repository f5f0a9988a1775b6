package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/report"
)

var (
	attributeInput   string
	attributeNoCache bool
	attributeOffline bool
)

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Attribute enriched leads to traffic sources",
	Long:  "Reads leads_with_products.csv, runs the customer/SEO/PPC/referral cascade against the reference tables, and writes the attributed leads, the summary CSV and the text report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("attribute"); err != nil {
			return err
		}

		input := attributeInput
		if input == "" {
			input = outputPath(enrichedLeadsFile)
		}
		leads, skipped, err := loader.LoadEnrichedLeads(input)
		if err != nil {
			return eris.Wrap(err, "load enriched leads")
		}
		zap.L().Info("enriched leads loaded",
			zap.String("path", input), zap.Int("count", len(leads)), zap.Int("skipped", skipped))

		period, err := resolvePeriod(input)
		if err != nil {
			return err
		}

		store, err := openCache(attributeNoCache)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		seo, seoSource := loadSEO(ctx, period, attributeOffline)
		engine := attribution.NewEngine(attribution.Inputs{
			Customers: loadCustomers(ctx, store, attributeOffline),
			SEO:       seo,
			SEOSource: seoSource,
			PPC:       loadPPC(),
		},
			attribution.WithThresholds(cfg.Attribution.Thresholds),
			attribution.WithConcurrency(cfg.Attribution.Concurrency),
			attribution.WithPPCLookback(cfg.Attribution.Lookback()),
		)

		start := time.Now()
		summary, err := engine.Run(ctx, leads)
		if err != nil {
			return eris.Wrap(err, "run attribution")
		}
		zap.L().Info("attribution complete",
			zap.Int("leads", summary.Total),
			zap.Duration("took", time.Since(start)),
		)

		if err := writeAttributionOutputs(leads); err != nil {
			return err
		}
		report.LogSummary(summary)
		return nil
	},
}

func init() {
	attributeCmd.Flags().StringVar(&attributeInput, "input", "", "enriched leads CSV (default: leads_with_products.csv in the output directory)")
	attributeCmd.Flags().BoolVar(&attributeNoCache, "no-cache", false, "bypass the CRM response cache")
	attributeCmd.Flags().BoolVar(&attributeOffline, "offline", false, "use cached and file-based reference tables only")
	rootCmd.AddCommand(attributeCmd)
}
