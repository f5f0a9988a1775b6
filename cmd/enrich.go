package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/catalog"
	"github.com/sells-group/attribution-cli/internal/enrich"
	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/spam"
)

var (
	enrichInput   string
	enrichRules   string
	enrichNoCache bool
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Mine ticket history for product interests",
	Long:  "Reads the screened leads, pulls each lead's helpdesk tickets for the analysis window, extracts product mentions, inquiry keywords and first inquiry time, and writes leads_with_products.csv.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("enrich"); err != nil {
			return err
		}

		input := enrichInput
		if input == "" {
			input = outputPath(spam.NotSpamFile)
		}
		results, err := spam.LoadResults(input)
		if err != nil {
			return eris.Wrap(err, "load screened leads")
		}
		leads := enrich.SeedLeads(results)
		zap.L().Info("screened leads loaded",
			zap.String("path", input), zap.Int("count", len(leads)))

		period, err := resolvePeriod(input)
		if err != nil {
			return err
		}

		r, err := loadRules(enrichRules)
		if err != nil {
			return err
		}

		products, err := catalog.LoadCSV(dataPath(cfg.Data.ProductsFile))
		if err != nil {
			return eris.Wrap(err, "load product catalog")
		}
		matcher := catalog.NewMatcher(products, nil, r)

		store, err := openCache(enrichNoCache)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		helpdesk, err := initHelpdesk(store, false)
		if err != nil {
			return err
		}

		start := time.Now()
		enricher := enrich.NewEnricher(helpdesk, matcher, period,
			enrich.WithConcurrency(cfg.Attribution.Concurrency))
		if err := enricher.EnrichAll(ctx, leads); err != nil {
			return eris.Wrap(err, "enrich leads")
		}

		if err := ensureOutputDir(); err != nil {
			return err
		}
		out := outputPath(enrichedLeadsFile)
		if err := loader.WriteEnrichedLeads(out, leads); err != nil {
			return eris.Wrap(err, "write enriched leads")
		}

		withProducts := 0
		for _, lead := range leads {
			if len(lead.ProductsMentioned) > 0 {
				withProducts++
			}
		}
		zap.L().Info("enrichment complete",
			zap.String("output", out),
			zap.Int("leads", len(leads)),
			zap.Int("with_products", withProducts),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichInput, "input", "", "screened leads CSV (default: not_spam_leads.csv in the output directory)")
	enrichCmd.Flags().StringVar(&enrichRules, "rules", "", "YAML rules file overriding the built-in category indicators")
	enrichCmd.Flags().BoolVar(&enrichNoCache, "no-cache", false, "bypass the helpdesk response cache")
	rootCmd.AddCommand(enrichCmd)
}
