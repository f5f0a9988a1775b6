package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/catalog"
	"github.com/sells-group/attribution-cli/internal/enrich"
	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
	"github.com/sells-group/attribution-cli/internal/spam"
)

var (
	runSkipSpam   bool
	runSkipEnrich bool
	runLimit      int
	runNoCache    bool
	runOffline    bool
	runRules      string
)

var runCmd = &cobra.Command{
	Use:   "run <leads-file>",
	Short: "Run the full pipeline over a lead export",
	Long:  "Screens the lead export for spam, enriches survivors with helpdesk ticket history, attributes every lead to a traffic source, and writes the attributed leads, summary CSV and text report.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mode := "run"
		if runOffline {
			mode = "run-offline"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		log := zap.L().With(zap.String("run_id", uuid.NewString()))

		leadsPath := args[0]
		period, err := resolvePeriod(leadsPath)
		if err != nil {
			return err
		}

		raw, skipped, err := loader.LoadRawLeads(leadsPath)
		if err != nil {
			return eris.Wrap(err, "load leads")
		}
		log.Info("leads loaded",
			zap.String("path", leadsPath),
			zap.Int("count", len(raw)),
			zap.Int("skipped", skipped),
			zap.String("period", period.String()),
		)
		if runLimit > 0 && runLimit < len(raw) {
			raw = raw[:runLimit]
			log.Info("lead batch truncated", zap.Int("limit", runLimit))
		}

		r, err := loadRules(runRules)
		if err != nil {
			return err
		}

		store, err := openCache(runNoCache)
		if err != nil {
			return err
		}
		if store != nil {
			defer store.Close()
		}

		helpdesk, err := initHelpdesk(store, runOffline)
		if err != nil {
			return err
		}

		var leads []*model.Lead
		if runSkipSpam {
			leads = make([]*model.Lead, len(raw))
			for i := range raw {
				lead := raw[i]
				leads[i] = &lead
			}
			log.Info("spam screening skipped", zap.Int("leads", len(leads)))
		} else {
			emails := make([]string, len(raw))
			for i, lead := range raw {
				emails[i] = lead.Email
			}

			start := time.Now()
			classifier := spam.NewClassifier(helpdesk, loadWhitelist(), r, period)
			results, err := classifier.ClassifyAll(ctx, emails)
			if err != nil {
				return eris.Wrap(err, "classify leads")
			}
			if err := ensureOutputDir(); err != nil {
				return err
			}
			kept, rejected, err := spam.WriteResults(cfg.Data.OutputDir, results)
			if err != nil {
				return eris.Wrap(err, "write classification")
			}
			log.Info("spam screening complete",
				zap.Int("not_spam", kept),
				zap.Int("spam", rejected),
				zap.Duration("took", time.Since(start)),
			)

			survivors := make([]spam.Result, 0, kept)
			for _, res := range results {
				if res.NotSpam() {
					survivors = append(survivors, res)
				}
			}
			leads = enrich.SeedLeads(survivors)
		}

		if len(leads) == 0 {
			log.Warn("no leads survived screening, nothing to attribute")
			return nil
		}

		if runSkipEnrich {
			log.Info("enrichment skipped", zap.Int("leads", len(leads)))
		} else {
			products, err := catalog.LoadCSV(dataPath(cfg.Data.ProductsFile))
			if err != nil {
				return eris.Wrap(err, "load product catalog")
			}
			matcher := catalog.NewMatcher(products, nil, r)

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

			withProducts, withTimestamps := 0, 0
			for _, lead := range leads {
				if len(lead.ProductsMentioned) > 0 {
					withProducts++
				}
				if lead.FirstInquiryAt != nil {
					withTimestamps++
				}
			}
			log.Info("enrichment complete",
				zap.String("output", out),
				zap.Int("leads", len(leads)),
				zap.Int("with_products", withProducts),
				zap.Int("with_timestamps", withTimestamps),
				zap.Duration("took", time.Since(start)),
			)
		}

		seo, seoSource := loadSEO(ctx, period, runOffline)
		engine := attribution.NewEngine(attribution.Inputs{
			Customers: loadCustomers(ctx, store, runOffline),
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
		log.Info("attribution complete",
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
	runCmd.Flags().BoolVar(&runSkipSpam, "skip-spam", false, "treat every lead as genuine, skipping the screening step")
	runCmd.Flags().BoolVar(&runSkipEnrich, "skip-enrich", false, "skip ticket mining, attribute on the lead list alone")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process at most this many leads (0 = all)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "bypass the response cache")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "no network: cached helpdesk responses and file-based tables only")
	runCmd.Flags().StringVar(&runRules, "rules", "", "YAML rules file overriding the built-in indicators")
	rootCmd.AddCommand(runCmd)
}
