package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/cache"
	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
	"github.com/sells-group/attribution-cli/internal/rules"
	"github.com/sells-group/attribution-cli/pkg/crm"
	"github.com/sells-group/attribution-cli/pkg/freshdesk"
	"github.com/sells-group/attribution-cli/pkg/searchconsole"
)

// Pipeline output files, relative to the output directory.
const (
	enrichedLeadsFile   = "leads_with_products.csv"
	attributedLeadsFile = "leads_with_attribution.csv"
	summaryFile         = "attribution_summary.csv"
	reportFile          = "attribution_report.txt"
)

// dataPath resolves a file name against the configured data directory.
// Absolute paths pass through unchanged.
func dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Data.Dir, name)
}

// outputPath resolves a file name against the configured output directory.
func outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Data.OutputDir, name)
}

func ensureOutputDir() error {
	if err := os.MkdirAll(cfg.Data.OutputDir, 0o755); err != nil {
		return eris.Wrapf(err, "create output dir %s", cfg.Data.OutputDir)
	}
	return nil
}

// openCache opens the response cache unless disabled. A nil store means
// no caching, which every caller accepts.
func openCache(disabled bool) (*cache.Store, error) {
	if disabled {
		return nil, nil
	}
	store, err := cache.Open(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		return nil, eris.Wrap(err, "open cache")
	}
	return store, nil
}

// initHelpdesk builds the ticket lookup client, wrapped with the response
// cache when one is open. Offline mode serves cached responses only and
// never touches the network.
func initHelpdesk(store *cache.Store, offline bool) (freshdesk.Client, error) {
	if offline {
		return cache.OfflineFreshdesk(store), nil
	}
	if cfg.Freshdesk.Domain == "" || cfg.Freshdesk.Key == "" {
		return nil, eris.New("freshdesk domain and API key are required (ATTRIB_FRESHDESK_DOMAIN, ATTRIB_FRESHDESK_KEY)")
	}
	client := freshdesk.NewClient(cfg.Freshdesk.Domain, cfg.Freshdesk.Key,
		freshdesk.WithRateLimit(cfg.Freshdesk.RateLimit))
	return cache.WrapFreshdesk(client, store), nil
}

func initSalesforce() (crm.Client, error) {
	pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.LoginURL,
		Username:       cfg.Salesforce.Username,
		ConsumerKey:    cfg.Salesforce.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return crm.NewClient(sf), nil
}

// resolvePeriod derives the analysis window from the lead file name,
// falling back to the configured default period.
func resolvePeriod(leadsPath string) (model.Period, error) {
	if p, ok := loader.PeriodFromFilename(leadsPath); ok {
		return p, nil
	}
	if p, ok := loader.ParsePeriod(cfg.Data.DefaultPeriod); ok {
		return p, nil
	}
	return model.Period{}, eris.Errorf("no analysis period: %q carries none in its name and data.default_period %q is not a valid period token",
		filepath.Base(leadsPath), cfg.Data.DefaultPeriod)
}

// loadRules returns the screening rule set, with YAML overrides applied
// when a rules file is given.
func loadRules(path string) (rules.Rules, error) {
	if path == "" {
		return rules.Default(), nil
	}
	r, err := rules.Load(path)
	if err != nil {
		return rules.Rules{}, eris.Wrapf(err, "load rules %s", path)
	}
	return r, nil
}

// loadWhitelist reads the trusted-domain list. A missing file is not an
// error, it just means no domains are pre-cleared.
func loadWhitelist() []string {
	path := dataPath(cfg.Data.WhitelistFile)
	domains, err := loader.LoadWhitelist(path)
	if err != nil {
		zap.L().Warn("whitelist unavailable, continuing without",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	zap.L().Info("whitelist loaded", zap.String("path", path), zap.Int("domains", len(domains)))
	return domains
}

// loadCustomers returns the known-customer email set, preferring the CRM
// when configured and online, with the CSV export as fallback. A nil set
// degrades the direct stage rather than failing the run.
func loadCustomers(ctx context.Context, store *cache.Store, offline bool) *model.CustomerEmailSet {
	log := zap.L().With(zap.String("component", "cmd"))

	if cfg.Salesforce.Enabled() && !offline {
		client, err := initSalesforce()
		if err != nil {
			log.Warn("salesforce init failed, falling back to customer CSV", zap.Error(err))
		} else {
			emails, err := cache.WrapCRM(client, store).CustomerEmails(ctx)
			if err != nil {
				log.Warn("customer query failed, falling back to customer CSV", zap.Error(err))
			} else {
				log.Info("customer emails loaded from CRM", zap.Int("count", len(emails)))
				return model.NewCustomerEmailSet(emails)
			}
		}
	}

	path := dataPath(cfg.Data.CustomersFile)
	set, skipped, err := loader.LoadCustomerEmails(path)
	if err != nil {
		log.Warn("customer list unavailable, direct attribution degraded",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	log.Info("customer emails loaded from CSV",
		zap.String("path", path), zap.Int("count", set.Len()), zap.Int("skipped", skipped))
	return set
}

// loadSEO returns the SEO ranking table and its provenance tag, preferring
// the Search Console API when configured and online.
func loadSEO(ctx context.Context, period model.Period, offline bool) ([]model.SEORecord, model.DataSource) {
	log := zap.L().With(zap.String("component", "cmd"))

	if cfg.SearchConsole.Enabled() && !offline {
		client := searchconsole.NewClient(cfg.SearchConsole.SiteURL, cfg.SearchConsole.Token)
		rows, err := client.Rankings(ctx, period.Start, period.End)
		if err != nil {
			log.Warn("search console query failed, falling back to SEO CSV", zap.Error(err))
		} else {
			records := model.SEORecordsFromRanking(rows)
			log.Info("rankings loaded from search console", zap.Int("keywords", len(records)))
			return records, model.DataSourceGSCAPI
		}
	}

	path := dataPath(cfg.Data.SEOFile)
	records, skipped, err := loader.LoadSEOTable(path)
	if err != nil {
		log.Warn("SEO table unavailable, SEO attribution degraded",
			zap.String("path", path), zap.Error(err))
		return nil, model.DataSourceSEOCSV
	}
	log.Info("SEO table loaded", zap.String("path", path),
		zap.Int("keywords", len(records)), zap.Int("skipped", skipped))
	return records, model.DataSourceSEOCSV
}

// writeAttributionOutputs writes the attributed leads, the summary CSV and
// the text report into the output directory.
func writeAttributionOutputs(leads []*model.Lead) error {
	if err := ensureOutputDir(); err != nil {
		return err
	}

	leadsOut := outputPath(attributedLeadsFile)
	if err := loader.WriteAttributedLeads(leadsOut, leads); err != nil {
		return eris.Wrap(err, "write attributed leads")
	}
	summaryOut := outputPath(summaryFile)
	if err := report.WriteSummaryCSV(summaryOut, leads); err != nil {
		return err
	}
	reportOut := outputPath(reportFile)
	if err := report.WriteTextReport(reportOut, leads, time.Now()); err != nil {
		return err
	}

	zap.L().Info("outputs written",
		zap.String("leads", leadsOut),
		zap.String("summary", summaryOut),
		zap.String("report", reportOut),
	)
	return nil
}

// loadPPC returns the combined standard and dynamic campaign tables.
// Either export may be absent.
func loadPPC() []model.PPCRecord {
	log := zap.L().With(zap.String("component", "cmd"))

	var records []model.PPCRecord
	tables := []struct {
		file     string
		campaign model.CampaignType
	}{
		{cfg.Data.PPCStandardFile, model.CampaignStandard},
		{cfg.Data.PPCDynamicFile, model.CampaignDynamic},
	}
	for _, tbl := range tables {
		path := dataPath(tbl.file)
		rows, skipped, err := loader.LoadPPCTable(path, tbl.campaign)
		if err != nil {
			log.Warn("PPC table unavailable", zap.String("path", path),
				zap.String("campaign", string(tbl.campaign)), zap.Error(err))
			continue
		}
		log.Info("PPC table loaded", zap.String("path", path),
			zap.String("campaign", string(tbl.campaign)),
			zap.Int("rows", len(rows)), zap.Int("skipped", skipped))
		records = append(records, rows...)
	}
	return records
}
