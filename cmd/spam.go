package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/spam"
)

var (
	spamRules   string
	spamNoCache bool
)

var spamCmd = &cobra.Command{
	Use:   "spam <leads-file>",
	Short: "Screen a lead export for spam",
	Long:  "Classifies every address in the lead export against the domain whitelist and its helpdesk ticket history, writing not_spam_leads.csv and spam_leads.csv to the output directory.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("spam"); err != nil {
			return err
		}

		leadsPath := args[0]
		period, err := resolvePeriod(leadsPath)
		if err != nil {
			return err
		}

		leads, skipped, err := loader.LoadRawLeads(leadsPath)
		if err != nil {
			return eris.Wrap(err, "load leads")
		}
		zap.L().Info("leads loaded",
			zap.String("path", leadsPath),
			zap.Int("count", len(leads)),
			zap.Int("skipped", skipped),
			zap.String("period", period.String()),
		)

		r, err := loadRules(spamRules)
		if err != nil {
			return err
		}

		store, err := openCache(spamNoCache)
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

		emails := make([]string, len(leads))
		for i, lead := range leads {
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

		zap.L().Info("spam screening complete",
			zap.Int("not_spam", kept),
			zap.Int("spam", rejected),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	spamCmd.Flags().StringVar(&spamRules, "rules", "", "YAML rules file overriding the built-in spam indicators")
	spamCmd.Flags().BoolVar(&spamNoCache, "no-cache", false, "bypass the helpdesk response cache")
	rootCmd.AddCommand(spamCmd)
}
