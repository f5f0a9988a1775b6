package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/pkg/notion"
)

var (
	publishInput  string
	publishPeriod string
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push the attribution summary to Notion",
	Long:  "Reads attribution_summary.csv and creates one page per source row in the configured Notion database, labelled with the analysis period.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("publish"); err != nil {
			return err
		}

		input := publishInput
		if input == "" {
			input = outputPath(summaryFile)
		}

		token := publishPeriod
		if token == "" {
			token = cfg.Data.DefaultPeriod
		}
		period, ok := loader.ParsePeriod(token)
		if !ok {
			return eris.Errorf("invalid period token %q", token)
		}

		client := notion.NewClient(cfg.Notion.Token)

		start := time.Now()
		pages, err := notion.PublishSummaryCSV(ctx, client, cfg.Notion.SummaryDB, period.String(), input)
		if err != nil {
			return eris.Wrap(err, "publish summary")
		}

		zap.L().Info("summary published",
			zap.String("input", input),
			zap.String("period", period.String()),
			zap.Int("pages", pages),
			zap.Duration("took", time.Since(start)),
		)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVar(&publishInput, "input", "", "summary CSV (default: attribution_summary.csv in the output directory)")
	publishCmd.Flags().StringVar(&publishPeriod, "period", "", "analysis period token, e.g. mar2025-may2025 (default: data.default_period)")
	rootCmd.AddCommand(publishCmd)
}
