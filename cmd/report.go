package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/loader"
	"github.com/sells-group/attribution-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [attributed-leads-file]",
	Short: "Regenerate the text report and summary CSV",
	Long:  "Reads a finished attribution run back from disk and rewrites attribution_report.txt and attribution_summary.csv without touching any external service.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("report"); err != nil {
			return err
		}

		input := outputPath(attributedLeadsFile)
		if len(args) == 1 {
			input = args[0]
		}

		leads, skipped, err := loader.LoadAttributedLeads(input)
		if err != nil {
			return eris.Wrap(err, "load attributed leads")
		}
		zap.L().Info("attributed leads loaded",
			zap.String("path", input), zap.Int("count", len(leads)), zap.Int("skipped", skipped))

		if err := ensureOutputDir(); err != nil {
			return err
		}
		summaryOut := outputPath(summaryFile)
		if err := report.WriteSummaryCSV(summaryOut, leads); err != nil {
			return err
		}
		reportOut := outputPath(reportFile)
		if err := report.WriteTextReport(reportOut, leads, time.Now()); err != nil {
			return err
		}

		zap.L().Info("report written",
			zap.String("summary", summaryOut),
			zap.String("report", reportOut),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
