package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/service/report"
)

type ownerOptions struct {
	rng        string
	viewerID   string
	orgID      string
	capability string
	format     string
	out        string
}

func newOwnerCmd(app *App) *cobra.Command {
	var opts ownerOptions

	cmd := &cobra.Command{
		Use:   "owner",
		Short: "Compute the owner report for a viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOwner(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.rng, "range", string(domain.Range30Days), "Report range: 7d, 30d, 90d, YTD or ALL")
	cmd.Flags().StringVar(&opts.viewerID, "viewer", "", "Owner ID the report is computed for")
	cmd.Flags().StringVar(&opts.orgID, "org", "", "Restrict to one organization")
	cmd.Flags().StringVar(&opts.capability, "capability", "BOTH", "Owner capability: CHARGE, SWAP or BOTH")
	cmd.Flags().StringVar(&opts.format, "format", "summary", "Output format: summary, json or csv")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write output to a file instead of stdout")
	cmd.MarkFlagRequired("viewer")

	return cmd
}

func runOwner(cmd *cobra.Command, app *App, opts ownerOptions) error {
	rng, err := domain.ParseReportRange(opts.rng)
	if err != nil {
		return err
	}
	capability, err := domain.ParseOwnerCapability(opts.capability)
	if err != nil {
		return err
	}

	query := domain.ReportQuery{
		Range:      rng,
		ViewerID:   opts.viewerID,
		OrgID:      opts.orgID,
		Capability: capability,
	}

	w := cmd.OutOrStdout()
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	ctx := cmd.Context()
	switch opts.format {
	case "csv":
		return app.Reports.ExportCSV(ctx, query, w)
	case "json":
		metrics, err := app.Reports.Generate(ctx, query)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics)
	case "summary":
		metrics, err := app.Reports.Generate(ctx, query)
		if err != nil {
			return err
		}
		return writeSummary(w, metrics)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func writeSummary(w io.Writer, m *domain.ReportMetrics) error {
	if !m.HasData {
		_, err := fmt.Fprintf(w, "No activity for %s (%s to %s)\n",
			m.Range, m.WindowStart.Format("2006-01-02"), m.WindowEnd.Format("2006-01-02"))
		return err
	}

	s := m.Summary
	lines := []string{
		fmt.Sprintf("Owner report %s (%s to %s)", m.Range, m.WindowStart.Format("2006-01-02"), m.WindowEnd.Format("2006-01-02")),
		fmt.Sprintf("  Revenue            %.2f (%d sessions)", m.TotalRevenue, m.TotalSessions),
		fmt.Sprintf("  Energy             %.3f kWh", s.TotalEnergyKWh),
		fmt.Sprintf("  Avg revenue / day  %.2f (prev %.2f, %s)", s.AverageRevenuePerDay, s.PreviousAverageRevenuePerDay, formatDelta(s.AverageRevenueDeltaPct)),
		fmt.Sprintf("  Avg session        %.1f min", s.AverageSessionMinutes),
		fmt.Sprintf("  Busiest hour       %s", s.BusiestHour),
		fmt.Sprintf("  Reliability        %s (%s)", formatPct(s.EnergyReliabilityPct), s.ReliabilityLabel),
		fmt.Sprintf("  Users              %d (prev %d, churn risk %s)", s.UniqueUsers, s.PreviousUniqueUsers, s.ChurnRiskLabel),
		fmt.Sprintf("  Monthly close      %.2f (%s, %s)", m.Forecast.EstimatedMonthlyClose, m.Forecast.Trend, formatDelta(m.Forecast.DeltaPct)),
	}
	for _, cell := range m.Heatmap {
		lines = append(lines, fmt.Sprintf("  %-18s %.0f%%", cell.Label, cell.Value))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatDelta(delta *float64) string {
	if delta == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *delta)
}

func formatPct(pct *float64) string {
	if pct == nil {
		return report.NotAvailable
	}
	return fmt.Sprintf("%.2f%%", *pct)
}
