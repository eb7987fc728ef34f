package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seu-repo/sigec-reports/internal/service/report"
)

// EventSubscriber receives report events from the message queue.
type EventSubscriber interface {
	Subscribe(subject string, handler func(data []byte) error) error
}

func newWatchCmd(app *App) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print report computations as the server publishes them",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Events == nil {
				return errors.New("queue.enabled is false, no events to watch")
			}

			events := make(chan report.ReportComputedEvent, 64)
			err := app.Events.Subscribe(report.SubjectReportComputed, func(data []byte) error {
				var event report.ReportComputedEvent
				if err := json.Unmarshal(data, &event); err != nil {
					return fmt.Errorf("decode %s: %w", report.SubjectReportComputed, err)
				}
				select {
				case events <- event:
				default:
					app.Log.Warn("Dropping report event, watcher is behind")
				}
				return nil
			})
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			for seen := 0; count <= 0 || seen < count; seen++ {
				select {
				case <-ctx.Done():
					return nil
				case event := <-events:
					if err := writeEvent(cmd.OutOrStdout(), event); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Exit after this many events (0 waits until interrupted)")
	return cmd
}

func writeEvent(w io.Writer, e report.ReportComputedEvent) error {
	data := "no data"
	if e.HasData {
		data = fmt.Sprintf("%.2f revenue, %d sessions", e.TotalRevenue, e.TotalSessions)
	}
	_, err := fmt.Fprintf(w, "%s  %-4s %-6s viewer=%s  %s  pages=%d (%s)\n",
		e.ComputedAt.Format("2006-01-02 15:04:05"),
		e.Range, e.Capability, e.ViewerID, data, e.PagesFetched, e.StopReason)
	return err
}
