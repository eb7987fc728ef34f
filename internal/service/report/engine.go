package report

import (
	"time"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

// Input is the complete snapshot one computation works on.
type Input struct {
	Range      domain.ReportRange
	ViewerID   string
	Capability domain.OwnerCapability
	Sessions   []domain.Session
	Stations   []domain.Station
	// Now fixes the clock and, through its location, the calendar used for
	// day boundaries.
	Now time.Time
}

// Compute derives the owner report from a session and station snapshot. It
// performs no I/O and returns identical output for identical input.
func Compute(in Input) *domain.ReportMetrics {
	if in.ViewerID == "" {
		return EmptyMetrics(in.Range, in.Now)
	}

	loc := in.Now.Location()
	scoped := FilterByCapability(in.Sessions, in.Stations, in.Capability)
	if len(scoped.Sessions) == 0 && len(scoped.ScopedStations) == 0 {
		return EmptyMetrics(in.Range, in.Now)
	}

	window := ResolveWindow(in.Range, scoped.Sessions, in.Now)
	current, previous := splitByWindow(scoped.Sessions, window)

	points := BuildBuckets(window, in.Range)
	FoldSessions(points, current, loc)
	revenue, sessionCount := sumBuckets(points)

	days := CountDays(window.Start, window.End)
	avgCurrent := revenue / float64(days)

	var avgPrevious float64
	if window.HasPrevious() {
		avgPrevious = totalRevenue(previous) / float64(CountDays(*window.PreviousStart, *window.PreviousEnd))
	}

	busiestLabel, busiestHour := BusiestHour(current, loc)
	reliability, reliabilityLabel := Reliability(current)
	churn := Churn(current, previous)

	summary := domain.ReportSummary{
		TotalRevenue:                 revenue,
		TotalSessions:                sessionCount,
		TotalEnergyKWh:               totalEnergy(current),
		AverageRevenuePerDay:         roundTo(avgCurrent, 2),
		PreviousAverageRevenuePerDay: roundTo(avgPrevious, 2),
		AverageRevenueDeltaPct:       PercentDelta(avgCurrent, avgPrevious),
		AverageSessionMinutes:        averageDuration(current),
		BusiestHour:                  busiestLabel,
		BusiestHourIndex:             busiestHour,
		EnergyReliabilityPct:         reliability,
		ReliabilityLabel:             reliabilityLabel,
		UniqueUsers:                  churn.CurrentUsers,
		PreviousUniqueUsers:          churn.PreviousUsers,
		ChurnDeltaPct:                churn.DeltaPct,
		ChurnRiskLabel:               churn.RiskLabel,
	}

	return &domain.ReportMetrics{
		Range:            in.Range,
		ChartData:        points,
		Summary:          summary,
		Forecast:         Forecast(avgCurrent, avgPrevious, in.Now),
		Heatmap:          Heatmap(current, scoped.ScopedStations),
		ExportRows:       BuildExportRows(current, loc),
		FilteredSessions: current,
		TotalRevenue:     revenue,
		TotalSessions:    sessionCount,
		WindowStart:      window.Start,
		WindowEnd:        window.End,
		HasData:          len(current) > 0,
		GeneratedAt:      in.Now,
	}
}

// EmptyMetrics is the deterministic result for a report without a viewer or
// without any in-scope data: zero-filled buckets over the resolved window and
// N/A summary values.
func EmptyMetrics(rng domain.ReportRange, now time.Time) *domain.ReportMetrics {
	window := ResolveWindow(rng, nil, now)
	points := BuildBuckets(window, rng)

	return &domain.ReportMetrics{
		Range:     rng,
		ChartData: points,
		Summary: domain.ReportSummary{
			BusiestHour:      NotAvailable,
			ReliabilityLabel: NotAvailable,
			ChurnRiskLabel:   NotAvailable,
		},
		Forecast:         domain.ReportForecast{Trend: domain.TrendFlat},
		Heatmap:          EmptyHeatmap(),
		ExportRows:       []domain.ExportRow{},
		FilteredSessions: []domain.Session{},
		WindowStart:      window.Start,
		WindowEnd:        window.End,
		HasData:          false,
		GeneratedAt:      now,
	}
}

// splitByWindow partitions sessions into the current and previous windows,
// dropping everything else.
func splitByWindow(sessions []domain.Session, window domain.RangeWindow) (current, previous []domain.Session) {
	current = make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		switch {
		case inWindow(s.StartedAt, window.Start, window.End):
			current = append(current, s)
		case window.HasPrevious() && inWindow(s.StartedAt, *window.PreviousStart, *window.PreviousEnd):
			previous = append(previous, s)
		}
	}
	return current, previous
}
