package report

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

const dateKeyLayout = "2006-01-02"

// BuildBuckets returns one zero-valued point per calendar day in the window,
// oldest first.
func BuildBuckets(window domain.RangeWindow, rng domain.ReportRange) []domain.ChartPoint {
	days := CountDays(window.Start, window.End)
	points := make([]domain.ChartPoint, 0, days)
	for i := 0; i < days; i++ {
		d := addDays(window.Start, i)
		points = append(points, domain.ChartPoint{
			DateKey: d.Format(dateKeyLayout),
			Label:   bucketLabel(d, rng),
		})
	}
	return points
}

func bucketLabel(d time.Time, rng domain.ReportRange) string {
	if rng == domain.Range7Days {
		return d.Format("Mon")
	}
	return d.Format("Jan 2")
}

// FoldSessions adds each session to the bucket of its local start day and
// then derives utilization. Sessions outside the buckets are ignored. The
// location must be the one the buckets were built in.
func FoldSessions(points []domain.ChartPoint, sessions []domain.Session, loc *time.Location) {
	index := make(map[string]int, len(points))
	for i, p := range points {
		index[p.DateKey] = i
	}

	revenue := make([]decimal.Decimal, len(points))
	for _, s := range sessions {
		i, ok := index[s.StartedAt.In(loc).Format(dateKeyLayout)]
		if !ok {
			continue
		}
		revenue[i] = revenue[i].Add(decimal.NewFromFloat(s.Cost))
		points[i].SessionCount++
	}
	for i := range points {
		points[i].Revenue = revenue[i].InexactFloat64()
	}

	ApplyUtilization(points)
}

// ApplyUtilization sets each bucket's utilization relative to the busiest
// bucket. An empty window yields zero everywhere.
func ApplyUtilization(points []domain.ChartPoint) {
	maxCount := 0
	for _, p := range points {
		if p.SessionCount > maxCount {
			maxCount = p.SessionCount
		}
	}
	for i := range points {
		if maxCount == 0 {
			points[i].UtilizationPct = 0
			continue
		}
		points[i].UtilizationPct = int(math.Round(float64(points[i].SessionCount) / float64(maxCount) * 100))
	}
}

// sumBuckets returns revenue and session totals straight from the buckets so
// totals always equal the series they describe.
func sumBuckets(points []domain.ChartPoint) (float64, int) {
	revenue := decimal.Zero
	count := 0
	for _, p := range points {
		revenue = revenue.Add(decimal.NewFromFloat(p.Revenue))
		count += p.SessionCount
	}
	return revenue.InexactFloat64(), count
}
