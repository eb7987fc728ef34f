package report

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

// NotAvailable marks summary values without enough data.
const NotAvailable = "N/A"

// Reliability labels.
const (
	ReliabilityNominal        = "Nominal"
	ReliabilityStable         = "Stable"
	ReliabilityNeedsAttention = "Needs Attention"
)

// Churn risk labels.
const (
	ChurnRiskHigh   = "High"
	ChurnRiskMedium = "Medium"
	ChurnRiskLow    = "Low"
)

// Heatmap labels.
const (
	HeatmapReturningCustomers = "Returning Customers"
	HeatmapRepeatSessions     = "Repeat Sessions"
	HeatmapActiveStations     = "Active Stations"
)

// PercentDelta is (cur-prev)/prev*100. With a zero baseline it is 0 when cur
// is also zero and nil (incomparable) otherwise.
func PercentDelta(cur, prev float64) *float64 {
	if prev == 0 {
		if cur == 0 {
			return floatPtr(0)
		}
		return nil
	}
	return floatPtr((cur - prev) / prev * 100)
}

// BusiestHour returns the hour of day with the most session starts and its
// "HH:00 - HH:00" label. Ties go to the earliest hour.
func BusiestHour(sessions []domain.Session, loc *time.Location) (string, *int) {
	if len(sessions) == 0 {
		return NotAvailable, nil
	}

	var histogram [24]int
	for _, s := range sessions {
		histogram[s.StartedAt.In(loc).Hour()]++
	}

	best := 0
	for h := 1; h < len(histogram); h++ {
		if histogram[h] > histogram[best] {
			best = h
		}
	}

	return fmt.Sprintf("%02d:00 - %02d:00", best, best+1), &best
}

// Reliability is the share of completed sessions, rounded to two decimals.
func Reliability(sessions []domain.Session) (*float64, string) {
	if len(sessions) == 0 {
		return nil, NotAvailable
	}

	completed := 0
	for _, s := range sessions {
		if s.IsCompleted() {
			completed++
		}
	}

	pct := roundTo(float64(completed)/float64(len(sessions))*100, 2)
	return &pct, ReliabilityLabel(&pct)
}

func ReliabilityLabel(pct *float64) string {
	switch {
	case pct == nil:
		return NotAvailable
	case *pct >= 99:
		return ReliabilityNominal
	case *pct >= 95:
		return ReliabilityStable
	default:
		return ReliabilityNeedsAttention
	}
}

// ChurnResult compares the active user base of two windows.
type ChurnResult struct {
	CurrentUsers  int
	PreviousUsers int
	DeltaPct      *float64
	RiskLabel     string
}

func Churn(current, previous []domain.Session) ChurnResult {
	cur := len(distinctUsers(current))
	prev := len(distinctUsers(previous))
	delta := PercentDelta(float64(cur), float64(prev))

	return ChurnResult{
		CurrentUsers:  cur,
		PreviousUsers: prev,
		DeltaPct:      delta,
		RiskLabel:     churnRiskLabel(cur, prev, delta),
	}
}

func churnRiskLabel(cur, prev int, delta *float64) string {
	switch {
	case cur == 0 && prev == 0:
		return NotAvailable
	case delta == nil:
		return ChurnRiskLow
	case *delta <= -25:
		return ChurnRiskHigh
	case *delta <= -10:
		return ChurnRiskMedium
	default:
		return ChurnRiskLow
	}
}

// Forecast extrapolates both windows' average daily revenue to the calendar
// month containing now.
func Forecast(avgCurrent, avgPrevious float64, now time.Time) domain.ReportForecast {
	days := float64(DaysInMonth(now))
	estimated := avgCurrent * days
	previous := avgPrevious * days
	delta := PercentDelta(estimated, previous)

	trend := domain.TrendFlat
	if delta != nil {
		switch {
		case *delta > 0:
			trend = domain.TrendUp
		case *delta < 0:
			trend = domain.TrendDown
		}
	}

	return domain.ReportForecast{
		EstimatedMonthlyClose: roundTo(estimated, 2),
		PreviousMonthlyClose:  roundTo(previous, 2),
		DeltaPct:              delta,
		Trend:                 trend,
	}
}

// Heatmap returns the returning-customer, repeat-session and active-station
// percentages. Without known stations, any activity counts as 100% active.
func Heatmap(sessions []domain.Session, scopedStations []domain.Station) []domain.HeatmapCell {
	perUser := distinctUsers(sessions)

	returning := 0
	repeat := 0
	for _, n := range perUser {
		if n > 1 {
			returning++
		}
		repeat += max(n-1, 0)
	}

	activeStations := make(map[string]struct{})
	for _, s := range sessions {
		activeStations[s.StationID] = struct{}{}
	}

	var active float64
	switch {
	case len(scopedStations) > 0:
		scoped := make(map[string]struct{}, len(scopedStations))
		for _, st := range scopedStations {
			scoped[st.ID] = struct{}{}
		}
		n := 0
		for id := range activeStations {
			if _, ok := scoped[id]; ok {
				n++
			}
		}
		active = ratioPct(n, len(scoped))
	case len(sessions) > 0:
		active = 100
	}

	return []domain.HeatmapCell{
		{Label: HeatmapReturningCustomers, Value: ratioPct(returning, len(perUser))},
		{Label: HeatmapRepeatSessions, Value: ratioPct(repeat, len(sessions))},
		{Label: HeatmapActiveStations, Value: active},
	}
}

// EmptyHeatmap is the heatmap of a report without data.
func EmptyHeatmap() []domain.HeatmapCell {
	return []domain.HeatmapCell{
		{Label: HeatmapReturningCustomers},
		{Label: HeatmapRepeatSessions},
		{Label: HeatmapActiveStations},
	}
}

func totalEnergy(sessions []domain.Session) float64 {
	total := decimal.Zero
	for _, s := range sessions {
		total = total.Add(decimal.NewFromFloat(s.EnergyDeliveredKWh))
	}
	return total.Round(3).InexactFloat64()
}

func averageDuration(sessions []domain.Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	total := 0
	for _, s := range sessions {
		total += s.DurationMinutes
	}
	return roundTo(float64(total)/float64(len(sessions)), 1)
}

func totalRevenue(sessions []domain.Session) float64 {
	total := decimal.Zero
	for _, s := range sessions {
		total = total.Add(decimal.NewFromFloat(s.Cost))
	}
	return total.InexactFloat64()
}

func distinctUsers(sessions []domain.Session) map[string]int {
	users := make(map[string]int)
	for _, s := range sessions {
		users[s.UserID]++
	}
	return users
}

func ratioPct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n) / float64(total) * 100)
}

func roundTo(val float64, precision int32) float64 {
	return decimal.NewFromFloat(val).Round(precision).InexactFloat64()
}

func floatPtr(v float64) *float64 {
	return &v
}
