package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReportRange selects the current window of an owner report.
type ReportRange string

const (
	Range7Days  ReportRange = "7d"
	Range30Days ReportRange = "30d"
	Range90Days ReportRange = "90d"
	RangeYTD    ReportRange = "YTD"
	RangeAll    ReportRange = "ALL"
)

// ParseReportRange accepts 7d, 30d, 90d, YTD and ALL (case-insensitive).
func ParseReportRange(s string) (ReportRange, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "7D":
		return Range7Days, nil
	case "30D":
		return Range30Days, nil
	case "90D":
		return Range90Days, nil
	case "YTD":
		return RangeYTD, nil
	case "ALL":
		return RangeAll, nil
	default:
		return "", fmt.Errorf("invalid report range %q", s)
	}
}

// Days returns the fixed length of 7d/30d/90d ranges and 0 for YTD and ALL.
func (r ReportRange) Days() int {
	switch r {
	case Range7Days:
		return 7
	case Range30Days:
		return 30
	case Range90Days:
		return 90
	default:
		return 0
	}
}

// RangeWindow is a day-aligned current window plus the equal-length window
// immediately before it. The previous window is nil for ALL.
type RangeWindow struct {
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	PreviousStart *time.Time `json:"previous_start,omitempty"`
	PreviousEnd   *time.Time `json:"previous_end,omitempty"`
}

// HasPrevious reports whether a comparison window exists.
func (w RangeWindow) HasPrevious() bool {
	return w.PreviousStart != nil && w.PreviousEnd != nil
}

// ChartPoint is one calendar day bucket.
type ChartPoint struct {
	DateKey        string  `json:"date_key"` // 2006-01-02
	Label          string  `json:"label"`
	Revenue        float64 `json:"revenue"`
	SessionCount   int     `json:"session_count"`
	UtilizationPct int     `json:"utilization_pct"` // relative to the busiest day of the window
}

type ReportSummary struct {
	TotalRevenue                 float64  `json:"total_revenue"`
	TotalSessions                int      `json:"total_sessions"`
	TotalEnergyKWh               float64  `json:"total_energy_kwh"`
	AverageRevenuePerDay         float64  `json:"average_revenue_per_day"`
	PreviousAverageRevenuePerDay float64  `json:"previous_average_revenue_per_day"`
	AverageRevenueDeltaPct       *float64 `json:"average_revenue_delta_pct"`
	AverageSessionMinutes        float64  `json:"average_session_minutes"`
	BusiestHour                  string   `json:"busiest_hour"`
	BusiestHourIndex             *int     `json:"busiest_hour_index"`
	EnergyReliabilityPct         *float64 `json:"energy_reliability_pct"`
	ReliabilityLabel             string   `json:"reliability_label"`
	UniqueUsers                  int      `json:"unique_users"`
	PreviousUniqueUsers          int      `json:"previous_unique_users"`
	ChurnDeltaPct                *float64 `json:"churn_delta_pct"`
	ChurnRiskLabel               string   `json:"churn_risk_label"`
}

type ForecastTrend string

const (
	TrendUp   ForecastTrend = "up"
	TrendDown ForecastTrend = "down"
	TrendFlat ForecastTrend = "flat"
)

// ReportForecast extrapolates average daily revenue to a full calendar month.
type ReportForecast struct {
	EstimatedMonthlyClose float64       `json:"estimated_monthly_close"`
	PreviousMonthlyClose  float64       `json:"previous_monthly_close"`
	DeltaPct              *float64      `json:"delta_pct"`
	Trend                 ForecastTrend `json:"trend"`
}

type HeatmapCell struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ExportRow is the flat download representation of a session.
type ExportRow struct {
	ID              string `json:"ID"`
	Date            string `json:"Date"`
	Station         string `json:"Station"`
	User            string `json:"User"`
	EnergyKWh       string `json:"Energy_kWh"`
	TotalAmount     string `json:"Total_Amount"`
	DurationMinutes int    `json:"Duration_Minutes"`
	Status          string `json:"Status"`
}

// ExportHeader is the column order of exported rows.
var ExportHeader = []string{"ID", "Date", "Station", "User", "Energy_kWh", "Total_Amount", "Duration_Minutes", "Status"}

// ReportMetrics is the single immutable output of one report computation.
type ReportMetrics struct {
	Range            ReportRange    `json:"range"`
	ChartData        []ChartPoint   `json:"chart_data"`
	Summary          ReportSummary  `json:"summary"`
	Forecast         ReportForecast `json:"forecast"`
	Heatmap          []HeatmapCell  `json:"heatmap"`
	ExportRows       []ExportRow    `json:"export_rows"`
	FilteredSessions []Session      `json:"filtered_sessions"`
	TotalRevenue     float64        `json:"total_revenue"`
	TotalSessions    int            `json:"total_sessions"`
	WindowStart      time.Time      `json:"window_start"`
	WindowEnd        time.Time      `json:"window_end"`
	HasData          bool           `json:"has_data"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// ReportQuery identifies one computation. Any change to its fields makes an
// in-flight result for the previous query stale.
type ReportQuery struct {
	Range      ReportRange     `json:"range"`
	ViewerID   string          `json:"viewer_id"`
	OrgID      string          `json:"org_id,omitempty"`
	Capability OwnerCapability `json:"capability,omitempty"`
}

// Key is the cache and event key of the query.
func (q ReportQuery) Key() string {
	capability := q.Capability
	if capability == "" {
		capability = CapabilityBoth
	}
	return fmt.Sprintf("report:%s:%s:%s:%s", q.Range, q.ViewerID, q.OrgID, capability)
}
