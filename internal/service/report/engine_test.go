package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

var allRanges = []domain.ReportRange{
	domain.Range7Days, domain.Range30Days, domain.Range90Days, domain.RangeYTD, domain.RangeAll,
}

// fixtureSessions spreads sessions over the last 200 days across two
// stations and a handful of users.
func fixtureSessions() []domain.Session {
	out := make([]domain.Session, 0, 200)
	for i := 0; i < 200; i++ {
		station := "S1"
		if i%3 == 0 {
			station = "S2"
		}
		status := domain.SessionStatusCompleted
		if i%17 == 0 {
			status = domain.SessionStatusFaulted
		}
		out = append(out, domain.Session{
			ID:                 fmt.Sprintf("s-%03d", i),
			StationID:          station,
			UserID:             fmt.Sprintf("u-%d", i%9),
			StartedAt:          testNow.AddDate(0, 0, -i).Add(-time.Duration(i%12) * time.Hour),
			Cost:               float64(i%7) + 0.35,
			EnergyDeliveredKWh: float64(i%5) + 1.125,
			DurationMinutes:    20 + i%40,
			Status:             status,
		})
	}
	return out
}

var fixtureStations = []domain.Station{
	{ID: "S1", Type: domain.StationTypeCharge},
	{ID: "S2", Type: domain.StationTypeSwap},
}

func computeFixture(rng domain.ReportRange, capability domain.OwnerCapability) *domain.ReportMetrics {
	return Compute(Input{
		Range:      rng,
		ViewerID:   "owner-1",
		Capability: capability,
		Sessions:   fixtureSessions(),
		Stations:   fixtureStations,
		Now:        testNow,
	})
}

func TestCompute_WindowContiguity(t *testing.T) {
	for _, rng := range allRanges {
		t.Run(string(rng), func(t *testing.T) {
			m := computeFixture(rng, domain.CapabilityBoth)

			require.Len(t, m.ChartData, CountDays(m.WindowStart, m.WindowEnd))
			for i := 1; i < len(m.ChartData); i++ {
				prev, err := time.Parse(dateKeyLayout, m.ChartData[i-1].DateKey)
				require.NoError(t, err)
				cur, err := time.Parse(dateKeyLayout, m.ChartData[i].DateKey)
				require.NoError(t, err)
				assert.Equal(t, prev.AddDate(0, 0, 1), cur)
			}
		})
	}
}

func TestCompute_Conservation(t *testing.T) {
	for _, rng := range allRanges {
		t.Run(string(rng), func(t *testing.T) {
			m := computeFixture(rng, domain.CapabilityCharge)

			revenue := 0.0
			count := 0
			for _, p := range m.ChartData {
				revenue += p.Revenue
				count += p.SessionCount
			}
			assert.InDelta(t, m.TotalRevenue, revenue, 1e-6)
			assert.Equal(t, m.TotalSessions, count)
			assert.Equal(t, len(m.FilteredSessions), m.TotalSessions)
			assert.Len(t, m.ExportRows, m.TotalSessions)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	for _, rng := range allRanges {
		assert.Equal(t, computeFixture(rng, domain.CapabilityBoth), computeFixture(rng, domain.CapabilityBoth), string(rng))
	}
}

func TestCompute_UtilizationBound(t *testing.T) {
	for _, rng := range allRanges {
		m := computeFixture(rng, domain.CapabilitySwap)

		maxCount, maxUtil := 0, 0
		for _, p := range m.ChartData {
			assert.GreaterOrEqual(t, p.UtilizationPct, 0)
			assert.LessOrEqual(t, p.UtilizationPct, 100)
			if p.SessionCount > maxCount {
				maxCount = p.SessionCount
				maxUtil = p.UtilizationPct
			}
		}
		if maxCount > 0 {
			assert.Equal(t, 100, maxUtil, string(rng))
		}
	}
}

func TestCompute_CapabilityScopesEverything(t *testing.T) {
	m := computeFixture(domain.Range90Days, domain.CapabilitySwap)

	require.True(t, m.HasData)
	for _, s := range m.FilteredSessions {
		assert.Equal(t, "S2", s.StationID)
	}
	assert.Equal(t, 100.0, m.Heatmap[2].Value)
}

func TestCompute_SummaryAndComparison(t *testing.T) {
	sessions := []domain.Session{
		{ID: "c1", StationID: "S1", UserID: "u1", StartedAt: testNow.Add(-time.Hour), Cost: 30, DurationMinutes: 30, Status: domain.SessionStatusCompleted},
		{ID: "c2", StationID: "S1", UserID: "u2", StartedAt: testNow.AddDate(0, 0, -1), Cost: 40, DurationMinutes: 60, Status: domain.SessionStatusCompleted},
		{ID: "p1", StationID: "S1", UserID: "u1", StartedAt: testNow.AddDate(0, 0, -8), Cost: 35, Status: domain.SessionStatusCompleted},
		{ID: "ancient", StationID: "S1", UserID: "u9", StartedAt: testNow.AddDate(0, 0, -60), Cost: 1000},
	}

	m := Compute(Input{Range: domain.Range7Days, ViewerID: "owner-1", Sessions: sessions, Stations: fixtureStations, Now: testNow})

	assert.True(t, m.HasData)
	assert.Equal(t, 70.0, m.TotalRevenue)
	assert.Equal(t, 2, m.TotalSessions)
	assert.Equal(t, 10.0, m.Summary.AverageRevenuePerDay)
	assert.Equal(t, 5.0, m.Summary.PreviousAverageRevenuePerDay)
	require.NotNil(t, m.Summary.AverageRevenueDeltaPct)
	assert.InDelta(t, 100, *m.Summary.AverageRevenueDeltaPct, 1e-9)
	assert.Equal(t, 45.0, m.Summary.AverageSessionMinutes)
	assert.Equal(t, 2, m.Summary.UniqueUsers)
	assert.Equal(t, 1, m.Summary.PreviousUniqueUsers)
	assert.Equal(t, ReliabilityNominal, m.Summary.ReliabilityLabel)
	assert.Equal(t, domain.TrendUp, m.Forecast.Trend)
	assert.Equal(t, 310.0, m.Forecast.EstimatedMonthlyClose)
	assert.Equal(t, "c1", m.ExportRows[0].ID)
}

func TestCompute_EmptyInput(t *testing.T) {
	m := Compute(Input{Range: domain.Range30Days, ViewerID: "owner-1", Now: testNow})

	assert.False(t, m.HasData)
	assert.Equal(t, NotAvailable, m.Summary.BusiestHour)
	assert.Empty(t, m.ExportRows)
	assert.NotNil(t, m.ExportRows)
	require.Len(t, m.Heatmap, 3)
	for _, c := range m.Heatmap {
		assert.Equal(t, 0.0, c.Value)
	}
	require.Len(t, m.ChartData, 30)
	for _, p := range m.ChartData {
		assert.Zero(t, p.Revenue)
		assert.Zero(t, p.SessionCount)
	}
}

func TestCompute_NoViewer(t *testing.T) {
	m := Compute(Input{Range: domain.Range7Days, Sessions: fixtureSessions(), Now: testNow})

	assert.False(t, m.HasData)
	assert.Len(t, m.ChartData, 7)
	assert.Zero(t, m.TotalSessions)
}

func TestCompute_StationsWithoutSessions(t *testing.T) {
	m := Compute(Input{Range: domain.Range7Days, ViewerID: "owner-1", Stations: fixtureStations, Now: testNow})

	assert.False(t, m.HasData)
	assert.Equal(t, 0.0, m.Heatmap[2].Value)
	assert.Equal(t, NotAvailable, m.Summary.ChurnRiskLabel)
}
