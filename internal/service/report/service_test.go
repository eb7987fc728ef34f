package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/mocks"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

type serviceFixture struct {
	sessions *mocks.MockSessionSource
	stations *mocks.MockStationSource
	cache    *mocks.MockCache
	mq       *mocks.MockMessageQueue
	service  *Service
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		sessions: &mocks.MockSessionSource{
			Pages: map[int]*ports.SessionPage{
				1: {Sessions: []domain.Session{
					{ID: "s1", StationID: "S1", UserID: "u1", StartedAt: testNow.Add(-time.Hour), Cost: 12.5, Status: domain.SessionStatusCompleted},
					{ID: "s2", StationID: "S2", UserID: "u2", StartedAt: testNow.AddDate(0, 0, -2), Cost: 8, Status: domain.SessionStatusCompleted},
				}, TotalPages: 1},
			},
		},
		stations: &mocks.MockStationSource{Stations: fixtureStations},
		cache:    mocks.NewMockCache(),
		mq:       mocks.NewMockMessageQueue(),
	}
	f.service = newService(f.sessions, f.stations, f.cache, f.mq, ServiceConfig{
		Paginator: DefaultPaginatorConfig(),
		CacheTTL:  time.Minute,
		Clock:     func() time.Time { return testNow },
	}, zap.NewNop())
	return f
}

func TestService_Generate(t *testing.T) {
	f := newServiceFixture(t)
	query := domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1", OrgID: "org-1", Capability: domain.CapabilityCharge}

	m, err := f.service.Generate(context.Background(), query)

	require.NoError(t, err)
	assert.True(t, m.HasData)
	assert.Equal(t, 1, m.TotalSessions)
	assert.Equal(t, 12.5, m.TotalRevenue)
	assert.Equal(t, 1, f.cache.Keys())

	published := f.mq.GetPublishedMessages(SubjectReportComputed)
	require.Len(t, published, 1)

	var event ReportComputedEvent
	require.NoError(t, json.Unmarshal(published[0], &event))
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "owner-1", event.ViewerID)
	assert.Equal(t, "org-1", event.OrgID)
	assert.Equal(t, "CHARGE", event.Capability)
	assert.Equal(t, 1, event.PagesFetched)
	assert.Equal(t, StopLastPage, event.StopReason)
}

func TestService_Generate_CacheExpiresAtMidnight(t *testing.T) {
	f := newServiceFixture(t)
	brt := time.FixedZone("BRT", -3*3600)
	now := time.Date(2026, 10, 19, 23, 58, 0, 0, brt)
	f.service = newService(f.sessions, f.stations, f.cache, f.mq, ServiceConfig{
		Paginator: DefaultPaginatorConfig(),
		CacheTTL:  time.Hour,
		Location:  brt,
		Clock:     func() time.Time { return now },
	}, zap.NewNop())
	query := domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1"}

	before, err := f.service.Generate(context.Background(), query)
	require.NoError(t, err)
	cached, err := f.service.Generate(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, f.sessions.Calls())
	assert.Equal(t, brt, cached.WindowEnd.Location())

	now = now.Add(4 * time.Minute)
	after, err := f.service.Generate(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1}, f.sessions.Calls())
	assert.Equal(t, 2, f.cache.Keys())
	assert.Equal(t, 19, before.WindowEnd.Day())
	assert.Equal(t, 20, after.WindowEnd.Day())
}

func TestService_Generate_UsesCache(t *testing.T) {
	f := newServiceFixture(t)
	query := domain.ReportQuery{Range: domain.Range30Days, ViewerID: "owner-1"}

	first, err := f.service.Generate(context.Background(), query)
	require.NoError(t, err)
	second, err := f.service.Generate(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, []int{1}, f.sessions.Calls())
	assert.Equal(t, first.TotalRevenue, second.TotalRevenue)
	assert.Len(t, f.mq.GetPublishedMessages(SubjectReportComputed), 1)

	other := query
	other.Capability = domain.CapabilitySwap
	_, err = f.service.Generate(context.Background(), other)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, f.sessions.Calls())
}

func TestService_Generate_CacheFailureIsIgnored(t *testing.T) {
	f := newServiceFixture(t)
	f.cache.GetFunc = func(ctx context.Context, key string) (string, error) {
		return "", errors.New("connection refused")
	}
	f.cache.SetFunc = func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
		return errors.New("connection refused")
	}

	m, err := f.service.Generate(context.Background(), domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1"})

	require.NoError(t, err)
	assert.True(t, m.HasData)
}

func TestService_Generate_NoViewer(t *testing.T) {
	f := newServiceFixture(t)

	m, err := f.service.Generate(context.Background(), domain.ReportQuery{Range: domain.Range7Days})

	require.NoError(t, err)
	assert.False(t, m.HasData)
	assert.Len(t, m.ChartData, 7)
	assert.Empty(t, f.sessions.Calls())
	assert.Empty(t, f.mq.GetPublishedMessages(SubjectReportComputed))
}

func TestService_Generate_StationFailure(t *testing.T) {
	f := newServiceFixture(t)
	f.stations.ListStationsFunc = func(ctx context.Context, orgID string) ([]domain.Station, error) {
		return nil, errors.New("stations api down")
	}

	m, err := f.service.Generate(context.Background(), domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1"})

	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrReportUnavailable)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "stations", fetchErr.Source)
	assert.Zero(t, f.cache.Keys())
	assert.Empty(t, f.mq.GetPublishedMessages(SubjectReportComputed))
}

func TestService_Generate_PublishFailureIsIgnored(t *testing.T) {
	f := newServiceFixture(t)
	f.mq.PublishFunc = func(subject string, data []byte) error {
		return errors.New("nats: connection closed")
	}

	_, err := f.service.Generate(context.Background(), domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1"})

	assert.NoError(t, err)
}

func TestService_ExportCSV(t *testing.T) {
	f := newServiceFixture(t)

	var buf bytes.Buffer
	err := f.service.ExportCSV(context.Background(), domain.ReportQuery{Range: domain.Range7Days, ViewerID: "owner-1"}, &buf)

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(domain.ExportHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "s1,2026-10-19 14:00:00,"))
}

func TestNewService_WithoutOptionalDependencies(t *testing.T) {
	source := &mocks.MockSessionSource{}
	service := NewService(source, nil, nil, nil, ServiceConfig{}, nil)

	m, err := service.Generate(context.Background(), domain.ReportQuery{Range: domain.RangeAll, ViewerID: "owner-1"})

	require.NoError(t, err)
	assert.False(t, m.HasData)
}
