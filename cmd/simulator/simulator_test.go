package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/adapter/external/platform"
	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
	"github.com/seu-repo/sigec-reports/internal/service/report"
)

var simNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newTestSimulator(failPage int) *Simulator {
	return NewSimulator(&SimulatorConfig{
		OwnerID:  "owner-1",
		OrgID:    "org-1",
		Stations: 4,
		Sessions: 95,
		Days:     120,
		Seed:     7,
		FailPage: failPage,
		Now:      simNow,
	}, zap.NewNop())
}

func getHistory(t *testing.T, sim *Simulator, target string) (int, historyPayload) {
	t.Helper()
	resp, err := sim.App().Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body historyPayload
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

func TestSimulator_Deterministic(t *testing.T) {
	a, b := newTestSimulator(0), newTestSimulator(0)
	assert.Equal(t, a.sessions, b.sessions)
	assert.Equal(t, a.stations, b.stations)
}

func TestSimulator_HistoryIsNewestFirst(t *testing.T) {
	sim := newTestSimulator(0)

	status, body := getHistory(t, sim, "/history?page=1&limit=40&ownerId=owner-1")

	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Sessions, 40)
	assert.Equal(t, 3, body.Pagination.TotalPages)
	assert.Equal(t, 95, body.Pagination.Total)
	for i := 1; i < len(body.Sessions); i++ {
		assert.False(t, body.Sessions[i].StartedAt.After(body.Sessions[i-1].StartedAt))
	}

	_, last := getHistory(t, sim, "/history?page=3&limit=40&ownerId=owner-1")
	assert.Len(t, last.Sessions, 15)
}

func TestSimulator_OtherOwnerSeesNothing(t *testing.T) {
	status, body := getHistory(t, newTestSimulator(0), "/history?page=1&ownerId=someone-else")

	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Sessions)
	assert.Zero(t, body.Pagination.TotalPages)
}

func TestSimulator_FailPage(t *testing.T) {
	status, _ := getHistory(t, newTestSimulator(2), "/history?page=2&ownerId=owner-1")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestSimulator_RequiresToken(t *testing.T) {
	sim := newTestSimulator(0)
	sim.config.Token = "secret"

	status, _ := getHistory(t, sim, "/history?page=1")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSimulator_ServesPlatformClient(t *testing.T) {
	sim := newTestSimulator(0)
	app := sim.App()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	client := platform.NewClient(platform.Config{BaseURL: "http://" + ln.Addr().String()}, zap.NewNop())
	paginator := report.NewPaginator(client, report.PaginatorConfig{PageSize: 20, NewestFirst: true}, zap.NewNop())

	sessions, stats, err := paginator.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1", OrgID: "org-1"}, domain.RangeAll, simNow)
	require.NoError(t, err)
	assert.Len(t, sessions, 95)
	assert.Equal(t, 5, stats.PagesFetched)
	assert.Equal(t, report.StopLastPage, stats.StopReason)

	stations, err := client.ListStations(context.Background(), "org-1")
	require.NoError(t, err)
	require.Len(t, stations, 4)
	assert.Equal(t, domain.StationTypeCharge, stations[0].Type)
	assert.Equal(t, domain.StationTypeSwap, stations[1].Type)
}
