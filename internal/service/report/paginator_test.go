package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/mocks"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

var testNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func sessionsAt(prefix string, n int, startedAt time.Time) []domain.Session {
	out := make([]domain.Session, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Session{
			ID:        fmt.Sprintf("%s-%d", prefix, i),
			StationID: "st-1",
			UserID:    "u-1",
			StartedAt: startedAt.Add(-time.Duration(i) * time.Minute),
			Cost:      10,
			Status:    domain.SessionStatusCompleted,
		})
	}
	return out
}

func TestPaginator_StopsOnceOlderThanWindow(t *testing.T) {
	// Arrange
	source := &mocks.MockSessionSource{
		Pages: map[int]*ports.SessionPage{
			1: {Sessions: sessionsAt("p1", 3, testNow), TotalPages: 3},
			2: {Sessions: sessionsAt("p2", 3, testNow.AddDate(0, 0, -40)), TotalPages: 3},
			3: {Sessions: sessionsAt("p3", 3, testNow.AddDate(0, 0, -80)), TotalPages: 3},
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	// Act
	sessions, stats, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.Range7Days, testNow)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, source.Calls())
	assert.Len(t, sessions, 6)
	assert.Equal(t, 2, stats.PagesFetched)
	assert.Equal(t, StopOlderThanWindow, stats.StopReason)
}

func TestPaginator_StopsAtCurrentWindowStart(t *testing.T) {
	// Page 2 is 10 days old: before the 7d window start, so page 3 is
	// never fetched even though it would fall in the comparison window.
	source := &mocks.MockSessionSource{
		Pages: map[int]*ports.SessionPage{
			1: {Sessions: sessionsAt("p1", 2, testNow), TotalPages: 3},
			2: {Sessions: sessionsAt("p2", 2, testNow.AddDate(0, 0, -10)), TotalPages: 3},
			3: {Sessions: sessionsAt("p3", 2, testNow.AddDate(0, 0, -20)), TotalPages: 3},
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	sessions, stats, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.Range7Days, testNow)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, source.Calls())
	assert.Len(t, sessions, 4)
	assert.Equal(t, 2, stats.PagesFetched)
	assert.Equal(t, StopOlderThanWindow, stats.StopReason)
}

func TestPaginator_AllRangeFetchesEverything(t *testing.T) {
	source := &mocks.MockSessionSource{
		Pages: map[int]*ports.SessionPage{
			1: {Sessions: sessionsAt("p1", 1, testNow), TotalPages: 3},
			2: {Sessions: sessionsAt("p2", 1, testNow.AddDate(-1, 0, 0)), TotalPages: 3},
			3: {Sessions: sessionsAt("p3", 1, testNow.AddDate(-2, 0, 0)), TotalPages: 3},
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	sessions, _, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.RangeAll, testNow)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, source.Calls())
	assert.Len(t, sessions, 3)
}

func TestPaginator_NewestFirstDisabled(t *testing.T) {
	source := &mocks.MockSessionSource{
		Pages: map[int]*ports.SessionPage{
			1: {Sessions: sessionsAt("p1", 1, testNow.AddDate(0, 0, -60)), TotalPages: 2},
			2: {Sessions: sessionsAt("p2", 1, testNow), TotalPages: 2},
		},
	}
	p := NewPaginator(source, PaginatorConfig{NewestFirst: false}, zap.NewNop())

	sessions, _, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.Range7Days, testNow)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, source.Calls())
	assert.Len(t, sessions, 2)
}

func TestPaginator_EmptyPageAndMaxPages(t *testing.T) {
	empty := &mocks.MockSessionSource{}
	p := NewPaginator(empty, DefaultPaginatorConfig(), zap.NewNop())

	sessions, stats, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.Range30Days, testNow)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Equal(t, StopEmptyPage, stats.StopReason)

	endless := &mocks.MockSessionSource{
		FetchPageFunc: func(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
			return &ports.SessionPage{Sessions: sessionsAt(fmt.Sprintf("p%d", page), 1, testNow), TotalPages: 1000}, nil
		},
	}
	p = NewPaginator(endless, PaginatorConfig{MaxPages: 4, NewestFirst: true}, zap.NewNop())

	sessions, stats, err = p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.RangeAll, testNow)
	require.NoError(t, err)
	assert.Len(t, sessions, 4)
	assert.Equal(t, StopMaxPages, stats.StopReason)
	assert.Equal(t, []int{1, 2, 3, 4}, endless.Calls())
}

func TestPaginator_DedupesLastWriteWins(t *testing.T) {
	updated := sessionsAt("p1", 1, testNow)[0]
	updated.Cost = 99
	source := &mocks.MockSessionSource{
		Pages: map[int]*ports.SessionPage{
			1: {Sessions: sessionsAt("p1", 2, testNow), TotalPages: 2},
			2: {Sessions: []domain.Session{updated}, TotalPages: 2},
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	sessions, stats, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.Range7Days, testNow)

	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "p1-0", sessions[0].ID)
	assert.Equal(t, 99.0, sessions[0].Cost)
	assert.Equal(t, 3, stats.SessionsFetched)
	assert.Equal(t, 2, stats.Unique)
}

func TestPaginator_FailureDiscardsFetchedPages(t *testing.T) {
	upstream := errors.New("gateway timeout")
	source := &mocks.MockSessionSource{
		FetchPageFunc: func(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
			if page == 3 {
				return nil, upstream
			}
			return &ports.SessionPage{Sessions: sessionsAt(fmt.Sprintf("p%d", page), 2, testNow), TotalPages: 5}, nil
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	sessions, stats, err := p.FetchSessionsForRange(context.Background(), ports.SourceScope{ViewerID: "owner-1"}, domain.RangeAll, testNow)

	assert.Nil(t, sessions)
	assert.Equal(t, 2, stats.PagesFetched)
	assert.ErrorIs(t, err, ErrReportUnavailable)
	assert.ErrorIs(t, err, upstream)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 3, fetchErr.Page)
}

func TestPaginator_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &mocks.MockSessionSource{
		FetchPageFunc: func(_ context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
			cancel()
			return &ports.SessionPage{Sessions: sessionsAt("p", 1, testNow), TotalPages: 3}, nil
		},
	}
	p := NewPaginator(source, DefaultPaginatorConfig(), zap.NewNop())

	_, _, err := p.FetchSessionsForRange(ctx, ports.SourceScope{ViewerID: "owner-1"}, domain.RangeAll, testNow)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int{1}, source.Calls())
}

func TestStopThreshold(t *testing.T) {
	assert.True(t, StopThreshold(domain.RangeAll, testNow).IsZero())
	assert.Equal(t, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), StopThreshold(domain.Range7Days, testNow))
	assert.Equal(t, time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC), StopThreshold(domain.Range30Days, testNow))
}
