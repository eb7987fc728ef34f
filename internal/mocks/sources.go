package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

// MockSessionSource is a mock implementation of SessionSource. Without
// FetchPageFunc it serves Pages by page number and an empty page otherwise.
type MockSessionSource struct {
	FetchPageFunc func(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error)
	Pages         map[int]*ports.SessionPage

	mu    sync.Mutex
	calls []int
}

func (m *MockSessionSource) FetchPage(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
	m.mu.Lock()
	m.calls = append(m.calls, page)
	m.mu.Unlock()

	if m.FetchPageFunc != nil {
		return m.FetchPageFunc(ctx, scope, page, pageSize)
	}
	if p, ok := m.Pages[page]; ok {
		return p, nil
	}
	return &ports.SessionPage{TotalPages: len(m.Pages)}, nil
}

// Calls returns the requested page numbers in order.
func (m *MockSessionSource) Calls() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.calls...)
}

// MockStationSource is a mock implementation of StationSource
type MockStationSource struct {
	ListStationsFunc func(ctx context.Context, orgID string) ([]domain.Station, error)
	Stations         []domain.Station
}

func (m *MockStationSource) ListStations(ctx context.Context, orgID string) ([]domain.Station, error) {
	if m.ListStationsFunc != nil {
		return m.ListStationsFunc(ctx, orgID)
	}
	return m.Stations, nil
}
