package mocks

import (
	"context"
	"io"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

// MockReportService is a mock implementation of ReportService interface
type MockReportService struct {
	GenerateFunc  func(ctx context.Context, query domain.ReportQuery) (*domain.ReportMetrics, error)
	ExportCSVFunc func(ctx context.Context, query domain.ReportQuery, w io.Writer) error
}

func (m *MockReportService) Generate(ctx context.Context, query domain.ReportQuery) (*domain.ReportMetrics, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, query)
	}
	return &domain.ReportMetrics{Range: query.Range}, nil
}

func (m *MockReportService) ExportCSV(ctx context.Context, query domain.ReportQuery, w io.Writer) error {
	if m.ExportCSVFunc != nil {
		return m.ExportCSVFunc(ctx, query, w)
	}
	return nil
}

// MockAuthService is a mock implementation of AuthService interface
type MockAuthService struct {
	ValidateTokenFunc func(ctx context.Context, token string) (*domain.Viewer, error)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (*domain.Viewer, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, nil
}
