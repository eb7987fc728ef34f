package ports

import (
	"context"
	"io"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

type ReportService interface {
	// Generate computes the owner report for the query. A nil error with
	// HasData=false means "no activity"; an error means "metrics unavailable".
	Generate(ctx context.Context, query domain.ReportQuery) (*domain.ReportMetrics, error)

	// ExportCSV writes the export rows of the report as CSV.
	ExportCSV(ctx context.Context, query domain.ReportQuery, w io.Writer) error
}

type AuthService interface {
	ValidateToken(ctx context.Context, token string) (*domain.Viewer, error)
}
