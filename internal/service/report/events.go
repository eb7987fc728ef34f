package report

import (
	"time"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

// SubjectReportComputed is published after every fresh computation.
const SubjectReportComputed = "reports.computed"

type ReportComputedEvent struct {
	ID            string             `json:"id"`
	ViewerID      string             `json:"viewer_id"`
	OrgID         string             `json:"org_id,omitempty"`
	Range         domain.ReportRange `json:"range"`
	Capability    string             `json:"capability"`
	HasData       bool               `json:"has_data"`
	TotalRevenue  float64            `json:"total_revenue"`
	TotalSessions int                `json:"total_sessions"`
	PagesFetched  int                `json:"pages_fetched"`
	StopReason    StopReason         `json:"stop_reason"`
	WindowStart   time.Time          `json:"window_start"`
	WindowEnd     time.Time          `json:"window_end"`
	ComputedAt    time.Time          `json:"computed_at"`
}
