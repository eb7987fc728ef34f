package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

const (
	exportDateLayout = "2006-01-02 15:04:05"
	unknown          = "Unknown"
)

// BuildExportRows flattens sessions newest first. Ties on start time are
// ordered by ID so the output is stable.
func BuildExportRows(sessions []domain.Session, loc *time.Location) []domain.ExportRow {
	sorted := make([]domain.Session, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartedAt.Equal(sorted[j].StartedAt) {
			return sorted[i].StartedAt.After(sorted[j].StartedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	rows := make([]domain.ExportRow, 0, len(sorted))
	for _, s := range sorted {
		rows = append(rows, domain.ExportRow{
			ID:              s.ID,
			Date:            s.StartedAt.In(loc).Format(exportDateLayout),
			Station:         firstNonEmpty(s.StationName, s.StationID, unknown),
			User:            firstNonEmpty(s.UserName, s.UserID, unknown),
			EnergyKWh:       decimal.NewFromFloat(s.EnergyDeliveredKWh).StringFixed(3),
			TotalAmount:     decimal.NewFromFloat(s.Cost).StringFixed(2),
			DurationMinutes: s.DurationMinutes,
			Status:          string(s.Status),
		})
	}
	return rows
}

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.ID,
			r.Date,
			r.Station,
			r.User,
			r.EnergyKWh,
			r.TotalAmount,
			strconv.Itoa(r.DurationMinutes),
			r.Status,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
