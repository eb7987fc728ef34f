package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

type StationRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStationRepository(db *gorm.DB, log *zap.Logger) *StationRepository {
	return &StationRepository{
		db:  db,
		log: log,
	}
}

// ListStations implements ports.StationSource. An empty orgID lists all
// stations.
func (r *StationRepository) ListStations(ctx context.Context, orgID string) ([]domain.Station, error) {
	var models []StationModel
	q := r.db.WithContext(ctx).Order("id")
	if orgID != "" {
		q = q.Where("org_id = ?", orgID)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}

	stations := make([]domain.Station, 0, len(models))
	for _, m := range models {
		stations = append(stations, m.toDomain())
	}
	return stations, nil
}
