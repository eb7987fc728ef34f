package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

type SessionRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSessionRepository(db *gorm.DB, log *zap.Logger) *SessionRepository {
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

// FetchPage implements ports.SessionSource. Rows come newest first with the
// session ID as tie breaker so pages are stable.
func (r *SessionRepository) FetchPage(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("invalid page %d / size %d", page, pageSize)
	}

	base := r.scoped(ctx, scope)

	var total int64
	if err := base.Session(&gorm.Session{}).Model(&SessionModel{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	var rows []sessionRow
	err := base.Session(&gorm.Session{}).
		Model(&SessionModel{}).
		Select("charging_sessions.*, stations.name AS station_name").
		Joins("LEFT JOIN stations ON stations.id = charging_sessions.station_id").
		Order("charging_sessions.started_at DESC").
		Order("charging_sessions.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query sessions page %d: %w", page, err)
	}

	result := &ports.SessionPage{
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
	result.Sessions = make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		result.Sessions = append(result.Sessions, row.toDomain())
	}

	r.log.Debug("Fetched session page",
		zap.String("owner_id", scope.ViewerID),
		zap.Int("page", page),
		zap.Int("rows", len(rows)),
		zap.Int("total_pages", result.TotalPages),
	)
	return result, nil
}

func (r *SessionRepository) scoped(ctx context.Context, scope ports.SourceScope) *gorm.DB {
	q := r.db.WithContext(ctx).Where("charging_sessions.owner_id = ?", scope.ViewerID)
	if scope.OrgID != "" {
		q = q.Where("charging_sessions.org_id = ?", scope.OrgID)
	}
	return q
}
