package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

type StationModel struct {
	ID        string `gorm:"primaryKey;type:varchar(64)"`
	OrgID     string `gorm:"index;type:varchar(64)"`
	OwnerID   string `gorm:"index;type:varchar(64)"`
	Name      string
	Type      string `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
}

func (StationModel) TableName() string { return "stations" }

func (m StationModel) toDomain() domain.Station {
	return domain.Station{
		ID:    m.ID,
		Type:  domain.ParseStationType(m.Type),
		Name:  m.Name,
		OrgID: m.OrgID,
	}
}

// SessionModel is a charging or swap session row. Owner and org are
// denormalized so history pages need no join to be scoped.
type SessionModel struct {
	ID                 string          `gorm:"primaryKey;type:varchar(64)"`
	StationID          string          `gorm:"index;type:varchar(64)"`
	OwnerID            string          `gorm:"index:idx_sessions_owner_started,priority:1;type:varchar(64)"`
	OrgID              string          `gorm:"index;type:varchar(64)"`
	UserID             string          `gorm:"type:varchar(64)"`
	UserName           string
	StartedAt          time.Time       `gorm:"index:idx_sessions_owner_started,priority:2,sort:desc"`
	Cost               decimal.Decimal `gorm:"type:numeric(12,2)"`
	EnergyDeliveredKWh decimal.Decimal `gorm:"column:energy_delivered_kwh;type:numeric(12,3)"`
	DurationMinutes    int
	Status             string `gorm:"type:varchar(16)"`
}

func (SessionModel) TableName() string { return "charging_sessions" }

// sessionRow is a session joined with its station name.
type sessionRow struct {
	SessionModel
	StationName string
}

func (r sessionRow) toDomain() domain.Session {
	return domain.Session{
		ID:                 r.ID,
		StationID:          r.StationID,
		UserID:             r.UserID,
		StartedAt:          r.StartedAt,
		Cost:               r.Cost.InexactFloat64(),
		EnergyDeliveredKWh: r.EnergyDeliveredKWh.InexactFloat64(),
		DurationMinutes:    r.DurationMinutes,
		Status:             domain.ParseSessionStatus(r.Status),
		StationName:        r.StationName,
		UserName:           r.UserName,
	}
}
