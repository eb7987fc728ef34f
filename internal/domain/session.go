package domain

import (
	"strings"
	"time"
)

type SessionStatus string

const (
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusActive    SessionStatus = "ACTIVE"
	SessionStatusFaulted   SessionStatus = "FAULTED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// ParseSessionStatus normalizes a source status to its upper-case form.
func ParseSessionStatus(s string) SessionStatus {
	return SessionStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// Session is one charging or swap session as reported by the history source.
// Sessions are read-only snapshots; ID is the identity.
type Session struct {
	ID                 string        `json:"id"`
	StationID          string        `json:"station_id"`
	UserID             string        `json:"user_id"`
	StartedAt          time.Time     `json:"started_at"`
	Cost               float64       `json:"cost"`                 // currency units
	EnergyDeliveredKWh float64       `json:"energy_delivered_kwh"` // kWh
	DurationMinutes    int           `json:"duration_minutes"`
	Status             SessionStatus `json:"status"`
	StationName        string        `json:"station_name,omitempty"`
	UserName           string        `json:"user_name,omitempty"`
}

// IsCompleted reports whether the session finished normally.
func (s Session) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}
