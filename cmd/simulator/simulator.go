package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	OwnerID  string
	OrgID    string
	Token    string // required bearer token; empty disables auth
	Stations int
	Sessions int
	Days     int // history depth
	Seed     int64
	FailPage int // page answered with 503; 0 disables
	Now      time.Time
}

type stationPayload struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	OrgID string `json:"orgId"`
}

type sessionPayload struct {
	ID                 string          `json:"id"`
	StationID          string          `json:"stationId"`
	UserID             string          `json:"userId"`
	StartedAt          time.Time       `json:"startedAt"`
	Cost               decimal.Decimal `json:"cost"`
	EnergyDeliveredKWh decimal.Decimal `json:"energyDeliveredKWh"`
	DurationMinutes    int             `json:"durationMinutes"`
	Status             string          `json:"status"`
	StationName        string          `json:"stationName,omitempty"`
	UserName           string          `json:"userName,omitempty"`
}

type paginationPayload struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type historyPayload struct {
	Sessions   []sessionPayload  `json:"sessions"`
	Pagination paginationPayload `json:"pagination"`
}

// Simulator serves a synthetic platform history API: one owner, a fixed
// station fleet and a session history ordered newest first.
type Simulator struct {
	config   *SimulatorConfig
	stations []stationPayload
	sessions []sessionPayload
	log      *zap.Logger
}

// NewSimulator generates the fleet and history. The same seed and Now always
// produce the same data.
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	if config.Now.IsZero() {
		config.Now = time.Now()
	}
	if config.Stations <= 0 {
		config.Stations = 1
	}
	if config.Days <= 0 {
		config.Days = 1
	}

	rng := rand.New(rand.NewSource(config.Seed))

	stations := make([]stationPayload, 0, config.Stations)
	for i := 0; i < config.Stations; i++ {
		stationType, label := "CHARGE", "Charging"
		if i%2 == 1 {
			stationType, label = "SWAP", "Swap"
		}
		stations = append(stations, stationPayload{
			ID:    fmt.Sprintf("ST%03d", i+1),
			Type:  stationType,
			Name:  fmt.Sprintf("%s Station %d", label, i+1),
			OrgID: config.OrgID,
		})
	}

	users := max(config.Sessions/4, 1)
	span := time.Duration(config.Days) * 24 * time.Hour

	sessions := make([]sessionPayload, 0, config.Sessions)
	for i := 0; i < config.Sessions; i++ {
		station := stations[rng.Intn(len(stations))]
		user := rng.Intn(users) + 1
		energy := 5 + rng.Float64()*55

		sessions = append(sessions, sessionPayload{
			ID:                 fmt.Sprintf("SES%06d", i+1),
			StationID:          station.ID,
			UserID:             fmt.Sprintf("USR%04d", user),
			StartedAt:          config.Now.Add(-time.Duration(rng.Int63n(int64(span)))).Truncate(time.Minute).UTC(),
			Cost:               decimal.NewFromFloat(energy * 0.89).Round(2),
			EnergyDeliveredKWh: decimal.NewFromFloat(energy).Round(3),
			DurationMinutes:    10 + int(math.Round(energy)),
			Status:             randomStatus(rng),
			StationName:        station.Name,
			UserName:           fmt.Sprintf("Driver %d", user),
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})

	log.Info("Simulated history generated",
		zap.String("owner_id", config.OwnerID),
		zap.Int("stations", len(stations)),
		zap.Int("sessions", len(sessions)),
		zap.Int("days", config.Days),
	)

	return &Simulator{
		config:   config,
		stations: stations,
		sessions: sessions,
		log:      log,
	}
}

func randomStatus(rng *rand.Rand) string {
	switch n := rng.Intn(100); {
	case n < 94:
		return "COMPLETED"
	case n < 97:
		return "FAULTED"
	default:
		return "CANCELLED"
	}
}

// App returns the fiber application serving /history and /stations.
func (s *Simulator) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "sigec-history-simulator",
		DisableStartupMessage: true,
	})

	app.Use(s.requireToken)
	app.Get("/history", s.handleHistory)
	app.Get("/stations", s.handleStations)

	return app
}

func (s *Simulator) requireToken(c *fiber.Ctx) error {
	if s.config.Token == "" {
		return c.Next()
	}
	if c.Get("Authorization") != "Bearer "+s.config.Token {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
	}
	return c.Next()
}

func (s *Simulator) handleHistory(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultPageLimit)
	if page < 1 || limit < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page and limit must be positive"})
	}
	limit = min(limit, maxPageLimit)

	if s.config.FailPage > 0 && page == s.config.FailPage {
		s.log.Warn("Simulating history failure", zap.Int("page", page))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "simulated outage"})
	}

	sessions := s.sessions
	if !s.owns(c.Query("ownerId"), c.Query("orgId")) {
		sessions = nil
	}

	total := len(sessions)
	totalPages := (total + limit - 1) / limit
	from := min((page-1)*limit, total)
	to := min(from+limit, total)

	s.log.Debug("History page served",
		zap.Int("page", page),
		zap.Int("limit", limit),
		zap.Int("returned", to-from),
	)

	return c.JSON(historyPayload{
		Sessions: append([]sessionPayload{}, sessions[from:to]...),
		Pagination: paginationPayload{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (s *Simulator) handleStations(c *fiber.Ctx) error {
	orgID := c.Query("orgId")
	if orgID != "" && orgID != s.config.OrgID {
		return c.JSON([]stationPayload{})
	}
	return c.JSON(s.stations)
}

// owns reports whether the query targets the simulated owner. Empty filters
// match.
func (s *Simulator) owns(ownerID, orgID string) bool {
	if ownerID != "" && ownerID != s.config.OwnerID {
		return false
	}
	if orgID != "" && orgID != s.config.OrgID {
		return false
	}
	return true
}
