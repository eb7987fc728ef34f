package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/observability/telemetry"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

// Config holds platform API client configuration
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	// Breaker settings; zero values use gobreaker defaults.
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
	BreakerMinRequests uint32
	BreakerFailureRate float64
}

// ErrCircuitOpen is returned by Ping while the breaker rejects calls.
var ErrCircuitOpen = errors.New("platform api circuit open")

// StatusError is a non-2xx answer from the platform API.
type StatusError struct {
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform %s: status %d", e.Path, e.StatusCode)
}

// Client reads session history and stations from the platform REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

type historyResponse struct {
	Sessions   []sessionDTO `json:"sessions"`
	Pagination struct {
		Page       int `json:"page"`
		TotalPages int `json:"totalPages"`
	} `json:"pagination"`
}

type sessionDTO struct {
	ID                 string          `json:"id"`
	StationID          string          `json:"stationId"`
	UserID             string          `json:"userId"`
	StartedAt          time.Time       `json:"startedAt"`
	Cost               decimal.Decimal `json:"cost"`
	EnergyDeliveredKWh decimal.Decimal `json:"energyDeliveredKWh"`
	DurationMinutes    int             `json:"durationMinutes"`
	Status             string          `json:"status"`
	StationName        string          `json:"stationName"`
	UserName           string          `json:"userName"`
}

type stationDTO struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Name  string `json:"name"`
	OrgID string `json:"orgId"`
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BreakerMinRequests == 0 {
		cfg.BreakerMinRequests = 3
	}
	if cfg.BreakerFailureRate <= 0 {
		cfg.BreakerFailureRate = 0.6
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		log:        log,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "platform-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.BreakerMinRequests && failureRatio >= cfg.BreakerFailureRate
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return c
}

// FetchPage implements ports.SessionSource.
func (c *Client) FetchPage(ctx context.Context, scope ports.SourceScope, page, pageSize int) (*ports.SessionPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(pageSize))
	if scope.ViewerID != "" {
		query.Set("ownerId", scope.ViewerID)
	}
	if scope.OrgID != "" {
		query.Set("orgId", scope.OrgID)
	}

	var resp historyResponse
	if err := c.get(ctx, "history", query, &resp); err != nil {
		return nil, err
	}

	sessions := make([]domain.Session, 0, len(resp.Sessions))
	for _, dto := range resp.Sessions {
		sessions = append(sessions, dto.toDomain())
	}

	return &ports.SessionPage{
		Sessions:   sessions,
		TotalPages: resp.Pagination.TotalPages,
	}, nil
}

// ListStations implements ports.StationSource.
func (c *Client) ListStations(ctx context.Context, orgID string) ([]domain.Station, error) {
	query := url.Values{}
	if orgID != "" {
		query.Set("orgId", orgID)
	}

	var resp []stationDTO
	if err := c.get(ctx, "stations", query, &resp); err != nil {
		return nil, err
	}

	stations := make([]domain.Station, 0, len(resp))
	for _, dto := range resp {
		stations = append(stations, domain.Station{
			ID:    dto.ID,
			Type:  domain.ParseStationType(dto.Type),
			Name:  dto.Name,
			OrgID: dto.OrgID,
		})
	}
	return stations, nil
}

// Ping reports whether requests currently reach the platform API. It does
// not call the API.
func (c *Client) Ping(ctx context.Context) error {
	if c.breaker.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, path)
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, path, endpoint, out)
	})
	telemetry.SourceLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "rejected"
		}
	}
	telemetry.SourceRequestsTotal.WithLabelValues(path, status).Inc()

	if err != nil {
		return fmt.Errorf("platform %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.Warn("Platform API returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &StatusError{Path: path, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (d sessionDTO) toDomain() domain.Session {
	return domain.Session{
		ID:                 d.ID,
		StationID:          d.StationID,
		UserID:             d.UserID,
		StartedAt:          d.StartedAt,
		Cost:               d.Cost.InexactFloat64(),
		EnergyDeliveredKWh: d.EnergyDeliveredKWh.InexactFloat64(),
		DurationMinutes:    d.DurationMinutes,
		Status:             domain.ParseSessionStatus(d.Status),
		StationName:        d.StationName,
		UserName:           d.UserName,
	}
}
