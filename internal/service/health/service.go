package health

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/ports"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

const checkTimeout = 5 * time.Second

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Service handles health checks
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// Config holds health service configuration. Nil dependencies are not
// checked.
type Config struct {
	Version string
	DB      *sql.DB
	// Cache failures only degrade readiness; reports are computed without it.
	Cache ports.Cache
	// Source checks the session history source. A failing source degrades
	// readiness: reports answer "unavailable" until it recovers.
	Source func(ctx context.Context) error
}

// NewService creates a new health service
func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.DB != nil {
		s.RegisterChecker("database", pingCheck("database", StatusUnhealthy, config.DB.PingContext, log))
	}
	if config.Cache != nil {
		cache := config.Cache
		s.RegisterChecker("cache", pingCheck("cache", StatusDegraded, func(context.Context) error {
			return cache.Ping()
		}, log))
	}
	if config.Source != nil {
		s.RegisterChecker("history_source", pingCheck("history_source", StatusDegraded, config.Source, log))
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every checker concurrently. Any unhealthy check makes the
// service unready; degraded checks only lower the status.
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	checkers := s.snapshot()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, nc := range checkers {
		wg.Add(1)
		go func(i int, checker Checker) {
			defer wg.Done()
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			results[i] = checker(checkCtx)
		}(i, nc.checker)
	}
	wg.Wait()

	response := &ReadyResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(results)),
	}
	for i, result := range results {
		response.Checks[checkers[i].name] = result
		switch {
		case result.Status == StatusUnhealthy:
			response.Ready = false
			response.Status = StatusUnhealthy
		case result.Status == StatusDegraded && response.Status == StatusHealthy:
			response.Status = StatusDegraded
		}
	}
	return response
}

type namedChecker struct {
	name    string
	checker Checker
}

// snapshot copies the registered checkers in name order.
func (s *Service) snapshot() []namedChecker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]namedChecker, 0, len(s.checkers))
	for name, checker := range s.checkers {
		out = append(out, namedChecker{name: name, checker: checker})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// pingCheck reports failStatus when ping fails.
func pingCheck(name string, failStatus Status, ping func(context.Context) error, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		result := CheckResult{
			Name:      name,
			Timestamp: start,
		}

		err := ping(ctx)
		result.Duration = time.Since(start)

		if err != nil {
			result.Status = failStatus
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Health check failed", zap.String("check", name), zap.Error(err))
		} else {
			result.Status = StatusHealthy
			result.Message = "connection ok"
		}

		return result
	}
}
