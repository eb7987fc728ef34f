package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/adapter/queue"
	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/observability/telemetry"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

var tracer = otel.Tracer("sigec-reports/report")

// ServiceConfig configures the report service. Zero values fall back to
// defaults: UTC, time.Now and no caching.
type ServiceConfig struct {
	Paginator PaginatorConfig
	CacheTTL  time.Duration
	Location  *time.Location
	Clock     func() time.Time
}

type Service struct {
	paginator *Paginator
	stations  ports.StationSource
	cache     ports.Cache
	mq        queue.MessageQueue
	cacheTTL  time.Duration
	loc       *time.Location
	clock     func() time.Time
	log       *zap.Logger
}

// NewService wires the report pipeline. cache and mq are optional.
func NewService(sessions ports.SessionSource, stations ports.StationSource, cache ports.Cache, mq queue.MessageQueue, cfg ServiceConfig, log *zap.Logger) ports.ReportService {
	return newService(sessions, stations, cache, mq, cfg, log)
}

func newService(sessions ports.SessionSource, stations ports.StationSource, cache ports.Cache, mq queue.MessageQueue, cfg ServiceConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		paginator: NewPaginator(sessions, cfg.Paginator, log),
		stations:  stations,
		cache:     cache,
		mq:        mq,
		cacheTTL:  cfg.CacheTTL,
		loc:       cfg.Location,
		clock:     cfg.Clock,
		log:       log,
	}
}

func (s *Service) Generate(ctx context.Context, query domain.ReportQuery) (*domain.ReportMetrics, error) {
	now := s.clock().In(s.loc)

	if query.ViewerID == "" {
		return EmptyMetrics(query.Range, now), nil
	}

	ctx, span := tracer.Start(ctx, "report.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("report.range", string(query.Range)),
		attribute.String("report.viewer_id", query.ViewerID),
		attribute.String("report.capability", string(query.Capability)),
	)

	key := cacheKey(query, now)
	if cached, ok := s.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("report.cached", true))
		return cached, nil
	}

	start := time.Now()
	metrics, stats, err := s.compute(ctx, query, now)
	telemetry.ReportComputeDuration.WithLabelValues(string(query.Range)).Observe(time.Since(start).Seconds())
	if err != nil {
		telemetry.ReportComputationsTotal.WithLabelValues(string(query.Range), "unavailable").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "metrics unavailable")
		s.log.Error("Owner report unavailable",
			zap.String("viewer_id", query.ViewerID),
			zap.String("range", string(query.Range)),
			zap.Error(err),
		)
		return nil, err
	}

	outcome := "ok"
	if !metrics.HasData {
		outcome = "empty"
	}
	telemetry.ReportComputationsTotal.WithLabelValues(string(query.Range), outcome).Inc()
	telemetry.ReportPagesFetched.Observe(float64(stats.PagesFetched))
	telemetry.ReportSessionsIngested.Observe(float64(stats.Unique))

	s.publish(query, metrics, stats)
	s.store(ctx, key, metrics)

	return metrics, nil
}

func (s *Service) ExportCSV(ctx context.Context, query domain.ReportQuery, w io.Writer) error {
	metrics, err := s.Generate(ctx, query)
	if err != nil {
		return err
	}
	return WriteCSV(w, metrics.ExportRows)
}

func (s *Service) compute(ctx context.Context, query domain.ReportQuery, now time.Time) (*domain.ReportMetrics, PaginationStats, error) {
	scope := ports.SourceScope{ViewerID: query.ViewerID, OrgID: query.OrgID}

	sessions, stats, err := s.paginator.FetchSessionsForRange(ctx, scope, query.Range, now)
	if err != nil {
		return nil, stats, err
	}

	var stations []domain.Station
	if s.stations != nil {
		stations, err = s.stations.ListStations(ctx, query.OrgID)
		if err != nil {
			return nil, stats, &FetchError{Source: "stations", Err: err}
		}
	}

	metrics := Compute(Input{
		Range:      query.Range,
		ViewerID:   query.ViewerID,
		Capability: query.Capability,
		Sessions:   sessions,
		Stations:   stations,
		Now:        now,
	})
	return metrics, stats, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*domain.ReportMetrics, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.log.Warn("Report cache lookup failed", zap.String("key", key), zap.Error(err))
		}
		telemetry.ReportCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var metrics domain.ReportMetrics
	if err := json.Unmarshal([]byte(raw), &metrics); err != nil {
		s.log.Warn("Discarding unreadable cached report", zap.String("key", key), zap.Error(err))
		telemetry.ReportCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.WindowStart = metrics.WindowStart.In(s.loc)
	metrics.WindowEnd = metrics.WindowEnd.In(s.loc)
	metrics.GeneratedAt = metrics.GeneratedAt.In(s.loc)

	telemetry.ReportCacheLookupsTotal.WithLabelValues("hit").Inc()
	return &metrics, true
}

func (s *Service) store(ctx context.Context, key string, metrics *domain.ReportMetrics) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(metrics)
	if err != nil {
		s.log.Warn("Failed to encode report for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn("Failed to cache report", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) publish(query domain.ReportQuery, metrics *domain.ReportMetrics, stats PaginationStats) {
	if s.mq == nil {
		return
	}

	event := ReportComputedEvent{
		ID:            uuid.New().String(),
		ViewerID:      query.ViewerID,
		OrgID:         query.OrgID,
		Range:         query.Range,
		Capability:    capabilityOrBoth(query.Capability),
		HasData:       metrics.HasData,
		TotalRevenue:  metrics.TotalRevenue,
		TotalSessions: metrics.TotalSessions,
		PagesFetched:  stats.PagesFetched,
		StopReason:    stats.StopReason,
		WindowStart:   metrics.WindowStart,
		WindowEnd:     metrics.WindowEnd,
		ComputedAt:    metrics.GeneratedAt,
	}

	data, err := json.Marshal(event)
	if err == nil {
		err = s.mq.Publish(SubjectReportComputed, data)
	}
	if err != nil {
		s.log.Warn("Failed to publish report event",
			zap.String("event_id", event.ID),
			zap.Error(fmt.Errorf("publish %s: %w", SubjectReportComputed, err)),
		)
	}
}

// cacheKey scopes cached reports to the local calendar day, since the window
// moves at midnight.
func cacheKey(query domain.ReportQuery, now time.Time) string {
	return query.Key() + ":" + now.Format("2006-01-02")
}

func capabilityOrBoth(c domain.OwnerCapability) string {
	if c == "" {
		return string(domain.CapabilityBoth)
	}
	return string(c)
}
