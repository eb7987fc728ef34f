package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/domain"
	"github.com/seu-repo/sigec-reports/internal/ports"
)

const (
	DefaultPageSize = 200
	DefaultMaxPages = 30
)

// StopReason explains why pagination ended.
type StopReason string

const (
	StopEmptyPage       StopReason = "empty_page"
	StopLastPage        StopReason = "last_page"
	StopOlderThanWindow StopReason = "older_than_window"
	StopMaxPages        StopReason = "max_pages"
)

// PaginationStats describes one drain of the session source.
type PaginationStats struct {
	PagesFetched    int
	SessionsFetched int
	Unique          int
	StopReason      StopReason
}

// Paginator drains a SessionSource page by page. Pages are fetched strictly
// one after another: the early stop can only be decided after a page is seen.
type Paginator struct {
	source   ports.SessionSource
	pageSize int
	maxPages int
	// newestFirst enables the early stop. It must be false for sources that
	// do not guarantee newest-first ordering.
	newestFirst bool
	log         *zap.Logger
}

// PaginatorConfig holds paginator settings; zero values fall back to defaults.
type PaginatorConfig struct {
	PageSize    int
	MaxPages    int
	NewestFirst bool
}

// DefaultPaginatorConfig returns the settings of the platform history API.
func DefaultPaginatorConfig() PaginatorConfig {
	return PaginatorConfig{
		PageSize:    DefaultPageSize,
		MaxPages:    DefaultMaxPages,
		NewestFirst: true,
	}
}

func NewPaginator(source ports.SessionSource, cfg PaginatorConfig, log *zap.Logger) *Paginator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Paginator{
		source:      source,
		pageSize:    cfg.PageSize,
		maxPages:    cfg.MaxPages,
		newestFirst: cfg.NewestFirst,
		log:         log,
	}
}

// StopThreshold is the start of the current window for rng. A newest-first
// page whose newest session is before it ends pagination. The zero time
// means "no threshold" (ALL).
func StopThreshold(rng domain.ReportRange, now time.Time) time.Time {
	if rng == domain.RangeAll {
		return time.Time{}
	}
	return ResolveWindow(rng, nil, now).Start
}

// FetchSessionsForRange returns the deduplicated sessions needed for rng.
// Any page failure aborts the whole run and nothing fetched so far is
// returned.
func (p *Paginator) FetchSessionsForRange(ctx context.Context, scope ports.SourceScope, rng domain.ReportRange, now time.Time) ([]domain.Session, PaginationStats, error) {
	threshold := StopThreshold(rng, now)
	useThreshold := p.newestFirst && !threshold.IsZero()

	var (
		all   []domain.Session
		stats PaginationStats
	)

	for page := 1; ; page++ {
		if page > p.maxPages {
			stats.StopReason = StopMaxPages
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, &FetchError{Source: "sessions", Page: page, Err: err}
		}

		result, err := p.source.FetchPage(ctx, scope, page, p.pageSize)
		if err != nil {
			p.log.Warn("Session page fetch failed, discarding fetched pages",
				zap.Int("page", page),
				zap.Int("pages_discarded", stats.PagesFetched),
				zap.Error(err),
			)
			return nil, stats, &FetchError{Source: "sessions", Page: page, Err: err}
		}
		stats.PagesFetched++

		if result == nil || len(result.Sessions) == 0 {
			stats.StopReason = StopEmptyPage
			break
		}
		all = append(all, result.Sessions...)
		stats.SessionsFetched += len(result.Sessions)

		if page >= result.TotalPages {
			stats.StopReason = StopLastPage
			break
		}

		if useThreshold {
			newest := newestStart(result.Sessions)
			if newest.Before(threshold) {
				stats.StopReason = StopOlderThanWindow
				break
			}
		}
	}

	sessions := dedupeByID(all)
	stats.Unique = len(sessions)

	p.log.Debug("Session history drained",
		zap.String("range", string(rng)),
		zap.Int("pages", stats.PagesFetched),
		zap.Int("fetched", stats.SessionsFetched),
		zap.Int("unique", stats.Unique),
		zap.String("stop_reason", string(stats.StopReason)),
	)

	return sessions, stats, nil
}

func newestStart(sessions []domain.Session) time.Time {
	var newest time.Time
	for i, s := range sessions {
		if i == 0 || s.StartedAt.After(newest) {
			newest = s.StartedAt
		}
	}
	return newest
}

// dedupeByID keeps the last occurrence of each ID at the position of its
// first occurrence.
func dedupeByID(sessions []domain.Session) []domain.Session {
	index := make(map[string]int, len(sessions))
	out := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if i, ok := index[s.ID]; ok {
			out[i] = s
			continue
		}
		index[s.ID] = len(out)
		out = append(out, s)
	}
	return out
}
