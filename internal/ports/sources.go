package ports

import (
	"context"
	"errors"
	"time"

	"github.com/seu-repo/sigec-reports/internal/domain"
)

// SourceScope narrows a history source to one viewer and, optionally, one org.
type SourceScope struct {
	ViewerID string
	OrgID    string
}

// SessionPage is one page of the session history, newest first.
type SessionPage struct {
	Sessions   []domain.Session
	TotalPages int
}

// SessionSource is the paginated session history. Pages are 1-based and
// sessions are expected newest-first.
type SessionSource interface {
	FetchPage(ctx context.Context, scope SourceScope, page, pageSize int) (*SessionPage, error)
}

// StationSource lists the stations of an org. It is not paginated.
type StationSource interface {
	ListStations(ctx context.Context, orgID string) ([]domain.Station, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")
