package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/ports"
	"github.com/seu-repo/sigec-reports/pkg/config"
)

// NewFromConfig returns Redis when it is enabled and reachable, otherwise the
// in-memory cache.
func NewFromConfig(cfg config.RedisConfig, log *zap.Logger) ports.Cache {
	if cfg.Enabled && cfg.URL != "" {
		redisCache, err := NewRedisCache(cfg.URL, log)
		if err == nil {
			return redisCache
		}
		log.Warn("Redis unavailable, falling back to local cache", zap.Error(err))
	}
	return NewLocalCache(time.Minute, 0, log)
}
