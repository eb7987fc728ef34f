//go:build integration

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/internal/ports"
)

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		container, err := tcredis.Run(ctx, "redis:7-alpine")
		if err != nil {
			t.Skipf("Redis container not available: %v", err)
		}
		t.Cleanup(func() { container.Terminate(ctx) })

		url, err = container.ConnectionString(ctx)
		if err != nil {
			t.Fatalf("Failed to get connection string: %v", err)
		}
	}

	c, err := NewRedisCache(url, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	if _, err := c.Get(ctx, "report:7d:nobody:-:BOTH"); !errors.Is(err, ports.ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}

	if err := c.Set(ctx, "report:7d:owner:-:BOTH", []byte(`{"has_data":true}`), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "report:7d:owner:-:BOTH")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"has_data":true}` {
		t.Errorf("Unexpected value %q", got)
	}

	if exists := c.Client().Exists(ctx, keyPrefix+"report:7d:owner:-:BOTH").Val(); exists != 1 {
		t.Error("Expected key to be stored with prefix")
	}

	if err := c.Delete(ctx, "report:7d:owner:-:BOTH"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := c.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
