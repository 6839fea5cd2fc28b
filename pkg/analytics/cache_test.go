package analytics

import (
	"context"
	"testing"

	"github.com/diacare-ai/readmission/pkg/common/models"
	"github.com/diacare-ai/readmission/pkg/ingest"
)

var _ ingest.StatsInvalidator = (*Cache)(nil)

func TestCacheWithoutClientIsInert(t *testing.T) {
	ctx := context.Background()

	var nilCache *Cache
	if _, ok := nilCache.GetStats(ctx); ok {
		t.Fatal("nil cache must always miss")
	}
	if err := nilCache.SetStats(ctx, models.StatsPayload{Rows: 1}); err != nil {
		t.Fatalf("nil cache set must be a no-op, got %v", err)
	}
	if err := nilCache.Invalidate(ctx); err != nil {
		t.Fatalf("nil cache invalidate must be a no-op, got %v", err)
	}

	clientless := NewCache(nil, 0)
	if _, ok := clientless.GetStats(ctx); ok {
		t.Fatal("clientless cache must always miss")
	}
	if err := clientless.SetStats(ctx, models.StatsPayload{Rows: 1}); err != nil {
		t.Fatalf("clientless cache set must be a no-op, got %v", err)
	}
	if err := clientless.Invalidate(ctx); err != nil {
		t.Fatalf("clientless cache invalidate must be a no-op, got %v", err)
	}
}
