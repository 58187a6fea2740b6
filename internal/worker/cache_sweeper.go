package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/auth"
	"github.com/Behnamfe76/contacts-directory/internal/observability"
)

// StartTokenCacheSweeper drops expired entries from the in-memory token cache
// every interval until ctx is cancelled. A non-positive interval disables it.
func StartTokenCacheSweeper(ctx context.Context, cache *auth.MemoryTokenCache, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) {
	if cache == nil || interval <= 0 {
		return
	}
	logger.Info("token cache sweeper started", zap.Duration("interval", interval))
	cache.StartSweeper(ctx, interval, func(removed int) {
		remaining := cache.Len()
		metrics.RecordCacheSweep(removed, remaining)
		if removed > 0 {
			logger.Debug("token cache swept", zap.Int("removed", removed), zap.Int("remaining", remaining))
		}
	})
}
