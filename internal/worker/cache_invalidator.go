package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/RealCodeCrafter/trt-backend/internal/cache"
	"github.com/RealCodeCrafter/trt-backend/internal/events"
)

// StartCacheInvalidator drops cached catalog lookups on every catalog change.
func StartCacheInvalidator(dispatcher events.Dispatcher, catalogCache *cache.CatalogCache, logger *zap.Logger) {
	if dispatcher == nil || catalogCache == nil {
		return
	}
	events.SubscribeAll(dispatcher, events.CatalogEventTypes, func(ctx context.Context, event events.Event) error {
		if err := catalogCache.Invalidate(ctx); err != nil {
			logger.Warn("cache invalidation failed", zap.String("event", string(event.Type)), zap.Error(err))
			return err
		}
		return nil
	})
}
