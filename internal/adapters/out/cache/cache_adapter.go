package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

// CacheAdapter - LRU-кэш статической раскладки слотов по датам
// Занятость из датасета не меняется в рантайме, поэтому TTL не нужен,
// достаточно вытеснения старых дат
type CacheAdapter struct {
	cache  *lru.Cache[domain.Day, []domain.Slot]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	lruCache, err := lru.New[domain.Day, []domain.Slot](cfg.Cache.DaysSize)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.DaysSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		cache:  lruCache,
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetDaySlots(ctx context.Context, day domain.Day) ([]domain.Slot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	slots, exists := c.cache.Get(day)
	if !exists {
		c.logger.Debug("cache.day_slots.get.miss", out.LogFields{
			"day": day.String(),
		})
		return nil, false
	}

	c.logger.Debug("cache.day_slots.get.hit", out.LogFields{
		"day":        day.String(),
		"slotsCount": len(slots),
	})
	return slots, true
}

func (c *CacheAdapter) StoreDaySlots(ctx context.Context, day domain.Day, slots []domain.Slot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.day_slots.store", out.LogFields{
		"day":        day.String(),
		"slotsCount": len(slots),
	})

	c.cache.Add(day, slots)
}

func (c *CacheAdapter) InvalidateDay(ctx context.Context, day domain.Day) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.day_slots.invalidate", out.LogFields{
		"day": day.String(),
	})

	c.cache.Remove(day)
}

func (c *CacheAdapter) Purge(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Info("cache.purge", out.LogFields{})

	c.cache.Purge()
}
