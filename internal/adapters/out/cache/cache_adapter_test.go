package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/domain"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(event string, fields out.LogFields) {}
func (nopLogger) Info(event string, fields out.LogFields) {}
func (nopLogger) Warn(event string, fields out.LogFields) {}
func (nopLogger) Error(event string, fields out.LogFields) {}
func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

func testConfig(enabled bool, size int) *config.Config {
	cfg := &config.Config{}
	cfg.Cache.Enabled = enabled
	cfg.Cache.DaysSize = size
	return cfg
}

func testSlots() []domain.Slot {
	return []domain.Slot{
		{Start: domain.ClockTime(8 * 60), End: domain.ClockTime(9 * 60), Available: true},
		{Start: domain.ClockTime(9 * 60), End: domain.ClockTime(10 * 60), Available: false},
	}
}

func TestCacheAdapter_DisabledReturnsNil(t *testing.T) {
	adapter, err := NewCacheAdapter(testConfig(false, 10), nopLogger{})
	if err != nil {
		t.Fatalf("NewCacheAdapter failed: %v", err)
	}
	if adapter != nil {
		t.Error("expected nil adapter when cache is disabled")
	}
}

func TestCacheAdapter_StoreAndGet(t *testing.T) {
	adapter, err := NewCacheAdapter(testConfig(true, 10), nopLogger{})
	if err != nil {
		t.Fatalf("NewCacheAdapter failed: %v", err)
	}

	ctx := context.Background()
	day := domain.NewDay(2025, time.January, 22)

	if _, exists := adapter.GetDaySlots(ctx, day); exists {
		t.Fatal("expected miss for empty cache")
	}

	adapter.StoreDaySlots(ctx, day, testSlots())

	slots, exists := adapter.GetDaySlots(ctx, day)
	if !exists {
		t.Fatal("expected hit after store")
	}
	if len(slots) != 2 {
		t.Errorf("expected 2 slots, got %d", len(slots))
	}
}

func TestCacheAdapter_InvalidateDay(t *testing.T) {
	adapter, err := NewCacheAdapter(testConfig(true, 10), nopLogger{})
	if err != nil {
		t.Fatalf("NewCacheAdapter failed: %v", err)
	}

	ctx := context.Background()
	day := domain.NewDay(2025, time.January, 22)
	other := domain.NewDay(2025, time.January, 23)

	adapter.StoreDaySlots(ctx, day, testSlots())
	adapter.StoreDaySlots(ctx, other, testSlots())

	adapter.InvalidateDay(ctx, day)

	if _, exists := adapter.GetDaySlots(ctx, day); exists {
		t.Error("expected miss after invalidation")
	}
	if _, exists := adapter.GetDaySlots(ctx, other); !exists {
		t.Error("invalidation must not touch other days")
	}
}

func TestCacheAdapter_Purge(t *testing.T) {
	adapter, err := NewCacheAdapter(testConfig(true, 10), nopLogger{})
	if err != nil {
		t.Fatalf("NewCacheAdapter failed: %v", err)
	}

	ctx := context.Background()
	adapter.StoreDaySlots(ctx, domain.NewDay(2025, time.January, 22), testSlots())
	adapter.StoreDaySlots(ctx, domain.NewDay(2025, time.January, 23), testSlots())

	adapter.Purge(ctx)

	if _, exists := adapter.GetDaySlots(ctx, domain.NewDay(2025, time.January, 22)); exists {
		t.Error("expected empty cache after purge")
	}
}

func TestCacheAdapter_EvictsOldestDays(t *testing.T) {
	adapter, err := NewCacheAdapter(testConfig(true, 2), nopLogger{})
	if err != nil {
		t.Fatalf("NewCacheAdapter failed: %v", err)
	}

	ctx := context.Background()
	for date := 20; date <= 22; date++ {
		adapter.StoreDaySlots(ctx, domain.NewDay(2025, time.January, date), testSlots())
	}

	if _, exists := adapter.GetDaySlots(ctx, domain.NewDay(2025, time.January, 20)); exists {
		t.Error("oldest day must be evicted at capacity")
	}
	if _, exists := adapter.GetDaySlots(ctx, domain.NewDay(2025, time.January, 22)); !exists {
		t.Error("newest day must survive eviction")
	}
}
